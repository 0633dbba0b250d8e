package pipeline

import (
	"time"

	"github.com/compliancehq/kyc-verifier/constants"
	"github.com/compliancehq/kyc-verifier/internal/prepare"
)

// StageStatus is the outcome class of a single stage execution.
type StageStatus string

const (
	StageCompleted StageStatus = "completed"
	StageFailed    StageStatus = "failed"
	StageSkipped   StageStatus = "skipped"
)

// Stage names, used as metric keys and log fields.
const (
	StageDocumentProcessing = "document_processing"
	StageKYCExtraction      = "kyc_extraction"
	StageRiskAssessment     = "risk_assessment"
	StageRiskRouting        = "risk_based_routing"
	StageFinalization       = "finalization"
)

// State is the mutable run state threaded through all stages. It is owned by
// the running pipeline, mutated only by the stage currently executing, and
// discarded once the final package is returned.
type State struct {
	Documents        []prepare.DocumentContent
	DocumentCount    int
	KYCData          map[string]any
	RiskLevel        constants.RiskLevel
	ComplianceStatus constants.ComplianceStatus
	MissingFields    []string
	ExecutionMetrics map[string]time.Duration
	StartedAt        time.Time
}

// NewState initializes run state for a document batch.
func NewState(docs []prepare.DocumentContent) *State {
	return &State{
		Documents:        docs,
		KYCData:          map[string]any{},
		RiskLevel:        constants.RiskUnknown,
		ComplianceStatus: constants.CompliancePending,
		MissingFields:    []string{},
		ExecutionMetrics: map[string]time.Duration{},
		StartedAt:        time.Now(),
	}
}

// StageResult is the contract between adjacent stages. Every stage emits one,
// including on internal failure; fields outside a stage's payload stay zero.
type StageResult struct {
	Status             StageStatus                `json:"status"`
	Error              string                     `json:"error,omitempty"`
	Reason             string                     `json:"reason,omitempty"`
	Analysis           string                     `json:"analysis,omitempty"`
	DocumentsProcessed int                        `json:"documents_processed,omitempty"`
	KYCData            map[string]any             `json:"kyc_data,omitempty"`
	MissingFields      []string                   `json:"missing_fields,omitempty"`
	RiskLevel          constants.RiskLevel        `json:"risk_level,omitempty"`
	RiskScore          int                        `json:"risk_score,omitempty"`
	Factors            *RiskFactors               `json:"factors,omitempty"`
	Route              constants.Route            `json:"route,omitempty"`
	ComplianceStatus   constants.ComplianceStatus `json:"compliance_status,omitempty"`
}

// RiskFactors records what contributed to a risk score.
type RiskFactors struct {
	MissingFields int  `json:"missing_fields"`
	PEPMention    bool `json:"pep_mention"`
}

// Verification is the business outcome of a run.
type Verification struct {
	DocumentsProcessed int                        `json:"documents_processed"`
	KYCData            map[string]any             `json:"kyc_data"`
	RiskLevel          constants.RiskLevel        `json:"risk_level"`
	ComplianceStatus   constants.ComplianceStatus `json:"compliance_status"`
	MissingFields      []string                   `json:"missing_fields"`
	Recommendation     constants.Route            `json:"recommendation"`
}

// FinalPackage is the terminal aggregate of a run. Status is always
// "completed": run-level completion is independent of business-level success,
// which the nested fields communicate.
type FinalPackage struct {
	Status        string             `json:"status"`
	ExecutionTime float64            `json:"execution_time"`
	Metrics       map[string]float64 `json:"metrics"`
	Verification  Verification       `json:"kyc_verification"`
}
