// Package pipeline drives a KYC verification run through its five stages:
// document processing, KYC extraction, risk assessment, risk-based routing,
// and finalization.
//
// Stages execute strictly in order. Each one catches its own failures and
// emits a StageResult; nothing propagates past a stage boundary. A failure
// upstream makes downstream stages degrade (skip business logic, keep
// defaults) instead of aborting: the run always reaches finalization and
// always returns a FinalPackage.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/compliancehq/kyc-verifier/constants"
	"github.com/compliancehq/kyc-verifier/internal/analysis"
	"github.com/compliancehq/kyc-verifier/internal/kyc"
	"github.com/compliancehq/kyc-verifier/internal/prepare"
)

// Config holds pipeline behavior settings.
type Config struct {
	// StageTimeout bounds each engine-backed stage. Expiry is handled like
	// any other stage failure: degrade and continue. 0 disables the bound.
	StageTimeout time.Duration
}

// Pipeline executes verification runs. It holds no per-run state; concurrent
// runs each get their own State.
type Pipeline struct {
	engine analysis.Engine
	cfg    Config
	logger *slog.Logger
}

func New(engine analysis.Engine, cfg Config, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{engine: engine, cfg: cfg, logger: logger}
}

type stageFunc func(ctx context.Context, st *State, prev StageResult) StageResult

// Run drives a document batch through all stages and returns the final
// package. It never returns an error: failures surface inside the package.
func (p *Pipeline) Run(ctx context.Context, docs []prepare.DocumentContent) FinalPackage {
	st := NewState(docs)
	p.logger.Info("pipeline.start", "documents", len(docs))

	stages := []struct {
		name string
		fn   stageFunc
	}{
		{StageDocumentProcessing, p.processDocuments},
		{StageKYCExtraction, p.extractKYCData},
		{StageRiskAssessment, p.assessRisk},
		{StageRiskRouting, p.routeByRisk},
	}

	var prev StageResult
	for _, s := range stages {
		prev = p.runStage(ctx, s.name, s.fn, st, prev)
	}
	return p.finalize(st, prev)
}

// runStage executes one stage, metering completed stages and converting
// panics into failed results so no error ever crosses a stage boundary.
func (p *Pipeline) runStage(ctx context.Context, name string, fn stageFunc, st *State, prev StageResult) (res StageResult) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("pipeline.stage.panic", "stage", name, "panic", r)
			res = StageResult{Status: StageFailed, Error: fmt.Sprintf("internal error: %v", r)}
		}
	}()

	res = fn(ctx, st, prev)

	elapsed := time.Since(start)
	if res.Status == StageCompleted {
		st.ExecutionMetrics[name] = elapsed
	}
	p.logger.Info("pipeline.stage.done",
		"stage", name,
		"status", string(res.Status),
		"elapsed_ms", elapsed.Milliseconds(),
	)
	return res
}

// stageContext applies the per-stage timeout, if configured.
func (p *Pipeline) stageContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.cfg.StageTimeout > 0 {
		return context.WithTimeout(ctx, p.cfg.StageTimeout)
	}
	return context.WithCancel(ctx)
}

// processDocuments is stage 1: run the engine's document analysis over the
// batch. Engine failure produces a failed result, never an error.
func (p *Pipeline) processDocuments(ctx context.Context, st *State, _ StageResult) StageResult {
	st.DocumentCount = len(st.Documents)

	ectx, cancel := p.stageContext(ctx)
	defer cancel()

	res, err := p.engine.Analyze(ectx, st.Documents, analysis.TaskDocumentProcessing)
	if err != nil {
		p.logger.Error("pipeline.document_processing.failed", "error", err)
		return StageResult{Status: StageFailed, Error: err.Error(), DocumentsProcessed: 0}
	}

	return StageResult{
		Status:             StageCompleted,
		Analysis:           res.Text,
		DocumentsProcessed: st.DocumentCount,
	}
}

// extractKYCData is stage 2: structured extraction. When stage 1 failed it
// short-circuits without touching the engine.
func (p *Pipeline) extractKYCData(ctx context.Context, st *State, prev StageResult) StageResult {
	if prev.Status == StageFailed {
		p.logger.Warn("pipeline.kyc_extraction.skipped", "reason", "processing_failed")
		return StageResult{Status: StageSkipped, Reason: "processing_failed"}
	}

	ectx, cancel := p.stageContext(ctx)
	defer cancel()

	res, err := p.engine.Analyze(ectx, st.Documents, analysis.TaskKYCExtraction)
	if err != nil {
		p.logger.Error("pipeline.kyc_extraction.failed", "error", err)
		return StageResult{Status: StageFailed, Error: err.Error()}
	}

	st.KYCData = kyc.Parse(res.Text, p.logger)
	st.MissingFields = kyc.MissingRequiredFields(st.KYCData)

	p.logger.Info("pipeline.kyc_extraction.ok", "missing_fields", len(st.MissingFields))
	return StageResult{
		Status:        StageCompleted,
		KYCData:       st.KYCData,
		MissingFields: st.MissingFields,
	}
}

// assessRisk is stage 3: derive the categorical risk level. Skipped unless
// extraction completed; business-data shortcomings never fail the run.
func (p *Pipeline) assessRisk(_ context.Context, st *State, prev StageResult) StageResult {
	if prev.Status != StageCompleted {
		st.RiskLevel = constants.RiskUnknown
		p.logger.Warn("pipeline.risk_assessment.skipped", "risk_level", string(st.RiskLevel))
		return StageResult{Status: StageSkipped, RiskLevel: constants.RiskUnknown}
	}

	serialized := kyc.Serialize(st.KYCData)
	score := ScoreRisk(len(st.MissingFields), serialized)
	st.RiskLevel = LevelForScore(score)

	p.logger.Info("pipeline.risk_assessment.ok",
		"risk_level", string(st.RiskLevel),
		"risk_score", score,
	)
	return StageResult{
		Status:    StageCompleted,
		RiskLevel: st.RiskLevel,
		RiskScore: score,
		Factors: &RiskFactors{
			MissingFields: len(st.MissingFields),
			PEPMention:    kyc.ContainsAllOf(serialized, "pep"),
		},
	}
}

// ScoreRisk accumulates the risk score from the extraction outcome: +2 when
// more than three required fields are missing, +3 when the serialized KYC
// data mentions both "pep" and "yes".
func ScoreRisk(missingFields int, serializedKYC string) int {
	score := 0
	if missingFields > 3 {
		score += 2
	}
	if kyc.ContainsAllOf(serializedKYC, "pep", "yes") {
		score += 3
	}
	return score
}

// LevelForScore maps a risk score to its categorical level.
func LevelForScore(score int) constants.RiskLevel {
	switch {
	case score >= 5:
		return constants.RiskHigh
	case score >= 3:
		return constants.RiskMedium
	default:
		return constants.RiskLow
	}
}

// routeByRisk is stage 4: a pure function of the risk level with no failure
// path. It always runs, whatever happened upstream.
func (p *Pipeline) routeByRisk(_ context.Context, st *State, _ StageResult) StageResult {
	route, status, reason := RouteForLevel(st.RiskLevel)
	st.ComplianceStatus = status

	switch status {
	case constants.ComplianceManualReview:
		p.logger.Warn("pipeline.routing.manual_review", "risk_level", string(st.RiskLevel))
	case constants.ComplianceAdditionalVerification:
		p.logger.Info("pipeline.routing.additional_verification", "risk_level", string(st.RiskLevel))
	default:
		p.logger.Info("pipeline.routing.auto_approval", "risk_level", string(st.RiskLevel))
	}

	return StageResult{
		Status:           StageCompleted,
		Route:            route,
		Reason:           reason,
		ComplianceStatus: status,
	}
}

// RouteForLevel maps a risk level to a route and disposition. UNKNOWN has its
// own branch on purpose: current policy approves it exactly like LOW, and a
// stricter treatment belongs here and nowhere else.
func RouteForLevel(level constants.RiskLevel) (constants.Route, constants.ComplianceStatus, string) {
	switch level {
	case constants.RiskHigh:
		return constants.RouteManualReview, constants.ComplianceManualReview, "high_risk"
	case constants.RiskMedium:
		return constants.RouteAdditionalVerification, constants.ComplianceAdditionalVerification, "medium_risk"
	case constants.RiskUnknown:
		return constants.RouteAutoApproval, constants.ComplianceApproved, "low_risk"
	default:
		return constants.RouteAutoApproval, constants.ComplianceApproved, "low_risk"
	}
}

// finalize is stage 5: pure aggregation of the run state into the terminal
// package. It cannot fail and is always reached.
func (p *Pipeline) finalize(st *State, routing StageResult) FinalPackage {
	total := time.Since(st.StartedAt)

	metrics := make(map[string]float64, len(st.ExecutionMetrics))
	for name, d := range st.ExecutionMetrics {
		metrics[name] = d.Seconds()
	}

	recommendation := routing.Route
	if recommendation == "" {
		recommendation = constants.Route("unknown")
	}

	pkg := FinalPackage{
		Status:        "completed",
		ExecutionTime: total.Seconds(),
		Metrics:       metrics,
		Verification: Verification{
			DocumentsProcessed: st.DocumentCount,
			KYCData:            st.KYCData,
			RiskLevel:          st.RiskLevel,
			ComplianceStatus:   st.ComplianceStatus,
			MissingFields:      st.MissingFields,
			Recommendation:     recommendation,
		},
	}

	p.logger.Info("pipeline.done",
		"execution_time_ms", total.Milliseconds(),
		"documents_processed", st.DocumentCount,
		"risk_level", string(st.RiskLevel),
		"compliance_status", string(st.ComplianceStatus),
		"missing_fields", len(st.MissingFields),
	)
	return pkg
}
