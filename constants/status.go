package constants

// RiskLevel is the categorical customer risk classification.
type RiskLevel string

// Stable values (these exact strings appear in persisted packages).
const (
	RiskLow     RiskLevel = "LOW"
	RiskMedium  RiskLevel = "MEDIUM"
	RiskHigh    RiskLevel = "HIGH"
	RiskUnknown RiskLevel = "UNKNOWN" // assessment skipped or failed
)

// ComplianceStatus is the disposition of a verification run.
type ComplianceStatus string

const (
	CompliancePending                ComplianceStatus = "PENDING"
	ComplianceApproved               ComplianceStatus = "APPROVED"
	ComplianceAdditionalVerification ComplianceStatus = "ADDITIONAL_VERIFICATION"
	ComplianceManualReview           ComplianceStatus = "MANUAL_REVIEW_REQUIRED"
)

// Route names the path a case takes after risk-based routing.
type Route string

const (
	RouteAutoApproval           Route = "auto_approval"
	RouteAdditionalVerification Route = "additional_verification"
	RouteManualReview           Route = "manual_review"
)
