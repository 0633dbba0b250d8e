// Package analysis defines the engine boundary the verification pipeline
// depends on. Any implementation (LLM client, stub, fixture replay) works.
package analysis

import (
	"context"

	"github.com/compliancehq/kyc-verifier/internal/prepare"
)

// TaskKind selects which analysis the engine performs.
type TaskKind string

const (
	TaskDocumentProcessing TaskKind = "document_processing"
	TaskKYCExtraction      TaskKind = "kyc_extraction"
)

// RawResult is the engine's unstructured response. Structured fields are
// re-derived downstream; the pipeline treats this as opaque text.
type RawResult struct {
	Text string
}

// Engine is the analysis collaborator invoked by pipeline stages 1 and 2.
type Engine interface {
	Analyze(ctx context.Context, docs []prepare.DocumentContent, task TaskKind) (RawResult, error)
}
