package pipeline

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/redact-tools-mcp/internal/redact"
)

// DefaultWorkers is the batch concurrency when none is configured.
const DefaultWorkers = 3

// BatchResult is the outcome for one document of a batch. Exactly one of
// Output and Err is set, except that Analysis is kept when only the
// redaction step failed.
type BatchResult struct {
	Name     string
	Analysis *redact.AnalyzeResult
	Output   *redact.ApplyResult
	Err      error
}

// FailureReporter is told about every document that fails in a batch.
type FailureReporter func(name string, err error)

// BatchOptions controls RedactBatch.
type BatchOptions struct {
	Analyze AnalyzeOptions
	Format  string

	// Workers bounds the documents in flight. Zero means DefaultWorkers.
	Workers int

	// OnFailure is called from the worker goroutine. May be nil.
	OnFailure FailureReporter
}

// RedactBatch auto-redacts every input with at most opts.Workers documents
// in flight.
//
// A failing document never stops its siblings: its error lands in its own
// BatchResult and the rest carry on. Results are returned in input order.
// Cancelling ctx makes documents that have not started fail with the
// context error.
func (e *Engine) RedactBatch(ctx context.Context, inputs []Input, opts BatchOptions) []BatchResult {
	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	results := make([]BatchResult, len(inputs))
	var g errgroup.Group
	g.SetLimit(workers)
	for i, in := range inputs {
		g.Go(func() error {
			results[i] = e.redactOne(ctx, in, opts)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (e *Engine) redactOne(ctx context.Context, in Input, opts BatchOptions) BatchResult {
	r := BatchResult{Name: in.Name}
	if err := ctx.Err(); err != nil {
		r.Err = err
	} else {
		r.Analysis, r.Output, r.Err = e.Redact(ctx, in, opts.Analyze, opts.Format)
	}
	if r.Err != nil {
		e.logger.Error("Batch document failed", "name", in.Name, "err", r.Err)
		if opts.OnFailure != nil {
			opts.OnFailure(in.Name, r.Err)
		}
	}
	return r
}
