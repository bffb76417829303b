// Package telemetry forwards per-document batch failures to Sentry.
//
// Nothing is sent unless a DSN is configured. Successful documents never
// produce events, and events carry the document name and error only, never
// document content or detection previews.
package telemetry

import (
	"errors"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/ironsheep/redact-tools-mcp/internal/redact"
)

// Reporter sends failures to one Sentry hub.
type Reporter struct {
	hub *sentry.Hub
}

// Options configures Sentry.
type Options struct {
	DSN         string
	Environment string
	Release     string
}

// New returns a reporter, or nil when no DSN is set. A nil *Reporter is
// safe to use and drops everything.
func New(opts Options) (*Reporter, error) {
	if opts.DSN == "" {
		return nil, nil
	}
	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn:         opts.DSN,
		Environment: opts.Environment,
		Release:     opts.Release,
		BeforeSend:  scrub,
	})
	if err != nil {
		return nil, err
	}
	return &Reporter{hub: sentry.NewHub(client, sentry.NewScope())}, nil
}

// newWithTransport is New with an injected transport for tests.
func newWithTransport(opts Options, transport sentry.Transport) (*Reporter, error) {
	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn:         opts.DSN,
		Environment: opts.Environment,
		Transport:   transport,
		BeforeSend:  scrub,
	})
	if err != nil {
		return nil, err
	}
	return &Reporter{hub: sentry.NewHub(client, sentry.NewScope())}, nil
}

// Report captures one failed document. Its signature matches
// pipeline.FailureReporter.
func (r *Reporter) Report(name string, err error) {
	if r == nil || err == nil {
		return
	}
	r.hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("document", name)
		scope.SetTag("fatal", boolTag(redact.IsFatal(err)))
		var ext *redact.ExtractionError
		if errors.As(err, &ext) {
			scope.SetTag("source", ext.Source)
		}
		r.hub.CaptureException(err)
	})
}

// Flush waits up to timeout for queued events.
func (r *Reporter) Flush(timeout time.Duration) bool {
	if r == nil {
		return true
	}
	return r.hub.Flush(timeout)
}

// scrub drops request bodies so uploaded documents never leave the process.
func scrub(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
	if event.Request != nil {
		event.Request.Data = ""
	}
	return event
}

func boolTag(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
