// Package redact defines the shared data model of the redaction pipeline.
//
// Every other package speaks in these types: token sources produce Token
// values, the detector registry and assembler turn them into Detection
// records, callers answer with Action values, and the compositors and
// packager return an ApplyResult carrying a Report.
//
// # Boxes
//
// A Box is a rectangle normalized to the page: X, Y, W and H are fractions
// in [0,1] measured from the top-left corner, and Page is a zero-based page
// index. Boxes never carry device units. Source coordinates (pixels, PDF
// points, bottom-left origins) live in SourceBox values tagged with a
// CoordSystem until the coords package normalizes them.
//
// # Enumerations
//
// Kind and Style are closed integer enumerations with text marshalling, so
// they travel as the upper-case wire names ("PAN", "MASK_LAST4") in JSON and
// TOML while switches over them stay exhaustive in Go code. The zero Style
// means "not chosen"; the resolver fills it from the active preset.
//
// # Errors
//
// The four error categories of the pipeline are concrete types:
//   - ExtractionError: a page or file could not be read; that unit yields no tokens
//   - ValidationError: a custom pattern or preset entry is malformed; it is skipped
//   - ResolutionError: an action names an unknown detection or page; it is skipped
//   - FatalIOError: the document itself cannot be read or written; only it aborts
//
// Only FatalIOError ends a document's pipeline. The other three are collected
// as warnings on the result.
package redact
