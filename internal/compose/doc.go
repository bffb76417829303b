// Package compose turns redaction actions into draw instructions and paints
// them onto a substrate.
//
// Resolve matches each redact.Action to a detection from an explicitly passed
// list, fills unset styles from the active preset, and scales the detection's
// normalized box to absolute top-left units of the target page. Actions that
// name an unknown detection or a page the document does not have are skipped
// with a redact.ResolutionError; the rest still apply.
//
// Paint is the only place that switches on redact.Style. It draws through the
// Surface interface, which the raster canvas (package imaging) and the PDF
// page writer (package pdfdoc) both implement, so the two substrates share
// one style vocabulary and differ only in their primitives.
package compose
