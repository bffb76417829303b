// Package coords converts token source rectangles into page-normalized boxes
// and back.
//
// Token sources report rectangles in their own units: Tesseract in raster
// pixels from the top-left corner, PDF text layers in points from the
// bottom-left corner of the page. Each source tags its rectangles with a
// redact.CoordSystem and never converts them itself. Normalize is the only
// function that reads that tag.
//
// The reverse direction for PDF output (top-left normalized boxes into PDF
// user space) happens in exactly one place, the vector compositor in package
// pdfdoc. Nothing in this package writes bottom-left coordinates for output.
package coords
