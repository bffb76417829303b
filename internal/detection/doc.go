// Package detection finds text-like regions in rasters when OCR is unavailable.
//
// The detector is a heuristic: it looks for windows with a moderate edge
// density and a predominantly horizontal edge structure, the signature of
// printed lines of text. Regions are reported as pre-classified tokens of
// kind OTHER so that an operator can still review and redact them.
//
// # Algorithm
//
//  1. Convert to grayscale and mark pixels whose horizontal or vertical
//     gradient exceeds a fixed threshold.
//  2. Slide windows of several text-line sizes across the image and score
//     each one from its edge density and horizontal run ratio.
//  3. Merge overlapping candidates, keeping the highest score.
//
// # Confidence
//
// Region confidence never exceeds MaxConfidence. A region says "something is
// written here", not what it is, and the cap keeps it from outranking real
// classifier output.
//
// # Coordinate System
//
// Tokens use pixel coordinates with the origin at the top-left corner.
package detection
