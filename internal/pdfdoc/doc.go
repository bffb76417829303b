// Package pdfdoc reads PDF text layers into tokens and writes redacted PDFs.
//
// # Reading
//
// Read parses a document with ledongthuc/pdf, groups the glyph runs of every
// page into words and records which document information fields the source
// carried. Words keep PDF user space: points with the origin at the
// bottom-left corner of the MediaBox. Tokens produced from them are tagged
// redact.CoordPointBottomLeft and are converted to top-left boxes by
// coords.Normalize, never here.
//
// Pages whose content stream cannot be parsed are reported as page-level
// extraction errors; the rest of the document is still read.
//
// # Writing
//
// Writer builds a fresh document with go-pdf/fpdf. Nothing from the source
// file is copied byte for byte: kept words are re-emitted as new text,
// redacted words are simply never written, and the information dictionary
// is left empty. Writer implements compose.Surface, taking top-left
// rectangles in points; toUserSpace is the one place where they are turned
// into bottom-left user space.
package pdfdoc
