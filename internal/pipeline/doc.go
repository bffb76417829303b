// Package pipeline runs documents through extraction, classification and
// redaction.
//
// Analysis and redaction are separate calls. AnalyzeDocument returns
// detections with session-scoped ids; ApplyRedactions takes those
// detections back explicitly together with the chosen actions, so no
// state is kept between calls and concurrent documents never share ids.
//
// A document is either a PDF or a raster image, decided by content
// sniffing rather than by file name. Rasters are OCR'd and scanned for
// barcodes; PDFs contribute their text layer, with optional rasterization
// for pages that have none.
package pipeline
