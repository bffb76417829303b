// Package ocr turns raster pages into word tokens using Tesseract.
//
// The package wraps the Tesseract OCR engine (via gosseract/v2). Each
// recognised word becomes a redact.Token tagged with pixel top-left
// coordinates, so downstream normalization needs no knowledge of the OCR
// engine.
//
// # Prerequisites
//
// Tesseract and its language data must be installed on the system:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng
//   - macOS: brew install tesseract
//
// A custom tessdata directory can be supplied through Engine.TessdataPrefix
// (config key ocr.tessdata_prefix).
//
// # Confidence
//
// Tesseract reports word confidence on a 0-100 scale. Tokens carry it
// divided by 100. Words below Engine.MinConfidence are dropped before they
// reach the classifier.
//
// # Concurrency
//
// A gosseract client is not safe for concurrent use, so Engine creates one
// client per call. Engine itself may be shared between goroutines.
package ocr
