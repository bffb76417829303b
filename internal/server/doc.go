// Package server implements the MCP (Model Context Protocol) server for
// document redaction.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods: initialize, tools/list, tools/call and ping.
//
// # Available Tools
//
//   - redact_analyze: find sensitive content and return detections with ids
//   - redact_apply: burn chosen styles into a document; takes the detections back
//   - redact_auto: analyze and redact in one call using a preset's styles
//   - redact_batch: auto-redact several files with a bounded worker pool
//   - redact_presets: list presets
//   - redact_history: list past redactions
//   - redact_info: versions and active engines
//
// # Documents
//
// Every document tool accepts either "path" (a file the server can read) or
// "data" (base64 bytes). Outputs for path inputs are written next to the
// input, or to the configured output directory, and the path is returned.
// Outputs for data inputs are returned as base64.
//
// # Statelessness
//
// No analysis is remembered between calls. redact_apply must be given the
// detections it refers to, so concurrent clients can never resolve each
// other's detection ids.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with
// code -32000 and the Go error string as data. Skipped actions and failed
// pages are not errors; they appear in the result's warnings.
package server
