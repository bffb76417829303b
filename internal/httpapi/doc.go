// Package httpapi exposes the redaction service over HTTP/JSON.
//
// # Routes
//
//	GET  /healthz           liveness
//	GET  /v1/info           versions and active engines
//	GET  /v1/presets        all presets
//	GET  /v1/presets/{id}   one preset
//	GET  /v1/history        past redactions (?limit=n)
//	POST /v1/analyze        detect sensitive content
//	POST /v1/redact         apply chosen actions; ?auto=1 analyzes and redacts in one call
//	POST /v1/batch          auto-redact several documents
//
// Documents travel as base64 in JSON bodies. Every response carries
// "success"; failures add "error" and an "error_code".
package httpapi
