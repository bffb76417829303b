package httpapi

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ironsheep/redact-tools-mcp/internal/app"
	"github.com/ironsheep/redact-tools-mcp/internal/compose"
	"github.com/ironsheep/redact-tools-mcp/internal/history"
	"github.com/ironsheep/redact-tools-mcp/internal/pipeline"
	"github.com/ironsheep/redact-tools-mcp/internal/preset"
	"github.com/ironsheep/redact-tools-mcp/internal/redact"
)

const defaultHistoryLimit = 20

// Document is a base64 document in a request body.
type Document struct {
	Name string `json:"name"`
	Data string `json:"data"`
}

func (d Document) input() (pipeline.Input, error) {
	in, err := app.DecodeInput(d.Name, d.Data)
	if err != nil {
		return pipeline.Input{}, badRequest(err)
	}
	return in, nil
}

// AnalyzeRequest is the body of POST /v1/analyze.
type AnalyzeRequest struct {
	Document
	Preset         string              `json:"preset"`
	Threshold      *float64            `json:"threshold"`
	CustomPatterns []preset.PatternDef `json:"custom_patterns"`
}

func (r AnalyzeRequest) request() app.Request {
	return app.Request{PresetID: r.Preset, Threshold: r.Threshold, CustomPatterns: r.CustomPatterns}
}

// RedactRequest is the body of POST /v1/redact. Detections are required
// unless the request is automatic.
type RedactRequest struct {
	AnalyzeRequest
	Format     string             `json:"format"`
	SessionID  string             `json:"session_id"`
	Detections []redact.Detection `json:"detections"`
	Actions    []redact.Action    `json:"actions"`
}

// BatchRequest is the body of POST /v1/batch.
type BatchRequest struct {
	Documents []Document `json:"documents"`
	Preset    string     `json:"preset"`
	Format    string     `json:"format"`
}

// Output is a redacted document in a response body.
type Output struct {
	Name     string         `json:"name,omitempty"`
	Filename string         `json:"filename,omitempty"`
	MimeType string         `json:"mime_type,omitempty"`
	Data     string         `json:"data,omitempty"`
	Report   *redact.Report `json:"report,omitempty"`
	Warnings []string       `json:"warnings,omitempty"`
	Error    string         `json:"error,omitempty"`
}

func outputOf(res *redact.ApplyResult) Output {
	return Output{
		Filename: res.Filename,
		MimeType: res.MimeType,
		Data:     base64.StdEncoding.EncodeToString(res.Bytes),
		Report:   &res.Report,
		Warnings: res.Warnings,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, map[string]interface{}{"status": "ok", "version": app.Version})
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, map[string]interface{}{"info": s.app.Describe()})
}

func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, map[string]interface{}{"presets": s.app.Presets.List()})
}

func (s *Server) handlePreset(w http.ResponseWriter, r *http.Request) {
	p, err := s.app.Presets.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeSuccess(w, map[string]interface{}{"preset": p})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, CodeInvalidRequest, fmt.Sprintf("invalid limit %q", v))
			return
		}
		limit = n
	}
	entries, err := s.app.History.List(r.Context(), limit)
	if err != nil {
		writeFailure(w, err)
		return
	}
	if entries == nil {
		entries = []history.Entry{}
	}
	writeSuccess(w, map[string]interface{}{"entries": entries})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := decodeBody(r, &req); err != nil {
		writeFailure(w, err)
		return
	}
	in, err := req.input()
	if err != nil {
		writeFailure(w, err)
		return
	}
	opts, err := s.app.AnalyzeOptions(req.request())
	if err != nil {
		writeFailure(w, err)
		return
	}
	res, err := s.app.Engine.AnalyzeDocument(r.Context(), in, opts)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeSuccess(w, map[string]interface{}{"analysis": res})
}

func (s *Server) handleRedact(w http.ResponseWriter, r *http.Request) {
	var req RedactRequest
	if err := decodeBody(r, &req); err != nil {
		writeFailure(w, err)
		return
	}
	in, err := req.input()
	if err != nil {
		writeFailure(w, err)
		return
	}
	format := s.app.Format(req.Format)

	if auto, _ := strconv.ParseBool(r.URL.Query().Get("auto")); auto {
		opts, err := s.app.AnalyzeOptions(req.request())
		if err != nil {
			writeFailure(w, err)
			return
		}
		analysis, res, err := s.app.Engine.Redact(r.Context(), in, opts, format)
		if err != nil {
			writeFailure(w, err)
			return
		}
		writeSuccess(w, map[string]interface{}{"analysis": analysis, "output": outputOf(res)})
		return
	}

	if req.Detections == nil {
		writeError(w, http.StatusBadRequest, CodeInvalidRequest, "detections are required unless auto=1")
		return
	}
	p, err := s.app.Presets.Get(req.Preset)
	if err != nil {
		writeFailure(w, err)
		return
	}
	actions := req.Actions
	if actions == nil {
		actions = compose.AutoActions(req.Detections, p)
	}
	res, err := s.app.Engine.ApplyRedactions(r.Context(), in, pipeline.ApplyOptions{
		Detections: req.Detections,
		Actions:    actions,
		Preset:     p,
		Format:     format,
		SessionID:  req.SessionID,
	})
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeSuccess(w, map[string]interface{}{"output": outputOf(res)})
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := decodeBody(r, &req); err != nil {
		writeFailure(w, err)
		return
	}
	if len(req.Documents) == 0 {
		writeError(w, http.StatusBadRequest, CodeInvalidRequest, "documents must not be empty")
		return
	}
	opts, err := s.app.AnalyzeOptions(app.Request{PresetID: req.Preset})
	if err != nil {
		writeFailure(w, err)
		return
	}

	outputs := make([]Output, len(req.Documents))
	inputs := make([]pipeline.Input, 0, len(req.Documents))
	index := make([]int, 0, len(req.Documents))
	for i, d := range req.Documents {
		outputs[i].Name = d.Name
		in, err := d.input()
		if err != nil {
			outputs[i].Error = err.Error()
			continue
		}
		inputs = append(inputs, in)
		index = append(index, i)
	}

	failed := len(req.Documents) - len(inputs)
	for j, res := range s.app.Batch(r.Context(), inputs, opts, req.Format) {
		i := index[j]
		if res.Err != nil {
			outputs[i].Error = res.Err.Error()
			failed++
			continue
		}
		out := outputOf(res.Output)
		out.Name = outputs[i].Name
		outputs[i] = out
	}
	writeSuccess(w, map[string]interface{}{
		"results":   outputs,
		"succeeded": len(req.Documents) - failed,
		"failed":    failed,
	})
}
