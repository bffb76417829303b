package server

import (
	"context"
	"encoding/base64"
	"fmt"
	"path/filepath"

	json "github.com/goccy/go-json"

	"github.com/ironsheep/redact-tools-mcp/internal/app"
	"github.com/ironsheep/redact-tools-mcp/internal/compose"
	"github.com/ironsheep/redact-tools-mcp/internal/history"
	"github.com/ironsheep/redact-tools-mcp/internal/imaging"
	"github.com/ironsheep/redact-tools-mcp/internal/pipeline"
	"github.com/ironsheep/redact-tools-mcp/internal/preset"
	"github.com/ironsheep/redact-tools-mcp/internal/redact"
)

// defaultHistoryLimit is used when redact_history is called without a limit.
const defaultHistoryLimit = 20

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "redact_analyze", "redact_apply").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}
	if len(params.Arguments) == 0 {
		params.Arguments = json.RawMessage("{}")
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.logger.Warn("Tool failed", "tool", params.Name, "err", err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Loads the document from path or base64 data
//  3. Calls the redaction service
//  4. Returns a result struct that will be JSON-serialized
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "redact_analyze":
		return s.handleAnalyze(ctx, args)
	case "redact_apply":
		return s.handleApply(ctx, args)
	case "redact_auto":
		return s.handleAuto(ctx, args)
	case "redact_batch":
		return s.handleBatch(ctx, args)
	case "redact_presets":
		return s.app.Presets.List(), nil
	case "redact_history":
		return s.handleHistory(ctx, args)
	case "redact_info":
		return s.app.Describe(), nil
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Argument types ===

type documentArgs struct {
	Path string `json:"path"`
	Data string `json:"data"`
	Name string `json:"name"`
}

func (d documentArgs) input() (pipeline.Input, error) {
	if d.Path != "" {
		return app.ReadInput(d.Path)
	}
	if d.Data != "" {
		return app.DecodeInput(d.Name, d.Data)
	}
	return pipeline.Input{}, fmt.Errorf("either path or data is required")
}

type analyzeArgs struct {
	documentArgs
	Preset         string              `json:"preset"`
	Threshold      *float64            `json:"threshold"`
	CustomPatterns []preset.PatternDef `json:"custom_patterns"`
}

func (a analyzeArgs) request() app.Request {
	return app.Request{PresetID: a.Preset, Threshold: a.Threshold, CustomPatterns: a.CustomPatterns}
}

type reviewArgs struct {
	analyzeArgs
	Preview int `json:"preview"`
	Page    int `json:"page"`
	Grid    int `json:"grid"`
}

type outputArgs struct {
	Format     string `json:"format"`
	OutputPath string `json:"output_path"`
	Preview    int    `json:"preview"`
}

type applyArgs struct {
	documentArgs
	outputArgs
	Preset     string             `json:"preset"`
	SessionID  string             `json:"session_id"`
	Detections []redact.Detection `json:"detections"`
	Actions    []redact.Action    `json:"actions"`
}

type autoArgs struct {
	analyzeArgs
	outputArgs
}

type batchArgs struct {
	Paths     []string `json:"paths"`
	Preset    string   `json:"preset"`
	Format    string   `json:"format"`
	OutputDir string   `json:"output_dir"`
}

type historyArgs struct {
	Limit int `json:"limit"`
}

// === Results ===

// DocumentResult describes a redacted document. Path inputs report where
// the output was written; data inputs carry the output as base64.
type DocumentResult struct {
	OutputPath string                 `json:"output_path,omitempty"`
	Data       string                 `json:"data,omitempty"`
	Filename   string                 `json:"filename"`
	MimeType   string                 `json:"mime_type"`
	Report     redact.Report          `json:"report"`
	Warnings   []string               `json:"warnings,omitempty"`
	Preview    *imaging.PreviewResult `json:"preview,omitempty"`
}

// AnalyzeResponse is an analysis plus an optional annotated page.
type AnalyzeResponse struct {
	*redact.AnalyzeResult
	Preview *imaging.PreviewResult `json:"preview,omitempty"`
}

// AutoResult is the analysis and redaction of one document.
type AutoResult struct {
	Analysis *redact.AnalyzeResult `json:"analysis"`
	Output   *DocumentResult       `json:"output"`
}

// BatchItem is the outcome for one file of a batch.
type BatchItem struct {
	Path       string         `json:"path"`
	OutputPath string         `json:"output_path,omitempty"`
	Detections int            `json:"detections"`
	Report     *redact.Report `json:"report,omitempty"`
	Warnings   []string       `json:"warnings,omitempty"`
	Error      string         `json:"error,omitempty"`
}

// BatchSummary is the redact_batch result.
type BatchSummary struct {
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
	Items     []BatchItem `json:"items"`
}

// === Handlers ===

func (s *Server) handleAnalyze(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a reviewArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	in, err := a.input()
	if err != nil {
		return nil, err
	}
	opts, err := s.app.AnalyzeOptions(a.request())
	if err != nil {
		return nil, err
	}
	res, err := s.app.Engine.AnalyzeDocument(ctx, in, opts)
	if err != nil {
		return nil, err
	}

	out := &AnalyzeResponse{AnalyzeResult: res}
	if a.Preview > 0 {
		img, err := s.app.ReviewImage(ctx, in, res.Detections, app.ReviewOptions{Page: a.Page, GridSpacing: a.Grid})
		if err == nil {
			out.Preview, err = imaging.Preview(img, a.Preview)
		}
		if err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("preview unavailable: %v", err))
		}
	}
	return out, nil
}

func (s *Server) handleApply(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a applyArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Detections == nil {
		return nil, fmt.Errorf("detections are required; pass the list returned by redact_analyze")
	}
	in, err := a.input()
	if err != nil {
		return nil, err
	}
	p, err := s.app.Presets.Get(a.Preset)
	if err != nil {
		return nil, err
	}
	actions := a.Actions
	if actions == nil {
		actions = compose.AutoActions(a.Detections, p)
	}
	res, err := s.app.Engine.ApplyRedactions(ctx, in, pipeline.ApplyOptions{
		Detections: a.Detections,
		Actions:    actions,
		Preset:     p,
		Format:     s.app.Format(a.Format),
		SessionID:  a.SessionID,
	})
	if err != nil {
		return nil, err
	}
	return s.deliver(ctx, a.Path, a.outputArgs, res)
}

func (s *Server) handleAuto(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a autoArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	in, err := a.input()
	if err != nil {
		return nil, err
	}
	opts, err := s.app.AnalyzeOptions(a.request())
	if err != nil {
		return nil, err
	}
	analysis, res, err := s.app.Engine.Redact(ctx, in, opts, s.app.Format(a.Format))
	if err != nil {
		return nil, err
	}
	out, err := s.deliver(ctx, a.Path, a.outputArgs, res)
	if err != nil {
		return nil, err
	}
	return &AutoResult{Analysis: analysis, Output: out}, nil
}

// deliver writes res next to a path input or encodes it for a data input.
func (s *Server) deliver(ctx context.Context, source string, o outputArgs, res *redact.ApplyResult) (*DocumentResult, error) {
	out := &DocumentResult{
		Filename: res.Filename,
		MimeType: res.MimeType,
		Report:   res.Report,
		Warnings: res.Warnings,
	}
	if source != "" {
		path := s.app.OutputPath(source, o.OutputPath, res)
		if err := app.WriteOutput(source, path, res); err != nil {
			return nil, err
		}
		out.OutputPath = path
	} else {
		out.Data = base64.StdEncoding.EncodeToString(res.Bytes)
	}
	if o.Preview > 0 {
		preview, err := s.app.Preview(ctx, res, o.Preview)
		if err != nil {
			out.Warnings = append(out.Warnings, fmt.Sprintf("preview unavailable: %v", err))
		}
		out.Preview = preview
	}
	return out, nil
}

func (s *Server) handleBatch(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a batchArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if len(a.Paths) == 0 {
		return nil, fmt.Errorf("paths must not be empty")
	}
	opts, err := s.app.AnalyzeOptions(app.Request{PresetID: a.Preset})
	if err != nil {
		return nil, err
	}

	summary := &BatchSummary{Items: make([]BatchItem, len(a.Paths))}
	inputs := make([]pipeline.Input, 0, len(a.Paths))
	index := make([]int, 0, len(a.Paths))
	for i, path := range a.Paths {
		summary.Items[i].Path = path
		in, err := app.ReadInput(path)
		if err != nil {
			summary.Items[i].Error = err.Error()
			continue
		}
		inputs = append(inputs, in)
		index = append(index, i)
	}

	for j, r := range s.app.Batch(ctx, inputs, opts, a.Format) {
		item := &summary.Items[index[j]]
		if r.Err != nil {
			item.Error = r.Err.Error()
			continue
		}
		item.Detections = len(r.Analysis.Detections)
		item.Report = &r.Output.Report
		item.Warnings = r.Output.Warnings
		path := s.app.OutputPath(r.Name, "", r.Output)
		if a.OutputDir != "" {
			path = filepath.Join(a.OutputDir, r.Output.Filename)
		}
		if err := app.WriteOutput(r.Name, path, r.Output); err != nil {
			item.Error = err.Error()
			continue
		}
		item.OutputPath = path
	}

	for _, item := range summary.Items {
		if item.Error != "" {
			summary.Failed++
		} else {
			summary.Succeeded++
		}
	}
	return summary, nil
}

func (s *Server) handleHistory(ctx context.Context, args json.RawMessage) (interface{}, error) {
	a := historyArgs{Limit: defaultHistoryLimit}
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	entries, err := s.app.History.List(ctx, a.Limit)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []history.Entry{}
	}
	return entries, nil
}
