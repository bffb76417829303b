package server

import (
	"bufio"
	"context"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
)

func TestMCPRequest_Unmarshal(t *testing.T) {
	tests := []struct {
		name       string
		json       string
		wantID     interface{}
		wantMethod string
	}{
		{"string id", `{"jsonrpc":"2.0","id":"test-1","method":"tools/list"}`, "test-1", "tools/list"},
		{"number id", `{"jsonrpc":"2.0","id":42,"method":"ping"}`, float64(42), "ping"},
		{"null id", `{"jsonrpc":"2.0","id":null,"method":"initialize"}`, nil, "initialize"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req MCPRequest
			if err := json.Unmarshal([]byte(tt.json), &req); err != nil {
				t.Fatalf("Failed to unmarshal: %v", err)
			}
			if req.ID != tt.wantID {
				t.Errorf("ID: got %v (%T), want %v (%T)", req.ID, req.ID, tt.wantID, tt.wantID)
			}
			if req.Method != tt.wantMethod {
				t.Errorf("Method: got %s, want %s", req.Method, tt.wantMethod)
			}
		})
	}
}

func TestRun(t *testing.T) {
	s := newTestServer(t)
	input := strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		``,
		`{"jsonrpc":"2.0","id":2,"method":"ping"}`,
		`not json`,
		`{"jsonrpc":"2.0","id":3,"method":"resources/list"}`,
	}, "\n")

	var out strings.Builder
	if err := s.Run(context.Background(), strings.NewReader(input), &out); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	var responses []MCPResponse
	scanner := bufio.NewScanner(strings.NewReader(out.String()))
	for scanner.Scan() {
		var resp MCPResponse
		if err := json.Unmarshal(scanner.Bytes(), &resp); err != nil {
			t.Fatalf("Invalid response line %q: %v", scanner.Text(), err)
		}
		responses = append(responses, resp)
	}

	// The notification and the blank line produce nothing.
	if len(responses) != 4 {
		t.Fatalf("Expected 4 responses, got %d:\n%s", len(responses), out.String())
	}
	if responses[0].Error != nil {
		t.Errorf("initialize failed: %v", responses[0].Error)
	}
	if responses[1].Error != nil {
		t.Errorf("ping failed: %v", responses[1].Error)
	}
	if responses[2].Error == nil || responses[2].Error.Code != -32700 {
		t.Errorf("Expected parse error, got %+v", responses[2].Error)
	}
	if responses[3].Error == nil || responses[3].Error.Code != -32601 {
		t.Errorf("Expected method not found, got %+v", responses[3].Error)
	}
}

func TestRunStopsWhenCancelled(t *testing.T) {
	s := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out strings.Builder
	err := s.Run(ctx, strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"ping"}`+"\n"), &out)
	if err != context.Canceled {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("Expected no output, got %q", out.String())
	}
}

func TestHandleInitialize(t *testing.T) {
	s := newTestServer(t)
	resp := s.handleRequest(context.Background(), &MCPRequest{JSONRPC: "2.0", ID: 1, Method: "initialize"})

	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatalf("Result should be a map, got %T", resp.Result)
	}
	if result["protocolVersion"] != ProtocolVersion {
		t.Errorf("protocolVersion: got %v, want %s", result["protocolVersion"], ProtocolVersion)
	}
	info, ok := result["serverInfo"].(map[string]interface{})
	if !ok {
		t.Fatal("serverInfo should be a map")
	}
	if info["name"] != "redact-tools-mcp" {
		t.Errorf("serverInfo.name: got %v", info["name"])
	}
}

func TestHandleRequest_ToolsList(t *testing.T) {
	s := newTestServer(t)
	resp := s.handleRequest(context.Background(), &MCPRequest{JSONRPC: "2.0", ID: 1, Method: "tools/list"})

	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatalf("Result should be a map, got %T", resp.Result)
	}
	tools, ok := result["tools"].([]Tool)
	if !ok {
		t.Fatalf("tools should be []Tool, got %T", result["tools"])
	}

	want := []string{
		"redact_analyze", "redact_apply", "redact_auto", "redact_batch",
		"redact_presets", "redact_history", "redact_info",
	}
	if len(tools) != len(want) {
		t.Fatalf("Expected %d tools, got %d", len(want), len(tools))
	}
	for i, name := range want {
		if tools[i].Name != name {
			t.Errorf("tool %d: got %s, want %s", i, tools[i].Name, name)
		}
		if tools[i].InputSchema["type"] != "object" {
			t.Errorf("%s: schema type should be object", name)
		}
	}

	required, _ := tools[1].InputSchema["required"].([]string)
	if len(required) != 1 || required[0] != "detections" {
		t.Errorf("redact_apply should require detections, got %v", required)
	}
}
