package server

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-pdf/fpdf"
	json "github.com/goccy/go-json"

	"github.com/ironsheep/redact-tools-mcp/internal/app"
	"github.com/ironsheep/redact-tools-mcp/internal/config"
	"github.com/ironsheep/redact-tools-mcp/internal/history"
)

// newTestServer builds a server without OCR, barcodes or a rasterizer so
// results depend only on the PDF text layer.
func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.OCR.Enabled = false
	cfg.Barcode.Enabled = false
	cfg.Rasterize.Enabled = false
	cfg.Cache.TTLSeconds = 0
	cfg.History.Driver = history.DriverMemory

	a, err := app.New(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("app.New failed: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return New(a)
}

// createStatementPDF writes a one-page PDF holding an email address and
// returns its path.
func createStatementPDF(t *testing.T) string {
	t.Helper()
	f := fpdf.New("P", "pt", "Letter", "")
	f.AddPage()
	f.SetFont("Helvetica", "", 12)
	f.Text(72, 100, "Contact")
	f.Text(150, 100, "jane@mail.com")
	f.Text(72, 200, "Balance")

	path := filepath.Join(t.TempDir(), "statement.pdf")
	if err := f.OutputFileAndClose(path); err != nil {
		t.Fatalf("Failed to write PDF: %v", err)
	}
	return path
}

// createTestPNG encodes a solid image.
func createTestPNG(t *testing.T, width, height int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode PNG: %v", err)
	}
	return buf.Bytes()
}

// callTool runs a tools/call request and decodes the text content into out.
// It returns the JSON-RPC error, if any.
func callTool(t *testing.T, s *Server, name string, args interface{}, out interface{}) *MCPError {
	t.Helper()
	rawArgs, err := json.Marshal(args)
	if err != nil {
		t.Fatalf("Failed to marshal args: %v", err)
	}
	params, _ := json.Marshal(ToolCallParams{Name: name, Arguments: rawArgs})
	resp := s.handleRequest(context.Background(), &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  params,
	})
	if resp == nil {
		t.Fatal("Expected response, got nil")
	}
	if resp.Error != nil {
		return resp.Error
	}

	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatalf("Result should be a map, got %T", resp.Result)
	}
	content, ok := result["content"].([]map[string]interface{})
	if !ok || len(content) != 1 {
		t.Fatalf("Expected one content item, got %v", result["content"])
	}
	text, _ := content[0]["text"].(string)
	if out != nil {
		if err := json.Unmarshal([]byte(text), out); err != nil {
			t.Fatalf("Failed to decode tool result: %v\n%s", err, text)
		}
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
