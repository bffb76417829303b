package pdfdoc

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/ironsheep/redact-tools-mcp/internal/imaging"
)

// DefaultDPI is the render resolution used when Poppler.DPI is zero.
const DefaultDPI = 150

// Poppler renders pages with the pdftoppm tool.
type Poppler struct {
	// Path is the pdftoppm executable. Empty means look it up on PATH.
	Path string
	DPI  int
}

// Available reports whether the executable can be found.
func (p *Poppler) Available() bool {
	_, err := exec.LookPath(p.path())
	return err == nil
}

func (p *Poppler) path() string {
	if p.Path == "" {
		return "pdftoppm"
	}
	return p.Path
}

// Rasterize renders the zero-based page of data as an image.
func (p *Poppler) Rasterize(ctx context.Context, data []byte, page int) (image.Image, error) {
	dir, err := os.MkdirTemp("", "redact-raster-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	src := filepath.Join(dir, "in.pdf")
	if err := os.WriteFile(src, data, 0o600); err != nil {
		return nil, fmt.Errorf("failed to write temp PDF: %w", err)
	}

	dpi := p.DPI
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	n := strconv.Itoa(page + 1)
	out := filepath.Join(dir, "page")
	cmd := exec.CommandContext(ctx, p.path(), "-png", "-singlefile", "-r", strconv.Itoa(dpi), "-f", n, "-l", n, src, out)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("pdftoppm failed on page %d: %w: %s", page, err, bytes.TrimSpace(stderr.Bytes()))
	}

	png, err := os.ReadFile(out + ".png")
	if err != nil {
		return nil, fmt.Errorf("failed to read rendered page: %w", err)
	}
	return imaging.Decode(png)
}
