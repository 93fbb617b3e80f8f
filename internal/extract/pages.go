package extract

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
)

// PageRenderer turns a document into one PNG buffer per page. Rasterization
// itself is an external concern; the evaluation pipeline only depends on this
// interface.
type PageRenderer interface {
	RenderPages(ctx context.Context, doc *Document) ([][]byte, error)
}

// PopplerRenderer renders PDF pages with pdftoppm and passes image files
// through untouched as a single page.
type PopplerRenderer struct {
	// Pdftoppm is the binary to invoke. Defaults to "pdftoppm" on PATH.
	Pdftoppm string

	// DPI is the render resolution. Defaults to 150, which keeps page
	// images small enough for vision-model context limits.
	DPI int
}

// NewPopplerRenderer returns a renderer with default settings.
func NewPopplerRenderer() *PopplerRenderer {
	return &PopplerRenderer{Pdftoppm: "pdftoppm", DPI: 150}
}

// RenderPages implements the PageRenderer interface.
func (r *PopplerRenderer) RenderPages(ctx context.Context, doc *Document) ([][]byte, error) {
	if !doc.IsPDF() {
		return [][]byte{doc.Bytes}, nil
	}

	tmpDir, err := os.MkdirTemp("", "receipt-eval-pages-*")
	if err != nil {
		return nil, fmt.Errorf("render pages: create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	in := filepath.Join(tmpDir, "doc.pdf")
	if err := os.WriteFile(in, doc.Bytes, 0o644); err != nil {
		return nil, fmt.Errorf("render pages: write temp pdf: %w", err)
	}

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r 150 -png <in.pdf> <tmp/page>
	cmd := exec.CommandContext(ctx, r.binary(), "-r", fmt.Sprintf("%d", r.dpi()), "-png", in, prefix)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("render pages: pdftoppm: %w: %s", err, snippet(string(out)))
	}

	// Collect generated PNGs (page-1.png, page-2.png, ...).
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if len(matches) == 0 {
		return nil, fmt.Errorf("render pages: pdftoppm produced no images")
	}

	pages := make([][]byte, 0, len(matches))
	for _, m := range matches {
		data, err := os.ReadFile(m)
		if err != nil {
			return nil, fmt.Errorf("render pages: read %q: %w", m, err)
		}
		pages = append(pages, data)
	}

	return pages, nil
}

func (r *PopplerRenderer) binary() string {
	if r.Pdftoppm != "" {
		return r.Pdftoppm
	}
	return "pdftoppm"
}

func (r *PopplerRenderer) dpi() int {
	if r.DPI > 0 {
		return r.DPI
	}
	return 150
}
