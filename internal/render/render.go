// Package render turns a composed document into a one-page PDF or PNG.
//
// The document is drawn onto an off-screen surface sized to one A4 page at
// 96 dpi, captured at a supersampling factor of at most 2, then scaled
// uniformly into the printable area of the output page. Content taller than
// the page is clipped.
package render

import (
	"context"
	"time"

	"github.com/straye-as/quotation-api/internal/config"
	"github.com/straye-as/quotation-api/internal/document"
	"go.uber.org/zap"
)

// Virtual page geometry
const (
	PageWidthMM  = 210.0
	PageHeightMM = 297.0
	ReferenceDPI = 96.0
	mmPerInch    = 25.4

	// MaxSupersample caps the capture density multiplier
	MaxSupersample = 2.0
)

// PageWidthPx and PageHeightPx are the virtual page size at ReferenceDPI
var (
	PageWidthPx  = mmToPx(PageWidthMM)
	PageHeightPx = mmToPx(PageHeightMM)
)

func mmToPx(mm float64) int {
	return int(mm/mmPerInch*ReferenceDPI + 0.5)
}

// SupersampleFactor returns min(2, pixelRatio). Non-positive ratios mean 1.
func SupersampleFactor(pixelRatio float64) float64 {
	if pixelRatio <= 0 {
		return 1
	}
	if pixelRatio > MaxSupersample {
		return MaxSupersample
	}
	return pixelRatio
}

// Output is an encoded document
type Output struct {
	Data        []byte
	ContentType string
	Extension   string
	Snapshot    *Snapshot
}

// Renderer runs the capture and encode stages with defaults from configuration
type Renderer struct {
	rasterizer *Rasterizer
	pixelRatio float64
	page       PageOptions
	logger     *zap.Logger
}

// NewRenderer creates a renderer. images may be nil, in which case no images are drawn.
func NewRenderer(cfg *config.RenderConfig, images ImageSource, logger *zap.Logger) (*Renderer, error) {
	fonts, err := LoadFonts(cfg.FontPath, cfg.BoldFontPath)
	if err != nil {
		return nil, err
	}
	return &Renderer{
		rasterizer: NewRasterizer(fonts, images, logger),
		pixelRatio: cfg.DevicePixelRatio,
		page: PageOptions{
			Format:      Format(cfg.Format),
			Orientation: Orientation(cfg.Orientation),
			Margins: &Margins{
				Top:    cfg.MarginTop,
				Right:  cfg.MarginRight,
				Bottom: cfg.MarginBottom,
				Left:   cfg.MarginLeft,
			},
		},
		logger: logger,
	}, nil
}

// Defaults returns the configured page options
func (r *Renderer) Defaults() PageOptions {
	return r.page
}

// Render captures doc and encodes it as one page. Zero fields of opts fall
// back to the configured defaults.
func (r *Renderer) Render(ctx context.Context, doc *document.Document, opts PageOptions) (*Output, error) {
	opts = opts.withDefaults(r.page)
	start := time.Now()

	snap, err := r.rasterizer.Capture(ctx, doc, r.pixelRatio)
	if err != nil {
		observeRender(opts.Format, "error", start)
		return nil, err
	}

	data, err := Encode(snap, opts)
	if err != nil {
		observeRender(opts.Format, "error", start)
		return nil, err
	}
	observeRender(opts.Format, "ok", start)

	r.logger.Debug("Rendered document",
		zap.String("format", string(opts.Format)),
		zap.String("orientation", string(opts.Orientation)),
		zap.Float64("factor", snap.Factor),
		zap.Int("images", snap.ImagesDrawn),
		zap.Int("bytes", len(data)))

	return &Output{
		Data:        data,
		ContentType: opts.Format.ContentType(),
		Extension:   opts.Format.Extension(),
		Snapshot:    snap,
	}, nil
}
