package render

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/straye-as/quotation-api/internal/document"
	"github.com/straye-as/quotation-api/internal/domain"
	"go.uber.org/zap"
)

// Snapshot is the captured bitmap of one virtual page
type Snapshot struct {
	Image image.Image
	// Factor is the supersampling factor the bitmap was captured at
	Factor float64
	// ImagesDrawn counts every embedded image, ItemImagesDrawn only line item images
	ImagesDrawn     int
	ItemImagesDrawn int
}

// Rasterizer draws document trees onto an off-screen surface
type Rasterizer struct {
	fonts  *Fonts
	images ImageSource
	logger *zap.Logger
}

// NewRasterizer creates a rasterizer. images may be nil.
func NewRasterizer(fonts *Fonts, images ImageSource, logger *zap.Logger) *Rasterizer {
	return &Rasterizer{fonts: fonts, images: images, logger: logger}
}

// Capture renders doc onto one virtual page and returns the bitmap. The surface
// is released on every path; failures are returned as *domain.RenderError.
func (r *Rasterizer) Capture(ctx context.Context, doc *document.Document, pixelRatio float64) (snap *Snapshot, err error) {
	factor := SupersampleFactor(pixelRatio)

	s, err := newSurface(PageWidthPx, PageHeightPx, factor, r.fonts)
	if err != nil {
		return nil, &domain.RenderError{Stage: "allocate", Err: err}
	}
	defer s.Close()
	defer func() {
		if rec := recover(); rec != nil {
			snap, err = nil, &domain.RenderError{Stage: "render", Err: fmt.Errorf("%v", rec)}
		}
	}()

	p := &painter{
		ctx:    ctx,
		s:      s,
		images: r.images,
		logger: r.logger,
		cache:  make(map[string]image.Image),
	}
	p.paint(doc)

	if err := ctx.Err(); err != nil {
		return nil, &domain.RenderError{Stage: "capture", Err: err}
	}

	return &Snapshot{
		Image:           s.snapshot(),
		Factor:          factor,
		ImagesDrawn:     p.imagesDrawn,
		ItemImagesDrawn: p.itemImagesDrawn,
	}, nil
}

// Page layout in virtual pixels
const (
	margin       = 40.0
	contentWidth = 794.0 - 2*margin
	footerY      = 1123.0 - 32
	thumbSize    = 44.0
	logoMaxW     = 160.0
	logoMaxH     = 64.0
	cellPad      = 4.0
)

var (
	ruleColor   = color.Gray{Y: 160}
	headerFill  = color.Gray{Y: 230}
	borderColor = color.Gray{Y: 190}
)

// column widths for the item table, in document.ItemTable column order
var columnWidths = []float64{28, 120, 180, 44, 40, 94, 80, 128}

type painter struct {
	ctx    context.Context
	s      *surface
	images ImageSource
	logger *zap.Logger
	cache  map[string]image.Image
	y      float64

	imagesDrawn     int
	itemImagesDrawn int
}

func (p *painter) paint(doc *document.Document) {
	p.y = margin
	p.letterhead(doc.Letterhead)
	p.rule()
	p.title(doc.Title)
	p.info(doc.Info)
	p.itemTable(doc.Items)
	p.totals(doc.Totals)
	p.fields("Terms & Conditions", doc.Terms)
	p.fields("Bank Details", doc.BankDetails)
	p.signature(doc.Signature)
	if doc.Footer != "" {
		p.s.text(doc.Footer, margin+contentWidth/2, footerY, 7.5, false, 0.5)
	}
}

// image resolves ref once per capture. Unresolvable images are skipped.
func (p *painter) image(ref string) image.Image {
	if ref == "" || p.images == nil {
		return nil
	}
	if img, ok := p.cache[ref]; ok {
		return img
	}
	img, err := p.images.Image(p.ctx, ref)
	if err != nil {
		p.logger.Debug("Skipping unresolvable image", zap.String("ref", ref), zap.Error(err))
		img = nil
	}
	p.cache[ref] = img
	return img
}

func (p *painter) letterhead(lh document.Letterhead) {
	align, x := 0.0, margin
	switch lh.LogoPosition {
	case document.LogoCenter:
		align, x = 0.5, margin+contentWidth/2
	case document.LogoRight:
		align, x = 1.0, margin+contentWidth
	}

	if logo := p.image(lh.Logo); logo != nil {
		b := logo.Bounds()
		scale := min(logoMaxW/float64(b.Dx()), logoMaxH/float64(b.Dy()))
		w := float64(b.Dx()) * scale
		p.s.image(logo, x-align*w, p.y, logoMaxW, logoMaxH)
		p.imagesDrawn++
		p.y += float64(b.Dy())*scale + 8
	}

	p.y += p.s.text(lh.Name, x, p.y, 16, true, align)
	if lh.NameEn != "" {
		p.y += p.s.text(lh.NameEn, x, p.y, 11, true, align)
	}
	for _, line := range lh.Lines {
		p.y += p.s.text(line, x, p.y, 8, false, align)
	}
	p.y += 4
}

func (p *painter) rule() {
	p.s.line(margin, p.y, margin+contentWidth, p.y, ruleColor)
	p.y += 10
}

func (p *painter) title(title string) {
	p.y += p.s.text(title, margin+contentWidth/2, p.y, 18, true, 0.5) + 6
}

func (p *painter) info(panel document.InfoPanel) {
	half := contentWidth / 2
	left, right := p.y, p.y

	if len(panel.Recipient) > 0 {
		left += p.s.text("To:", margin, left, 9, true, 0)
		for _, line := range panel.Recipient {
			for _, w := range p.s.wrap(line, half-12, 9, false) {
				left += p.s.text(w, margin, left, 9, false, 0)
			}
		}
	}
	for _, f := range panel.Metadata {
		p.s.text(f.Label+":", margin+half, right, 9, true, 0)
		right += p.s.text(f.Value, margin+half+90, right, 9, false, 0)
	}
	p.y = max(left, right) + 12
}

func (p *painter) itemTable(table document.ItemTable) {
	const size = 8.0
	lh := p.s.lineHeight(size)

	headerH := lh + 2*cellPad
	p.s.fillRect(margin, p.y, contentWidth, headerH, headerFill)
	x := margin
	for i, col := range table.Columns {
		if i < len(columnWidths) {
			p.s.text(col, x+cellPad, p.y+cellPad, size, true, 0)
			x += columnWidths[i]
		}
	}
	p.s.strokeRect(margin, p.y, contentWidth, headerH, borderColor)
	p.y += headerH

	for _, row := range table.Rows {
		cells := []string{
			fmt.Sprint(row.Number), row.Product, row.Description, row.Quantity,
			row.Unit, row.UnitPrice, row.Discount, row.Total,
		}
		wrapped := make([][]string, len(cells))
		lines := 1
		for i, c := range cells {
			wrapped[i] = p.s.wrap(c, columnWidths[i]-2*cellPad, size, false)
			lines = max(lines, len(wrapped[i]))
		}

		rowH := float64(lines)*lh + 2*cellPad
		var thumbs []image.Image
		for _, ref := range row.Images {
			if img := p.image(ref); img != nil {
				thumbs = append(thumbs, img)
			}
		}
		if len(thumbs) > 0 {
			rowH += thumbSize + cellPad
		}

		x := margin
		for i, ls := range wrapped {
			for j, l := range ls {
				p.s.text(l, x+cellPad, p.y+cellPad+float64(j)*lh, size, false, 0)
			}
			x += columnWidths[i]
		}

		tx := margin + columnWidths[0] + cellPad
		ty := p.y + cellPad + float64(lines)*lh + cellPad/2
		for _, img := range thumbs {
			w := p.s.image(img, tx, ty, thumbSize, thumbSize)
			tx += w + cellPad
			p.imagesDrawn++
			p.itemImagesDrawn++
		}

		p.s.strokeRect(margin, p.y, contentWidth, rowH, borderColor)
		p.y += rowH
	}
	p.y += 8
}

func (p *painter) totals(lines []document.TotalLine) {
	right := margin + contentWidth - cellPad
	labelX := right - 200
	for _, t := range lines {
		size := 9.0
		if t.Emphasis {
			size = 10.5
		}
		p.s.text(t.Label, labelX, p.y, size, t.Emphasis, 0)
		p.y += p.s.text(t.Amount, right, p.y, size, t.Emphasis, 1)
	}
	p.y += 10
}

func (p *painter) fields(heading string, fields []document.Field) {
	if len(fields) == 0 {
		return
	}
	p.y += p.s.text(heading, margin, p.y, 10, true, 0) + 2
	for _, f := range fields {
		p.s.text(f.Label+":", margin, p.y, 8.5, true, 0)
		value := strings.TrimSpace(f.Value)
		for _, part := range strings.Split(value, "\n") {
			for _, w := range p.s.wrap(part, contentWidth-130, 8.5, false) {
				p.y += p.s.text(w, margin+130, p.y, 8.5, false, 0)
			}
		}
	}
	p.y += 10
}

func (p *painter) signature(sig document.Signature) {
	if len(sig.Labels) == 0 {
		return
	}
	p.y += 30
	width := contentWidth / float64(len(sig.Labels))
	for i, label := range sig.Labels {
		x := margin + float64(i)*width
		p.s.line(x+10, p.y, x+width-30, p.y, ruleColor)
		p.s.text(label, x+10, p.y+4, 8.5, false, 0)
		if i == 0 && sig.Company != "" {
			p.s.text(sig.Company, x+10, p.y+18, 8.5, true, 0)
		}
	}
	p.y += 36
}
