package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"github.com/go-pdf/fpdf"
	"github.com/straye-as/quotation-api/internal/domain"
	xdraw "golang.org/x/image/draw"
)

// Format is the encoded output type
type Format string

const (
	FormatPDF Format = "pdf"
	FormatPNG Format = "png"
)

// ContentType returns the MIME type of the format
func (f Format) ContentType() string {
	if f == FormatPNG {
		return "image/png"
	}
	return "application/pdf"
}

// Extension returns the file extension without the dot
func (f Format) Extension() string {
	if f == FormatPNG {
		return "png"
	}
	return "pdf"
}

// Orientation of the output page
type Orientation string

const (
	Portrait  Orientation = "portrait"
	Landscape Orientation = "landscape"
)

// Margins in millimetres, each independently settable
type Margins struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// PageOptions select the output format and page geometry. Nil Margins fall
// back to the configured defaults; explicit zero margins are kept.
type PageOptions struct {
	Format      Format      `json:"format"`
	Orientation Orientation `json:"orientation"`
	Margins     *Margins    `json:"margins,omitempty"`
}

func (o PageOptions) margins() Margins {
	if o.Margins == nil {
		return Margins{}
	}
	return *o.Margins
}

func (o PageOptions) withDefaults(def PageOptions) PageOptions {
	if o.Format == "" {
		o.Format = def.Format
	}
	if o.Format == "" {
		o.Format = FormatPDF
	}
	if o.Orientation == "" {
		o.Orientation = def.Orientation
	}
	if o.Orientation == "" {
		o.Orientation = Portrait
	}
	if o.Margins == nil && def.Margins != nil {
		m := *def.Margins
		o.Margins = &m
	}
	return o
}

// PageSize returns the A4 page size in millimetres for the orientation
func PageSize(o Orientation) (width, height float64) {
	if o == Landscape {
		return PageHeightMM, PageWidthMM
	}
	return PageWidthMM, PageHeightMM
}

// Placement positions the bitmap on the output page, in millimetres
type Placement struct {
	X, Y          float64
	Width, Height float64
	// Scale is millimetres per bitmap pixel
	Scale float64
}

// Layout fits a bitmap into the printable area with one uniform scale,
// anchored at the printable area's top-left corner
func Layout(bitmapWidth, bitmapHeight int, opts PageOptions) (Placement, error) {
	if bitmapWidth <= 0 || bitmapHeight <= 0 {
		return Placement{}, fmt.Errorf("empty bitmap %dx%d", bitmapWidth, bitmapHeight)
	}
	pageW, pageH := PageSize(opts.Orientation)
	m := opts.margins()
	printableW := pageW - m.Left - m.Right
	printableH := pageH - m.Top - m.Bottom
	if printableW <= 0 || printableH <= 0 {
		return Placement{}, fmt.Errorf("margins leave no printable area")
	}

	scale := min(printableW/float64(bitmapWidth), printableH/float64(bitmapHeight))
	return Placement{
		X:      m.Left,
		Y:      m.Top,
		Width:  float64(bitmapWidth) * scale,
		Height: float64(bitmapHeight) * scale,
		Scale:  scale,
	}, nil
}

// Encode places the snapshot on exactly one page of the requested format
func Encode(snap *Snapshot, opts PageOptions) ([]byte, error) {
	opts = opts.withDefaults(PageOptions{})
	b := snap.Image.Bounds()
	place, err := Layout(b.Dx(), b.Dy(), opts)
	if err != nil {
		return nil, &domain.RenderError{Stage: "layout", Err: err}
	}

	switch opts.Format {
	case FormatPNG:
		return encodePNG(snap, opts, place)
	case FormatPDF:
		return encodePDF(snap, opts, place)
	default:
		return nil, &domain.RenderError{Stage: "encode", Err: fmt.Errorf("unsupported format %q", opts.Format)}
	}
}

func encodePDF(snap *Snapshot, opts PageOptions, place Placement) ([]byte, error) {
	var bitmap bytes.Buffer
	if err := png.Encode(&bitmap, snap.Image); err != nil {
		return nil, &domain.RenderError{Stage: "encode", Err: err}
	}

	orientation := "P"
	if opts.Orientation == Landscape {
		orientation = "L"
	}
	pdf := fpdf.New(orientation, "mm", "A4", "")
	pdf.SetCreator("quotation-api", true)
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	imageOpts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("page", imageOpts, &bitmap)
	pdf.ImageOptions("page", place.X, place.Y, place.Width, place.Height, false, imageOpts, 0, "")

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, &domain.RenderError{Stage: "encode", Err: err}
	}
	return out.Bytes(), nil
}

// encodePNG draws the scaled bitmap onto a white page at the snapshot's density
func encodePNG(snap *Snapshot, opts PageOptions, place Placement) ([]byte, error) {
	pxPerMM := ReferenceDPI * snap.Factor / mmPerInch
	pageW, pageH := PageSize(opts.Orientation)

	page := image.NewRGBA(image.Rect(0, 0, int(pageW*pxPerMM+0.5), int(pageH*pxPerMM+0.5)))
	xdraw.Draw(page, page.Bounds(), image.NewUniform(color.White), image.Point{}, xdraw.Src)

	dst := image.Rect(
		int(place.X*pxPerMM+0.5),
		int(place.Y*pxPerMM+0.5),
		int((place.X+place.Width)*pxPerMM+0.5),
		int((place.Y+place.Height)*pxPerMM+0.5),
	)
	xdraw.CatmullRom.Scale(page, dst, snap.Image, snap.Image.Bounds(), xdraw.Over, nil)

	var out bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(&out, page); err != nil {
		return nil, &domain.RenderError{Stage: "encode", Err: err}
	}
	return out.Bytes(), nil
}
