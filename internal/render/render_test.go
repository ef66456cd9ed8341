package render_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/straye-as/quotation-api/internal/config"
	"github.com/straye-as/quotation-api/internal/document"
	"github.com/straye-as/quotation-api/internal/domain"
	"github.com/straye-as/quotation-api/internal/render"
	"github.com/straye-as/quotation-api/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeImages serves a small square for every ref except those listed as missing
type fakeImages struct {
	missing map[string]bool
	calls   int
}

func (f *fakeImages) Image(ctx context.Context, ref string) (image.Image, error) {
	f.calls++
	if f.missing[ref] {
		return nil, errors.New("not found")
	}
	img := image.NewRGBA(image.Rect(0, 0, 20, 10))
	for x := 0; x < 20; x++ {
		for y := 0; y < 10; y++ {
			img.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}
	return img, nil
}

func sampleDocument(images []string, show bool) *document.Document {
	return document.Compose(document.Input{
		Company: domain.Company{Name: "Acme", Logo: "logo.png", BankName: "First Bank", BankAccount: "123"},
		Customer: document.Customer{
			Name:    "Jane Buyer",
			Address: "5 Market St",
		},
		Quotation: document.Quotation{
			Number:       "Q-1",
			Date:         "2024-03-15",
			ExpiryDate:   "2024-04-14",
			Currency:     "USD",
			PaymentTerms: "Net 30\nBank transfer",
			Items: []document.Item{
				{ProductName: "Pipe with a long product name that wraps", Description: "Seamless steel pipe, 50mm", Quantity: 2, UnitPrice: 10, TotalPrice: 20, Images: images},
				{ProductName: "Valve", Quantity: 1, UnitPrice: 5, TotalPrice: 5},
			},
			Subtotal:  25,
			TaxRate:   8.5,
			TaxAmount: 2.13,
			Total:     27.13,
		},
		Options: document.Options{LogoPosition: document.LogoRight, ShowItemImages: show},
	})
}

func TestPageGeometry(t *testing.T) {
	assert.Equal(t, 794, render.PageWidthPx)
	assert.Equal(t, 1123, render.PageHeightPx)
}

func TestSupersampleFactor(t *testing.T) {
	tests := []struct {
		ratio float64
		want  float64
	}{
		{0, 1},
		{-1, 1},
		{1, 1},
		{1.5, 1.5},
		{2, 2},
		{3, 2},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, render.SupersampleFactor(tt.ratio), "ratio %v", tt.ratio)
	}
}

func TestLayout(t *testing.T) {
	margins := render.Margins{Top: 10, Right: 10, Bottom: 10, Left: 10}

	t.Run("portrait is width bound", func(t *testing.T) {
		p, err := render.Layout(1588, 2246, render.PageOptions{Orientation: render.Portrait, Margins: &margins})
		require.NoError(t, err)
		assert.InDelta(t, 190.0/1588, p.Scale, 1e-9)
		assert.InDelta(t, 190.0, p.Width, 1e-9)
		assert.LessOrEqual(t, p.Height, 277.0)
		assert.Equal(t, 10.0, p.X)
		assert.Equal(t, 10.0, p.Y)
	})

	t.Run("landscape is height bound", func(t *testing.T) {
		p, err := render.Layout(794, 1123, render.PageOptions{Orientation: render.Landscape, Margins: &margins})
		require.NoError(t, err)
		assert.InDelta(t, 190.0/1123, p.Scale, 1e-9)
		assert.InDelta(t, 190.0, p.Height, 1e-9)
		assert.LessOrEqual(t, p.Width, 277.0)
	})

	t.Run("asymmetric margins", func(t *testing.T) {
		p, err := render.Layout(100, 100, render.PageOptions{Margins: &render.Margins{Top: 5, Right: 50, Bottom: 20, Left: 30}})
		require.NoError(t, err)
		assert.InDelta(t, 130.0/100, p.Scale, 1e-9)
		assert.Equal(t, 30.0, p.X)
		assert.Equal(t, 5.0, p.Y)
	})

	t.Run("no printable area", func(t *testing.T) {
		_, err := render.Layout(100, 100, render.PageOptions{Margins: &render.Margins{Left: 150, Right: 100}})
		assert.Error(t, err)
	})
}

func TestCapture_SurfaceSize(t *testing.T) {
	r := render.NewRasterizer(render.DefaultFonts(), nil, zap.NewNop())

	snap, err := r.Capture(context.Background(), sampleDocument(nil, false), 3)
	require.NoError(t, err)
	assert.Equal(t, 2.0, snap.Factor)
	assert.Equal(t, image.Rect(0, 0, 1588, 2246), snap.Image.Bounds())

	snap, err = r.Capture(context.Background(), sampleDocument(nil, false), 1)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 794, 1123), snap.Image.Bounds())
}

func TestCapture_ItemImagesCapped(t *testing.T) {
	images := &fakeImages{}
	r := render.NewRasterizer(render.DefaultFonts(), images, zap.NewNop())

	doc := sampleDocument([]string{"1.png", "2.png", "3.png", "4.png", "5.png"}, true)
	snap, err := r.Capture(context.Background(), doc, 1)
	require.NoError(t, err)

	assert.Equal(t, 3, snap.ItemImagesDrawn)
	// logo plus item images
	assert.Equal(t, 4, snap.ImagesDrawn)
}

func TestCapture_UnresolvableImagesAreSkipped(t *testing.T) {
	images := &fakeImages{missing: map[string]bool{"logo.png": true, "2.png": true}}
	r := render.NewRasterizer(render.DefaultFonts(), images, zap.NewNop())

	snap, err := r.Capture(context.Background(), sampleDocument([]string{"1.png", "2.png", "1.png"}, true), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, snap.ItemImagesDrawn)
	assert.Equal(t, 2, snap.ImagesDrawn)
	// repeated references resolve once
	assert.Equal(t, 3, images.calls)
}

func TestCapture_ImagesHiddenByOption(t *testing.T) {
	r := render.NewRasterizer(render.DefaultFonts(), &fakeImages{}, zap.NewNop())
	snap, err := r.Capture(context.Background(), sampleDocument([]string{"1.png"}, false), 1)
	require.NoError(t, err)
	assert.Zero(t, snap.ItemImagesDrawn)
}

func TestCapture_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := render.NewRasterizer(render.DefaultFonts(), nil, zap.NewNop())
	_, err := r.Capture(ctx, sampleDocument(nil, false), 1)

	var renderErr *domain.RenderError
	require.ErrorAs(t, err, &renderErr)
	assert.Equal(t, "capture", renderErr.Stage)
}

func pageCount(pdf []byte) int {
	s := string(pdf)
	return strings.Count(s, "/Type /Page") - strings.Count(s, "/Type /Pages")
}

func TestEncode_PDF(t *testing.T) {
	r := render.NewRasterizer(render.DefaultFonts(), nil, zap.NewNop())
	snap, err := r.Capture(context.Background(), sampleDocument(nil, false), 2)
	require.NoError(t, err)

	margins := render.Margins{Top: 10, Right: 10, Bottom: 10, Left: 10}

	portrait, err := render.Encode(snap, render.PageOptions{Format: render.FormatPDF, Orientation: render.Portrait, Margins: &margins})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(portrait, []byte("%PDF-")))
	assert.Equal(t, 1, pageCount(portrait))

	landscape, err := render.Encode(snap, render.PageOptions{Format: render.FormatPDF, Orientation: render.Landscape, Margins: &margins})
	require.NoError(t, err)
	assert.Equal(t, 1, pageCount(landscape))
	assert.Contains(t, string(landscape), "841.89 595.28")
}

func TestEncode_PNG(t *testing.T) {
	r := render.NewRasterizer(render.DefaultFonts(), nil, zap.NewNop())
	snap, err := r.Capture(context.Background(), sampleDocument(nil, false), 2)
	require.NoError(t, err)

	data, err := render.Encode(snap, render.PageOptions{Format: render.FormatPNG, Margins: &render.Margins{Top: 10, Right: 10, Bottom: 10, Left: 10}})
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 1587, img.Bounds().Dx())
	assert.Equal(t, 2245, img.Bounds().Dy())

	// the margin stays white
	r0, g0, b0, _ := img.At(5, 5).RGBA()
	assert.Equal(t, []uint32{0xffff, 0xffff, 0xffff}, []uint32{r0, g0, b0})
}

func TestEncode_Errors(t *testing.T) {
	r := render.NewRasterizer(render.DefaultFonts(), nil, zap.NewNop())
	snap, err := r.Capture(context.Background(), sampleDocument(nil, false), 1)
	require.NoError(t, err)

	var renderErr *domain.RenderError

	_, err = render.Encode(snap, render.PageOptions{Format: "tiff"})
	require.ErrorAs(t, err, &renderErr)
	assert.Equal(t, "encode", renderErr.Stage)

	_, err = render.Encode(snap, render.PageOptions{Margins: &render.Margins{Top: 200, Bottom: 100}})
	require.ErrorAs(t, err, &renderErr)
	assert.Equal(t, "layout", renderErr.Stage)
}

func TestRenderer_Render(t *testing.T) {
	renderer, err := render.NewRenderer(&config.RenderConfig{
		DevicePixelRatio: 1,
		Format:           "pdf",
		Orientation:      "portrait",
		MarginTop:        10,
		MarginRight:      10,
		MarginBottom:     10,
		MarginLeft:       10,
	}, nil, zap.NewNop())
	require.NoError(t, err)

	out, err := renderer.Render(context.Background(), sampleDocument(nil, false), render.PageOptions{})
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", out.ContentType)
	assert.Equal(t, "pdf", out.Extension)
	assert.Equal(t, 1, pageCount(out.Data))

	out, err = renderer.Render(context.Background(), sampleDocument(nil, false), render.PageOptions{Format: render.FormatPNG})
	require.NoError(t, err)
	assert.Equal(t, "image/png", out.ContentType)
}

func TestNewRenderer_BadFontPath(t *testing.T) {
	_, err := render.NewRenderer(&config.RenderConfig{FontPath: "/does/not/exist.ttf"}, nil, zap.NewNop())
	assert.Error(t, err)
}

func TestStorageImages(t *testing.T) {
	ls, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 3, 2))))
	ref, _, err := ls.Upload(context.Background(), "tiny.png", "image/png", &buf)
	require.NoError(t, err)

	source := render.NewStorageImages(ls)
	img, err := source.Image(context.Background(), ref)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 3, 2), img.Bounds())

	_, err = source.Image(context.Background(), "zz/missing.png")
	assert.Error(t, err)

	ref, _, err = ls.Upload(context.Background(), "bad.png", "image/png", strings.NewReader("not an image"))
	require.NoError(t, err)
	_, err = source.Image(context.Background(), ref)
	assert.Error(t, err)
}
