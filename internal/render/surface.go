package render

import (
	"fmt"
	"image"
	"image/color"

	"github.com/fogleman/gg"
	xdraw "golang.org/x/image/draw"
)

// maxSurfacePixels bounds the off-screen allocation
const maxSurfacePixels = 64 << 20

// surface is an off-screen drawing area addressed in virtual page pixels.
// Drawing calls are scaled to device pixels by factor.
type surface struct {
	dc     *gg.Context
	factor float64
	faces  *faceCache
}

func newSurface(width, height int, factor float64, fonts *Fonts) (s *surface, err error) {
	w := int(float64(width)*factor + 0.5)
	h := int(float64(height)*factor + 0.5)
	if w <= 0 || h <= 0 || w*h > maxSurfacePixels {
		return nil, fmt.Errorf("surface %dx%d out of range", w, h)
	}
	defer func() {
		if rec := recover(); rec != nil {
			s, err = nil, fmt.Errorf("allocate surface %dx%d: %v", w, h, rec)
		}
	}()

	dc := gg.NewContext(w, h)
	dc.SetColor(color.White)
	dc.Clear()
	return &surface{dc: dc, factor: factor, faces: newFaceCache(fonts, factor)}, nil
}

// Close releases the drawing context and font faces
func (s *surface) Close() {
	if s.faces != nil {
		s.faces.close()
		s.faces = nil
	}
	s.dc = nil
}

func (s *surface) px(v float64) float64 {
	return v * s.factor
}

func (s *surface) setFont(size float64, bold bool) {
	s.dc.SetFontFace(s.faces.face(size, bold))
}

// text draws str with its top-left at (x, y). align is 0 left, 0.5 centre, 1 right
// relative to x. Returns the line height in virtual pixels.
func (s *surface) text(str string, x, y, size float64, bold bool, align float64) float64 {
	s.setFont(size, bold)
	s.dc.SetColor(color.Black)
	s.dc.DrawStringAnchored(str, s.px(x), s.px(y), align, 1)
	return s.lineHeight(size)
}

func (s *surface) lineHeight(size float64) float64 {
	return size * ReferenceDPI / 72 * 1.25
}

// wrap splits str into lines no wider than width virtual pixels
func (s *surface) wrap(str string, width, size float64, bold bool) []string {
	if str == "" {
		return nil
	}
	s.setFont(size, bold)
	return s.dc.WordWrap(str, s.px(width))
}

func (s *surface) fillRect(x, y, w, h float64, c color.Color) {
	s.dc.SetColor(c)
	s.dc.DrawRectangle(s.px(x), s.px(y), s.px(w), s.px(h))
	s.dc.Fill()
}

func (s *surface) strokeRect(x, y, w, h float64, c color.Color) {
	s.dc.SetColor(c)
	s.dc.SetLineWidth(s.px(0.75))
	s.dc.DrawRectangle(s.px(x), s.px(y), s.px(w), s.px(h))
	s.dc.Stroke()
}

func (s *surface) line(x1, y1, x2, y2 float64, c color.Color) {
	s.dc.SetColor(c)
	s.dc.SetLineWidth(s.px(1))
	s.dc.DrawLine(s.px(x1), s.px(y1), s.px(x2), s.px(y2))
	s.dc.Stroke()
}

// image draws img fitted inside the w×h box at (x, y), preserving aspect ratio.
// Returns the drawn width in virtual pixels.
func (s *surface) image(img image.Image, x, y, w, h float64) float64 {
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return 0
	}
	scale := min(w/float64(b.Dx()), h/float64(b.Dy()))
	dw, dh := float64(b.Dx())*scale, float64(b.Dy())*scale

	dst := image.NewRGBA(image.Rect(0, 0, int(s.px(dw)+0.5), int(s.px(dh)+0.5)))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Over, nil)
	s.dc.DrawImage(dst, int(s.px(x)+0.5), int(s.px(y)+0.5))
	return dw
}

func (s *surface) snapshot() image.Image {
	return s.dc.Image()
}
