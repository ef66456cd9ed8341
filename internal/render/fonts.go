package render

import (
	"fmt"
	"os"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// Fonts holds the parsed regular and bold typefaces. Parsed fonts are safe
// for concurrent use; faces are created per surface.
type Fonts struct {
	regular *truetype.Font
	bold    *truetype.Font
}

// LoadFonts parses TrueType files, falling back to the embedded Go fonts
// for empty paths
func LoadFonts(regularPath, boldPath string) (*Fonts, error) {
	regular, err := parseFont(regularPath, goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to load regular font: %w", err)
	}
	bold, err := parseFont(boldPath, gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to load bold font: %w", err)
	}
	return &Fonts{regular: regular, bold: bold}, nil
}

// DefaultFonts returns the embedded Go fonts
func DefaultFonts() *Fonts {
	fonts, err := LoadFonts("", "")
	if err != nil {
		panic(err)
	}
	return fonts
}

func parseFont(path string, fallback []byte) (*truetype.Font, error) {
	data := fallback
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		data = b
	}
	return truetype.Parse(data)
}

type faceKey struct {
	size float64
	bold bool
}

// faceCache creates faces for one surface density
type faceCache struct {
	fonts *Fonts
	dpi   float64
	faces map[faceKey]font.Face
}

func newFaceCache(fonts *Fonts, factor float64) *faceCache {
	return &faceCache{
		fonts: fonts,
		dpi:   ReferenceDPI * factor,
		faces: make(map[faceKey]font.Face),
	}
}

func (c *faceCache) face(size float64, bold bool) font.Face {
	key := faceKey{size: size, bold: bold}
	if f, ok := c.faces[key]; ok {
		return f
	}
	ttf := c.fonts.regular
	if bold {
		ttf = c.fonts.bold
	}
	f := truetype.NewFace(ttf, &truetype.Options{Size: size, DPI: c.dpi, Hinting: font.HintingFull})
	c.faces[key] = f
	return f
}

func (c *faceCache) close() {
	for k, f := range c.faces {
		f.Close()
		delete(c.faces, k)
	}
}
