package render

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageOptions_WithDefaults(t *testing.T) {
	def := PageOptions{
		Format:      FormatPNG,
		Orientation: Landscape,
		Margins:     &Margins{Top: 10, Right: 10, Bottom: 10, Left: 10},
	}

	tests := []struct {
		name        string
		body        string
		want        Margins
		format      Format
		orientation Orientation
	}{
		{
			name:        "absent margins use the configured ones",
			body:        `{}`,
			want:        Margins{Top: 10, Right: 10, Bottom: 10, Left: 10},
			format:      FormatPNG,
			orientation: Landscape,
		},
		{
			name:        "explicit zero margins are kept",
			body:        `{"format":"pdf","margins":{"top":0,"right":0,"bottom":0,"left":0}}`,
			want:        Margins{},
			format:      FormatPDF,
			orientation: Landscape,
		},
		{
			name:        "sides omitted from a margins object are zero",
			body:        `{"orientation":"portrait","margins":{"left":25}}`,
			want:        Margins{Left: 25},
			format:      FormatPNG,
			orientation: Portrait,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opts PageOptions
			require.NoError(t, json.Unmarshal([]byte(tt.body), &opts))

			got := opts.withDefaults(def)
			require.NotNil(t, got.Margins)
			assert.Equal(t, tt.want, *got.Margins)
			assert.Equal(t, tt.format, got.Format)
			assert.Equal(t, tt.orientation, got.Orientation)
		})
	}
}

func TestPageOptions_DefaultsAreNotShared(t *testing.T) {
	def := PageOptions{Margins: &Margins{Top: 10}}

	got := PageOptions{}.withDefaults(def)
	got.Margins.Top = 99
	assert.Equal(t, 10.0, def.Margins.Top)
}

func TestLayout_ZeroMarginsFillPageWidth(t *testing.T) {
	p, err := Layout(210, 100, PageOptions{Orientation: Portrait, Margins: &Margins{}})
	require.NoError(t, err)
	assert.Equal(t, 0.0, p.X)
	assert.Equal(t, 0.0, p.Y)
	assert.InDelta(t, PageWidthMM, p.Width, 1e-9)
}
