package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSurface_RejectsOversizedAllocation(t *testing.T) {
	_, err := newSurface(100000, 100000, 2, DefaultFonts())
	assert.Error(t, err)

	_, err = newSurface(0, 10, 1, DefaultFonts())
	assert.Error(t, err)
}

func TestSurface_CloseReleases(t *testing.T) {
	s, err := newSurface(PageWidthPx, PageHeightPx, 1, DefaultFonts())
	require.NoError(t, err)

	s.text("hello", 10, 10, 10, false, 0)
	assert.NotEmpty(t, s.faces.faces)

	s.Close()
	assert.Nil(t, s.dc)
	assert.Nil(t, s.faces)
	// closing twice is harmless
	s.Close()
}
