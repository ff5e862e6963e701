package starfield

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateIsDeterministic(t *testing.T) {
	opts := DefaultOptions()
	opts.Seed = 42
	a := Generate(opts)
	b := Generate(opts)
	require.Equal(t, 800, a.Len())
	assert.Equal(t, a.Stars, b.Stars)

	opts.Seed = 43
	c := Generate(opts)
	assert.NotEqual(t, a.Stars[0].Position, c.Stars[0].Position)
}

func TestGenerateStaysInSpread(t *testing.T) {
	opts := DefaultOptions()
	opts.Seed = 7
	f := Generate(opts)
	for _, s := range f.Stars {
		for i := 0; i < 3; i++ {
			assert.LessOrEqual(t, s.Position[i], float32(500))
			assert.GreaterOrEqual(t, s.Position[i], float32(-500))
		}
		assert.Equal(t, float32(1), s.Intensity)
	}
	assert.Equal(t, float32(0.7), f.Size)
}

func TestGenerateClampsOptions(t *testing.T) {
	f := Generate(Options{Count: -3, Seed: 1})
	assert.Equal(t, 0, f.Len())
	assert.Equal(t, float32(0.7), f.Size)
}

func TestTwinkleRange(t *testing.T) {
	opts := DefaultOptions()
	opts.Seed = 9
	opts.Count = 64
	f := Generate(opts)

	changed := false
	for step := 0; step < 20; step++ {
		f.Twinkle(time.Duration(step) * 250 * time.Millisecond)
		for _, s := range f.Stars {
			assert.GreaterOrEqual(t, s.Intensity, 1-opts.TwinkleDepth-1e-6)
			assert.LessOrEqual(t, s.Intensity, float32(1))
			if s.Intensity != 1 {
				changed = true
			}
		}
	}
	assert.True(t, changed)
}

func TestTwinkleDisabled(t *testing.T) {
	f := Generate(Options{Count: 4, Seed: 3, TwinkleDepth: 0})
	f.Twinkle(3 * time.Second)
	for _, s := range f.Stars {
		assert.Equal(t, float32(1), s.Intensity)
	}

	var nilField *Field
	assert.NotPanics(t, func() { nilField.Twinkle(time.Second) })
}

func TestGlowSprite(t *testing.T) {
	img := GlowSprite(32, 6)
	require.Equal(t, 32, img.Bounds().Dx())
	center := img.RGBAAt(16, 16)
	corner := img.RGBAAt(0, 0)
	assert.Greater(t, center.A, corner.A)
	assert.Greater(t, center.A, uint8(128))
}
