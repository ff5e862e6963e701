package starfield

import (
	"image"
	"image/color"
	"math"
	"time"

	"github.com/anthonynsimon/bild/blur"
	"github.com/go-gl/mathgl/mgl32"
)

// Options controls star generation and twinkle.
// Spread is the edge length of the cube the stars are scattered in, centered on the origin.
// Seed controls placement and twinkle; Seed == 0 uses a time-based seed.
// TwinkleDepth is how far intensity may dip below 1; TwinkleSpeed is noise cycles per second.
type Options struct {
	Count  int
	Spread float32
	Size   float32

	Seed         int64
	TwinkleSpeed float32
	TwinkleDepth float32
	Octaves      int
}

// DefaultOptions matches the landing page: 800 points within ±500, size 0.7.
func DefaultOptions() Options {
	return Options{
		Count:        800,
		Spread:       1000,
		Size:         0.7,
		Seed:         0,
		TwinkleSpeed: 0.6,
		TwinkleDepth: 0.5,
		Octaves:      3,
	}
}

// Star is one point of the field.
type Star struct {
	Position  mgl32.Vec3
	Intensity float32 // [1-TwinkleDepth, 1]
}

// Field is a generated set of stars. It is rotated as a whole through its scene object.
type Field struct {
	Stars []Star
	Size  float32

	opts Options
	seed int64
}

// Generate scatters opts.Count stars uniformly in the spread cube. The same non-zero seed
// always yields the same field.
func Generate(opts Options) *Field {
	if opts.Count < 0 {
		opts.Count = 0
	}
	if opts.Spread <= 0 {
		opts.Spread = 1000
	}
	if opts.Size <= 0 {
		opts.Size = 0.7
	}
	if opts.Octaves <= 0 {
		opts.Octaves = 1
	}
	if opts.TwinkleDepth < 0 {
		opts.TwinkleDepth = 0
	}
	if opts.TwinkleDepth > 1 {
		opts.TwinkleDepth = 1
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	f := &Field{
		Stars: make([]Star, opts.Count),
		Size:  opts.Size,
		opts:  opts,
		seed:  seed,
	}
	s := int32(seed)
	for i := range f.Stars {
		idx := int32(i)
		f.Stars[i] = Star{
			Position: mgl32.Vec3{
				(hash2D(idx, 0, s) - 0.5) * opts.Spread,
				(hash2D(idx, 1, s) - 0.5) * opts.Spread,
				(hash2D(idx, 2, s) - 0.5) * opts.Spread,
			},
			Intensity: 1,
		}
	}
	return f
}

// Len returns the number of stars.
func (f *Field) Len() int {
	return len(f.Stars)
}

// Twinkle sets every star's intensity for the given time since start.
func (f *Field) Twinkle(elapsed time.Duration) {
	if f == nil || f.opts.TwinkleDepth == 0 {
		return
	}
	t := float32(elapsed.Seconds()) * f.opts.TwinkleSpeed
	for i := range f.Stars {
		// Each star samples its own row of the noise plane.
		n := fractalValueNoise2D(t, float32(i)*1.7, f.seed, f.opts.Octaves, 2.0, 0.5)
		intensity := 1 - f.opts.TwinkleDepth*n
		if !isFinite(intensity) {
			intensity = 1
		}
		f.Stars[i].Intensity = intensity
	}
}

// GlowSprite renders a soft round sprite for star billboards: a white disc of the given
// radius in a size x size image, softened with a Gaussian blur.
func GlowSprite(size int, radius float64) *image.RGBA {
	if size <= 0 {
		size = 16
	}
	if radius <= 0 {
		radius = float64(size) / 6
	}
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	c := float64(size-1) / 2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if math.Hypot(float64(x)-c, float64(y)-c) <= radius {
				img.SetRGBA(x, y, color.RGBA{255, 255, 255, 255})
			}
		}
	}
	return blur.Gaussian(img, radius/2)
}

// fractalValueNoise2D is simple fractal value noise: layered smooth value noise with
// configurable octaves, lacunarity, and gain. Output is in [0,1].
func fractalValueNoise2D(x, y float32, seed int64, octaves int, lacunarity, gain float32) float32 {
	var sum float32
	var amplitude float32 = 1
	var maxAmp float32 = 0
	freq := float32(1)

	for i := 0; i < octaves; i++ {
		n := valueNoise2D(x*freq, y*freq, int32(seed)+int32(i))
		sum += n * amplitude
		maxAmp += amplitude
		amplitude *= gain
		freq *= lacunarity
	}
	if maxAmp == 0 {
		return 0
	}
	return sum / maxAmp
}

func valueNoise2D(x, y float32, seed int32) float32 {
	x0 := int32(math.Floor(float64(x)))
	y0 := int32(math.Floor(float64(y)))
	tx := x - float32(x0)
	ty := y - float32(y0)

	v00 := hash2D(x0, y0, seed)
	v10 := hash2D(x0+1, y0, seed)
	v01 := hash2D(x0, y0+1, seed)
	v11 := hash2D(x0+1, y0+1, seed)

	sx := smoothStep(tx)
	sy := smoothStep(ty)

	return lerp(lerp(v00, v10, sx), lerp(v01, v11, sx), sy)
}

// hash2D maps integer lattice coordinates to a deterministic pseudo-random float in [0,1].
func hash2D(x, y, seed int32) float32 {
	n := x*374761393 + y*668265263 + seed*362437
	n = (n ^ (n >> 13)) * 1274126177
	n = n ^ (n >> 16)
	const invMaxInt = 1.0 / 2147483647.0
	return float32(n&0x7fffffff) * float32(invMaxInt)
}

func lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

// smoothStep is cubic easing: 3t^2 - 2t^3.
func smoothStep(t float32) float32 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	return t * t * (3 - 2*t)
}

func isFinite(f float32) bool {
	return !math.IsNaN(float64(f)) && !math.IsInf(float64(f), 0)
}
