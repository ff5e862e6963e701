package assets

import (
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"os"
	"time"

	"github.com/anthonynsimon/bild/transform"
)

// defaultFrameDelay is what browsers use for GIF frames with a zero delay.
const defaultFrameDelay = 100 * time.Millisecond

// Backdrop is a decoded looping animation shown behind the scene. Refresh advances the frame
// clock; the renderer uploads Frame when Version changes.
type Backdrop struct {
	frames  []*image.RGBA
	delays  []time.Duration
	total   time.Duration
	current int
	version int
}

// DecodeBackdrop reads an animated (or still) GIF and composites every frame onto a full canvas,
// honoring each frame's disposal. Frames wider than maxWidth are downscaled; 0 keeps the size.
func DecodeBackdrop(path string, maxWidth int) (*Backdrop, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("backdrop: %w", err)
	}
	defer f.Close()
	g, err := gif.DecodeAll(f)
	if err != nil {
		return nil, fmt.Errorf("backdrop %s: %w", path, err)
	}
	if len(g.Image) == 0 {
		return nil, fmt.Errorf("backdrop %s: no frames", path)
	}
	w, h := g.Config.Width, g.Config.Height
	if w == 0 || h == 0 {
		b := g.Image[0].Bounds()
		w, h = b.Dx(), b.Dy()
	}
	canvas := image.NewRGBA(image.Rect(0, 0, w, h))
	b := &Backdrop{}
	for i, frame := range g.Image {
		var restore *image.RGBA
		disposal := byte(gif.DisposalNone)
		if i < len(g.Disposal) {
			disposal = g.Disposal[i]
		}
		if disposal == gif.DisposalPrevious {
			restore = cloneRGBA(canvas)
		}
		draw.Draw(canvas, frame.Bounds(), frame, frame.Bounds().Min, draw.Over)

		out := cloneRGBA(canvas)
		if maxWidth > 0 && w > maxWidth {
			out = transform.Resize(out, maxWidth, h*maxWidth/w, transform.Linear)
		}
		delay := defaultFrameDelay
		if i < len(g.Delay) && g.Delay[i] > 0 {
			delay = time.Duration(g.Delay[i]) * 10 * time.Millisecond
		}
		b.frames = append(b.frames, out)
		b.delays = append(b.delays, delay)
		b.total += delay

		switch disposal {
		case gif.DisposalBackground:
			draw.Draw(canvas, frame.Bounds(), image.Transparent, image.Point{}, draw.Src)
		case gif.DisposalPrevious:
			canvas = restore
		}
	}
	return b, nil
}

func cloneRGBA(src *image.RGBA) *image.RGBA {
	dst := image.NewRGBA(src.Bounds())
	copy(dst.Pix, src.Pix)
	return dst
}

// Refresh selects the frame for elapsed time since start, looping.
func (b *Backdrop) Refresh(elapsed time.Duration) {
	if b == nil || len(b.frames) < 2 || b.total <= 0 {
		return
	}
	if elapsed < 0 {
		elapsed = 0
	}
	t := elapsed % b.total
	i := 0
	for ; i < len(b.delays)-1; i++ {
		if t < b.delays[i] {
			break
		}
		t -= b.delays[i]
	}
	if i != b.current {
		b.current = i
		b.version++
	}
}

// Frame returns the current frame.
func (b *Backdrop) Frame() *image.RGBA {
	if b == nil || len(b.frames) == 0 {
		return nil
	}
	return b.frames[b.current]
}

// Index is the current frame number.
func (b *Backdrop) Index() int { return b.current }

// Version increases every time the current frame changes.
func (b *Backdrop) Version() int { return b.version }

// Len is the number of frames.
func (b *Backdrop) Len() int { return len(b.frames) }

// Duration is one loop's length.
func (b *Backdrop) Duration() time.Duration { return b.total }
