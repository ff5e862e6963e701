package render

import (
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/rs/zerolog"

	"portfolio-scene/internal/fonts"
	"portfolio-scene/internal/ui"
)

// fontLoadSize is the atlas size; smaller text is scaled down from it.
const fontLoadSize = 32

// Painter draws ui layout items in screen space.
type Painter struct {
	font rl.Font
}

// NewPainter loads the first font matching search from dirs. Without one, raylib's default font is used.
func NewPainter(dirs []string, search string, log zerolog.Logger) *Painter {
	p := &Painter{}
	path, err := fonts.NewFinder(dirs).Find(search)
	if err != nil {
		log.Debug().Str("font", search).Msg("no font file found, using default")
		return p
	}
	f := rl.LoadFontEx(path, fontLoadSize, nil)
	if f.Texture.ID == 0 {
		log.Warn().Str("path", path).Msg("font failed to load, using default")
		return p
	}
	rl.SetTextureFilter(f.Texture, rl.FilterBilinear)
	p.font = f
	log.Info().Str("path", path).Msg("font loaded")
	return p
}

// Font returns the loaded font; its texture ID is 0 when none was loaded.
func (p *Painter) Font() rl.Font { return p.font }

// Measure returns the pixel width of text, for ui.Overlay.SetMeasure.
func (p *Painter) Measure(text string, size int32) float32 {
	if p.font.Texture.ID != 0 {
		return rl.MeasureTextEx(p.font, text, float32(size), 1).X
	}
	return float32(rl.MeasureText(text, size))
}

// Draw paints items in order: background, border, then text inset by padding.
func (p *Painter) Draw(items []ui.Item) {
	for _, it := range items {
		if it.Opacity <= 0 {
			continue
		}
		b := it.Bounds
		rect := rl.NewRectangle(b.X, b.Y, b.Width, b.Height)
		if it.Style.Background.A > 0 && b.Width > 0 && b.Height > 0 {
			rl.DrawRectangleRec(rect, fade(it.Style.Background, it.Opacity))
		}
		if it.Style.HasBorder && b.Width > 0 && b.Height > 0 {
			rl.DrawRectangleLinesEx(rect, float32(it.Style.BorderWidth), fade(it.Style.Border, it.Opacity))
		}
		if it.Node.Text == "" {
			continue
		}
		x := b.X + float32(it.Style.PaddingX)
		y := b.Y + float32(it.Style.PaddingY)
		c := fade(it.Style.Color, it.Opacity)
		if p.font.Texture.ID != 0 {
			rl.DrawTextEx(p.font, it.Node.Text, rl.NewVector2(x, y), float32(it.Style.FontSize), 1, c)
		} else {
			rl.DrawText(it.Node.Text, int32(x), int32(y), it.Style.FontSize, c)
		}
	}
}

// Unload frees the font.
func (p *Painter) Unload() {
	if p.font.Texture.ID != 0 {
		rl.UnloadFont(p.font)
		p.font = rl.Font{}
	}
}

func fade(c color.RGBA, opacity float32) rl.Color {
	if opacity > 1 {
		opacity = 1
	}
	return rl.NewColor(c.R, c.G, c.B, uint8(float32(c.A)*opacity+0.5))
}
