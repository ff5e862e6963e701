package ui

import (
	"image/color"
	"strconv"
	"strings"
)

// Rule is a single CSS rule: one selector and a set of property values (raw strings).
type Rule struct {
	Selector string            // e.g. ".tooltip" or "#loading-screen"
	Props    map[string]string // e.g. "background" -> "rgba(0, 0, 0, 0.85)"
}

// Matches reports whether the rule's class or id selector applies to n.
func (r Rule) Matches(n *Node) bool {
	if len(r.Selector) < 2 {
		return false
	}
	switch r.Selector[0] {
	case '.':
		return n.Class == r.Selector[1:]
	case '#':
		return n.ID == r.Selector[1:]
	}
	return false
}

// Stylesheet is a list of rules (order matters: later overrides earlier).
type Stylesheet struct {
	Rules []Rule
}

// ComputedStyle holds resolved values used for drawing.
// LeftPct/TopPct: 0–100 for percentage positioning; -1 means use Left/Top as pixels.
// WidthPct/HeightPct size a node relative to the screen the same way.
// PaddingX/PaddingY offset text from the node's left/top.
type ComputedStyle struct {
	Background  color.RGBA
	Color       color.RGBA
	Border      color.RGBA
	HasBorder   bool
	BorderWidth int32
	Width       int32
	Height      int32
	Left        int32
	Top         int32
	LeftPct     int32 // -1 = not set
	TopPct      int32 // -1 = not set
	WidthPct    int32 // -1 = not set
	HeightPct   int32 // -1 = not set
	PaddingX    int32
	PaddingY    int32
	FontSize    int32
	Opacity     float32
}

// DefaultComputedStyle returns a minimal style (transparent background, white text, no border, zero size).
func DefaultComputedStyle() ComputedStyle {
	return ComputedStyle{
		Background:  color.RGBA{0, 0, 0, 0},
		Color:       color.RGBA{255, 255, 255, 255},
		Border:      color.RGBA{0, 0, 0, 255},
		BorderWidth: 1,
		LeftPct:     -1,
		TopPct:      -1,
		WidthPct:    -1,
		HeightPct:   -1,
		PaddingX:    4,
		PaddingY:    4,
		FontSize:    20,
		Opacity:     1,
	}
}

// ParseColor parses #RGB, #RRGGBB, rgb(r, g, b) or rgba(r, g, b, a) with a in [0,1].
// Returns black and false on parse error.
func ParseColor(s string) (color.RGBA, bool) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "#") {
		return parseHexColor(s)
	}
	lower := strings.ToLower(strings.ReplaceAll(s, " ", ""))
	var args string
	switch {
	case strings.HasPrefix(lower, "rgba(") && strings.HasSuffix(lower, ")"):
		args = lower[5 : len(lower)-1]
	case strings.HasPrefix(lower, "rgb(") && strings.HasSuffix(lower, ")"):
		args = lower[4 : len(lower)-1]
	default:
		return color.RGBA{A: 255}, false
	}
	parts := strings.Split(args, ",")
	if len(parts) != 3 && len(parts) != 4 {
		return color.RGBA{A: 255}, false
	}
	var ch [3]uint8
	for i := 0; i < 3; i++ {
		n, err := strconv.Atoi(parts[i])
		if err != nil || n < 0 || n > 255 {
			return color.RGBA{A: 255}, false
		}
		ch[i] = uint8(n)
	}
	a := uint8(255)
	if len(parts) == 4 {
		f, err := strconv.ParseFloat(parts[3], 32)
		if err != nil || f < 0 || f > 1 {
			return color.RGBA{A: 255}, false
		}
		a = uint8(f*255 + 0.5)
	}
	return color.RGBA{ch[0], ch[1], ch[2], a}, true
}

func parseHexColor(s string) (color.RGBA, bool) {
	hex := s[1:]
	var r, g, b uint8
	switch len(hex) {
	case 3:
		// #RGB -> RR GG BB
		r = hexByte(hex[0]) * 17
		g = hexByte(hex[1]) * 17
		b = hexByte(hex[2]) * 17
	case 6:
		r = hexByte(hex[0])<<4 + hexByte(hex[1])
		g = hexByte(hex[2])<<4 + hexByte(hex[3])
		b = hexByte(hex[4])<<4 + hexByte(hex[5])
	default:
		return color.RGBA{A: 255}, false
	}
	return color.RGBA{r, g, b, 255}, true
}

func hexByte(c byte) uint8 {
	if c >= '0' && c <= '9' {
		return c - '0'
	}
	if c >= 'a' && c <= 'f' {
		return c - 'a' + 10
	}
	if c >= 'A' && c <= 'F' {
		return c - 'A' + 10
	}
	return 0
}

// ParsePx parses a number, with optional "px" suffix, to int32. Unitless is treated as pixels.
// Fractions are truncated.
func ParsePx(s string) (int32, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "px")
	s = strings.TrimSpace(s)
	f, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return 0, false
	}
	return int32(f), true
}

// ParsePct parses "N%" to int32 (0–100). Used for left/top percentage positioning.
func ParsePct(s string) (int32, bool) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[len(s)-1] != '%' {
		return 0, false
	}
	n, err := strconv.Atoi(s[:len(s)-1])
	if err != nil || n < 0 || n > 100 {
		return 0, false
	}
	return int32(n), true
}

// ResolveProps builds a ComputedStyle from a merged property map (e.g. from matching rules).
func ResolveProps(props map[string]string) ComputedStyle {
	out := DefaultComputedStyle()
	for k, v := range props {
		v = strings.TrimSpace(v)
		switch k {
		case "background", "background-color":
			if c, ok := ParseColor(v); ok {
				out.Background = c
			}
		case "color":
			if c, ok := ParseColor(v); ok {
				out.Color = c
			}
		case "border":
			// shorthand: "1px solid #00f2ff"; any field may be missing
			for _, field := range splitValue(v) {
				if c, ok := ParseColor(field); ok {
					out.Border = c
					out.HasBorder = true
				} else if n, ok := ParsePx(field); ok && n > 0 {
					out.BorderWidth = n
				}
			}
		case "width":
			if pct, ok := ParsePct(v); ok {
				out.WidthPct = pct
			} else if n, ok := ParsePx(v); ok {
				out.Width = n
			}
		case "height":
			if pct, ok := ParsePct(v); ok {
				out.HeightPct = pct
			} else if n, ok := ParsePx(v); ok {
				out.Height = n
			}
		case "left", "x":
			if pct, ok := ParsePct(v); ok {
				out.LeftPct = pct
			} else if n, ok := ParsePx(v); ok {
				out.Left = n
			}
		case "top", "y":
			if pct, ok := ParsePct(v); ok {
				out.TopPct = pct
			} else if n, ok := ParsePx(v); ok {
				out.Top = n
			}
		case "padding":
			// "8px" or "8px 12px" (vertical horizontal)
			fields := strings.Fields(v)
			if len(fields) >= 1 {
				if n, ok := ParsePx(fields[0]); ok && n >= 0 {
					out.PaddingX, out.PaddingY = n, n
				}
			}
			if len(fields) >= 2 {
				if n, ok := ParsePx(fields[1]); ok && n >= 0 {
					out.PaddingX = n
				}
			}
		case "font-size":
			if n, ok := ParsePx(v); ok && n > 0 {
				out.FontSize = n
			}
		case "opacity":
			if f, err := strconv.ParseFloat(v, 32); err == nil && f >= 0 && f <= 1 {
				out.Opacity = float32(f)
			}
		}
	}
	return out
}

// splitValue splits a shorthand on whitespace, keeping rgb()/rgba() arguments together.
func splitValue(v string) []string {
	var out []string
	depth := 0
	start := -1
	for i := 0; i < len(v); i++ {
		c := v[i]
		switch {
		case c == '(':
			depth++
		case c == ')':
			depth--
		case (c == ' ' || c == '\t') && depth == 0:
			if start >= 0 {
				out = append(out, v[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		out = append(out, v[start:])
	}
	return out
}
