package controller

import (
	"portfolio-scene/internal/config"
)

// Config is the controller's tuning. Every field is load-time configuration; none changes semantics.
type Config struct {
	// Viewport in pixels, used to normalise pointer coordinates until the first OnResize.
	Width, Height float32

	// Projection. FOV is vertical, in degrees.
	FOV, Near, Far float32

	// Scroll mapping: distance = max(MinDistance, BaseDistance + t*-DistanceGain), pan = yaw = t*-PanGain.
	MinDistance  float32
	BaseDistance float32
	DistanceGain float32
	PanGain      float32

	// Smoothing is the lerp fraction per frame at ReferenceFPS. ReferenceFPS 0 applies it per tick.
	Smoothing    float32
	ReferenceFPS float32

	// ZoomStandoff is how far in front of a clicked object the camera settles.
	ZoomStandoff float32

	HoverScale    float32
	TooltipOffset float32

	// Mouse wheel to virtual page scroll.
	ScrollStep float32
	MaxScroll  float32
}

// DefaultConfig mirrors config.Default for an 800x600 viewport.
func DefaultConfig() Config {
	return FromConfig(config.Default(), 800, 600)
}

// FromConfig extracts controller tuning from the application config.
func FromConfig(c *config.Config, width, height int) Config {
	return Config{
		Width:         float32(width),
		Height:        float32(height),
		FOV:           c.Camera.FOV,
		Near:          c.Camera.Near,
		Far:           c.Camera.Far,
		MinDistance:   c.Camera.MinDistance,
		BaseDistance:  c.Camera.BaseDistance,
		DistanceGain:  c.Camera.DistanceGain,
		PanGain:       c.Camera.PanGain,
		Smoothing:     c.Camera.Smoothing,
		ReferenceFPS:  c.Camera.ReferenceFPS,
		ZoomStandoff:  c.Camera.ZoomStandoff,
		HoverScale:    c.Interaction.HoverScale,
		TooltipOffset: c.Interaction.TooltipOffset,
		ScrollStep:    c.Interaction.ScrollStep,
		MaxScroll:     c.Interaction.MaxScroll,
	}
}
