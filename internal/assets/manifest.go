package assets

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/jinzhu/copier"
	"gopkg.in/yaml.v3"

	"portfolio-scene/internal/controller"
	"portfolio-scene/internal/scene"
	"portfolio-scene/internal/starfield"
)

// StarsObject names the scene object whose transform rotates the starfield.
const StarsObject = "stars"

// Pointer tilt of the landing page's base model: yaw follows x*0.6, pitch -y*0.3, eased 0.1 per frame.
const (
	tiltYawGain   = 0.6
	tiltPitchGain = 0.3
	tiltFactor    = 0.1
)

// Manifest lists everything the scene loads. Objects inherit unset fields from Defaults.
type Manifest struct {
	Defaults ObjectSpec   `yaml:"defaults"`
	Objects  []ObjectSpec `yaml:"objects"`
	Backdrop string       `yaml:"backdrop,omitempty"` // animated GIF, path or URL
	Stars    *StarsSpec   `yaml:"stars,omitempty"`
}

// ObjectSpec declares one scene object. Vectors are [x, y, z]; a one-element scale is uniform.
// Rotation is in radians.
type ObjectSpec struct {
	Name        string    `yaml:"name"`
	Label       string    `yaml:"label,omitempty"` // tooltip text
	Kind        string    `yaml:"kind,omitempty"`  // model, cube or sphere
	Path        string    `yaml:"path,omitempty"`  // model file for kind model
	Texture     string    `yaml:"texture,omitempty"`
	Position    []float32 `yaml:"position,omitempty"`
	Rotation    []float32 `yaml:"rotation,omitempty"`
	Scale       []float32 `yaml:"scale,omitempty"`
	Interactive *bool     `yaml:"interactive,omitempty"`
	Spin        []float32 `yaml:"spin,omitempty"` // radians per second around x, y, z
	Bob         *BobSpec  `yaml:"bob,omitempty"`
	Tilt        bool      `yaml:"tilt,omitempty"` // follow the pointer
}

// BobSpec is a vertical sine float.
type BobSpec struct {
	Amplitude float32 `yaml:"amplitude"`
	Speed     float32 `yaml:"speed"` // radians per second
	Phase     float32 `yaml:"phase,omitempty"`
}

// StarsSpec overrides starfield.DefaultOptions.
type StarsSpec struct {
	Count  int       `yaml:"count,omitempty"`
	Spread float32   `yaml:"spread,omitempty"`
	Size   float32   `yaml:"size,omitempty"`
	Seed   int64     `yaml:"seed,omitempty"`
	Spin   []float32 `yaml:"spin,omitempty"`
}

// LoadManifest reads, merges and validates a manifest file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("assets: %w", err)
	}
	return ParseManifest(data)
}

// ParseManifest decodes YAML, applies Defaults to every object and validates the result.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("assets: parse manifest: %w", err)
	}
	for i := range m.Objects {
		merged, err := m.Defaults.merge(m.Objects[i])
		if err != nil {
			return nil, fmt.Errorf("assets: object %d: %w", i, err)
		}
		m.Objects[i] = merged
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// merge returns defaults overlaid with every non-empty field of o.
func (defaults ObjectSpec) merge(o ObjectSpec) (ObjectSpec, error) {
	var out ObjectSpec
	if err := copier.CopyWithOption(&out, &defaults, copier.Option{IgnoreEmpty: true}); err != nil {
		return out, err
	}
	if err := copier.CopyWithOption(&out, &o, copier.Option{IgnoreEmpty: true}); err != nil {
		return out, err
	}
	return out, nil
}

// Validate reports every problem at once.
func (m *Manifest) Validate() error {
	var errs []error
	seen := make(map[string]bool)
	for i, o := range m.Objects {
		switch {
		case o.Name == "":
			errs = append(errs, fmt.Errorf("object %d: missing name", i))
		case seen[o.Name]:
			errs = append(errs, fmt.Errorf("object %q: duplicate name", o.Name))
		}
		seen[o.Name] = true
		switch scene.Kind(o.Kind) {
		case scene.KindModel:
			if o.Path == "" {
				errs = append(errs, fmt.Errorf("object %q: model without path", o.Name))
			}
		case scene.KindCube, scene.KindSphere:
		default:
			errs = append(errs, fmt.Errorf("object %q: unknown kind %q", o.Name, o.Kind))
		}
		for field, v := range map[string][]float32{"position": o.Position, "rotation": o.Rotation, "spin": o.Spin} {
			if len(v) != 0 && len(v) != 3 {
				errs = append(errs, fmt.Errorf("object %q: %s needs 3 values", o.Name, field))
			}
		}
		if len(o.Scale) != 0 && len(o.Scale) != 1 && len(o.Scale) != 3 {
			errs = append(errs, fmt.Errorf("object %q: scale needs 1 or 3 values", o.Name))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("assets: invalid manifest: %w", err)
	}
	return nil
}

// IsInteractive defaults to true.
func (o ObjectSpec) IsInteractive() bool {
	return o.Interactive == nil || *o.Interactive
}

// NewObject builds the scene object described by o, without leaves.
func (o ObjectSpec) NewObject() *scene.Object {
	obj := scene.NewObject(o.Name, scene.Kind(o.Kind))
	obj.Label = o.Label
	obj.Source = o.Path
	obj.Texture = o.Texture
	obj.Interactive = o.IsInteractive()
	obj.Transform.Position = vec3(o.Position, 0)
	obj.Transform.Rotation = vec3(o.Rotation, 0)
	obj.Transform.Scale = vec3(o.Scale, 1)
	return obj
}

// SpinRate returns the spin vector, zero when unset.
func (o ObjectSpec) SpinRate() mgl32.Vec3 {
	return vec3(o.Spin, 0)
}

// vec3 expands a manifest vector: empty gives (def, def, def), one value is splatted.
func vec3(v []float32, def float32) mgl32.Vec3 {
	switch len(v) {
	case 0:
		return mgl32.Vec3{def, def, def}
	case 1, 2:
		return mgl32.Vec3{v[0], v[0], v[0]}
	default:
		return mgl32.Vec3{v[0], v[1], v[2]}
	}
}

// Options returns starfield options with the manifest's overrides applied.
func (s *StarsSpec) Options() starfield.Options {
	opts := starfield.DefaultOptions()
	if s == nil {
		return opts
	}
	if s.Count > 0 {
		opts.Count = s.Count
	}
	if s.Spread > 0 {
		opts.Spread = s.Spread
	}
	if s.Size > 0 {
		opts.Size = s.Size
	}
	opts.Seed = s.Seed
	return opts
}

// SpinRate returns the starfield rotation, or the landing page's slow drift when unset.
func (s *StarsSpec) SpinRate() mgl32.Vec3 {
	if s == nil || len(s.Spin) == 0 {
		return mgl32.Vec3{0, 0.03, 0}
	}
	return vec3(s.Spin, 0)
}

// NewStarsObject returns the non-interactive, leafless object the starfield hangs from.
func NewStarsObject() *scene.Object {
	obj := scene.NewObject(StarsObject, "")
	obj.Interactive = false
	return obj
}

// Animators builds the per-object animations the manifest declares, plus the starfield's
// drift and twinkle when field is non-nil. referenceFPS converts per-frame easing to time.
func (m *Manifest) Animators(field *starfield.Field, referenceFPS float32) []controller.Animator {
	var out []controller.Animator
	for _, o := range m.Objects {
		if rate := o.SpinRate(); rate != (mgl32.Vec3{}) {
			out = append(out, &controller.Spin{Name: o.Name, Rate: rate})
		}
		if o.Bob != nil && o.Bob.Amplitude != 0 {
			out = append(out, &controller.Bob{Name: o.Name, Amplitude: o.Bob.Amplitude, Speed: o.Bob.Speed, Phase: o.Bob.Phase})
		}
		if o.Tilt {
			out = append(out, &controller.PointerTilt{
				Name:         o.Name,
				YawGain:      tiltYawGain,
				PitchGain:    tiltPitchGain,
				Factor:       tiltFactor,
				ReferenceFPS: referenceFPS,
			})
		}
	}
	if field != nil {
		out = append(out,
			&controller.Spin{Name: StarsObject, Rate: m.Stars.SpinRate()},
			&controller.Twinkle{Field: field},
		)
	}
	return out
}
