package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// DefaultPath is the config file path, relative to the process working directory.
const DefaultPath = "config/portfolio.yaml"

// EnvPrefix is prepended to environment overrides, e.g. PORTFOLIO_CAMERA_MIN_DISTANCE=6.
const EnvPrefix = "PORTFOLIO"

// Config holds every tunable of the scene. Persisted as YAML; the asset list itself lives in the manifest.
type Config struct {
	Window      WindowConfig      `mapstructure:"window" yaml:"window"`
	Camera      CameraConfig      `mapstructure:"camera" yaml:"camera"`
	Interaction InteractionConfig `mapstructure:"interaction" yaml:"interaction"`
	Render      RenderConfig      `mapstructure:"render" yaml:"render"`
	Assets      AssetsConfig      `mapstructure:"assets" yaml:"assets"`
	Log         LogConfig         `mapstructure:"log" yaml:"log"`
	Debug       DebugConfig       `mapstructure:"debug" yaml:"debug"`
}

// WindowConfig sizes the window. Zero width/height means "use the primary monitor".
type WindowConfig struct {
	Title      string `mapstructure:"title" yaml:"title"`
	Width      int    `mapstructure:"width" yaml:"width"`
	Height     int    `mapstructure:"height" yaml:"height"`
	Fullscreen bool   `mapstructure:"fullscreen" yaml:"fullscreen"`
	TargetFPS  int    `mapstructure:"target_fps" yaml:"target_fps"`
}

// CameraConfig holds the projection and the scroll-to-camera mapping.
// Distance = max(MinDistance, BaseDistance + t*-DistanceGain); pan and yaw = t*-PanGain.
type CameraConfig struct {
	FOV          float32 `mapstructure:"fov" yaml:"fov"`
	Near         float32 `mapstructure:"near" yaml:"near"`
	Far          float32 `mapstructure:"far" yaml:"far"`
	MinDistance  float32 `mapstructure:"min_distance" yaml:"min_distance"`
	BaseDistance float32 `mapstructure:"base_distance" yaml:"base_distance"`
	DistanceGain float32 `mapstructure:"distance_gain" yaml:"distance_gain"`
	PanGain      float32 `mapstructure:"pan_gain" yaml:"pan_gain"`
	Smoothing    float32 `mapstructure:"smoothing" yaml:"smoothing"`
	ReferenceFPS float32 `mapstructure:"reference_fps" yaml:"reference_fps"`
	ZoomStandoff float32 `mapstructure:"zoom_standoff" yaml:"zoom_standoff"`
}

// InteractionConfig tunes hover and scroll behaviour.
type InteractionConfig struct {
	HoverScale    float32 `mapstructure:"hover_scale" yaml:"hover_scale"`
	TooltipOffset float32 `mapstructure:"tooltip_offset" yaml:"tooltip_offset"`
	ScrollStep    float32 `mapstructure:"scroll_step" yaml:"scroll_step"`
	MaxScroll     float32 `mapstructure:"max_scroll" yaml:"max_scroll"`
}

// RenderConfig controls post-processing and clear colour.
type RenderConfig struct {
	Background     string   `mapstructure:"background" yaml:"background"`
	Bloom          bool     `mapstructure:"bloom" yaml:"bloom"`
	BloomStrength  float32  `mapstructure:"bloom_strength" yaml:"bloom_strength"`
	BloomThreshold float32  `mapstructure:"bloom_threshold" yaml:"bloom_threshold"`
	Outline        bool     `mapstructure:"outline" yaml:"outline"`
	OutlineColor   string   `mapstructure:"outline_color" yaml:"outline_color"`
	Stylesheet     string   `mapstructure:"stylesheet" yaml:"stylesheet"`
	FontDirs       []string `mapstructure:"font_dirs" yaml:"font_dirs"`
	Font           string   `mapstructure:"font" yaml:"font"` // family or file name under FontDirs; empty picks any
}

// AssetsConfig locates the manifest and controls loading.
type AssetsConfig struct {
	Manifest string        `mapstructure:"manifest" yaml:"manifest"`
	Root     string        `mapstructure:"root" yaml:"root"`
	CacheDir string        `mapstructure:"cache_dir" yaml:"cache_dir"`
	Retries  int           `mapstructure:"retries" yaml:"retries"`
	Timeout  time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// LogConfig configures internal/logger.
type LogConfig struct {
	Dir     string `mapstructure:"dir" yaml:"dir"`
	Level   string `mapstructure:"level" yaml:"level"`
	Console bool   `mapstructure:"console" yaml:"console"`
}

// DebugConfig toggles the debug overlays. All off by default.
type DebugConfig struct {
	ShowFPS      bool `mapstructure:"show_fps" yaml:"show_fps"`
	ShowMemAlloc bool `mapstructure:"show_memalloc" yaml:"show_memalloc"`
	ShowState    bool `mapstructure:"show_state" yaml:"show_state"`
	ShowLog      bool `mapstructure:"show_log" yaml:"show_log"`
}

// Default returns the tuning of the original landing page: camera starts at z=15,
// never closer than 4, hover emphasis 1.15, lerp 0.07 per 60 Hz frame.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:     "Portfolio",
			Width:     1280,
			Height:    720,
			TargetFPS: 60,
		},
		Camera: CameraConfig{
			FOV:          75,
			Near:         0.1,
			Far:          1000,
			MinDistance:  4,
			BaseDistance: 15,
			DistanceGain: 0.05,
			PanGain:      0.0002,
			Smoothing:    0.07,
			ReferenceFPS: 60,
			ZoomStandoff: 10,
		},
		Interaction: InteractionConfig{
			HoverScale:    1.15,
			TooltipOffset: 15,
			ScrollStep:    120,
			MaxScroll:     6000,
		},
		Render: RenderConfig{
			Background:     "#000000",
			Bloom:          true,
			BloomStrength:  0.2,
			BloomThreshold: 0.8,
			Outline:        true,
			OutlineColor:   "#00f2ff",
			Stylesheet:     "assets/ui/overlay.css",
			FontDirs:       []string{"assets/fonts", "../../assets/fonts"},
		},
		Assets: AssetsConfig{
			Manifest: "assets/scene.yaml",
			Root:     "assets",
			CacheDir: "assets/cache",
			Retries:  1,
			Timeout:  60 * time.Second,
		},
		Log: LogConfig{
			Dir:     "logs",
			Level:   "info",
			Console: true,
		},
	}
}

// setDefaults registers every leaf key so that env overrides and Unmarshal see them.
func setDefaults(v *viper.Viper, c *Config) {
	v.SetDefault("window.title", c.Window.Title)
	v.SetDefault("window.width", c.Window.Width)
	v.SetDefault("window.height", c.Window.Height)
	v.SetDefault("window.fullscreen", c.Window.Fullscreen)
	v.SetDefault("window.target_fps", c.Window.TargetFPS)

	v.SetDefault("camera.fov", c.Camera.FOV)
	v.SetDefault("camera.near", c.Camera.Near)
	v.SetDefault("camera.far", c.Camera.Far)
	v.SetDefault("camera.min_distance", c.Camera.MinDistance)
	v.SetDefault("camera.base_distance", c.Camera.BaseDistance)
	v.SetDefault("camera.distance_gain", c.Camera.DistanceGain)
	v.SetDefault("camera.pan_gain", c.Camera.PanGain)
	v.SetDefault("camera.smoothing", c.Camera.Smoothing)
	v.SetDefault("camera.reference_fps", c.Camera.ReferenceFPS)
	v.SetDefault("camera.zoom_standoff", c.Camera.ZoomStandoff)

	v.SetDefault("interaction.hover_scale", c.Interaction.HoverScale)
	v.SetDefault("interaction.tooltip_offset", c.Interaction.TooltipOffset)
	v.SetDefault("interaction.scroll_step", c.Interaction.ScrollStep)
	v.SetDefault("interaction.max_scroll", c.Interaction.MaxScroll)

	v.SetDefault("render.background", c.Render.Background)
	v.SetDefault("render.bloom", c.Render.Bloom)
	v.SetDefault("render.bloom_strength", c.Render.BloomStrength)
	v.SetDefault("render.bloom_threshold", c.Render.BloomThreshold)
	v.SetDefault("render.outline", c.Render.Outline)
	v.SetDefault("render.outline_color", c.Render.OutlineColor)
	v.SetDefault("render.stylesheet", c.Render.Stylesheet)
	v.SetDefault("render.font_dirs", c.Render.FontDirs)
	v.SetDefault("render.font", c.Render.Font)

	v.SetDefault("assets.manifest", c.Assets.Manifest)
	v.SetDefault("assets.root", c.Assets.Root)
	v.SetDefault("assets.cache_dir", c.Assets.CacheDir)
	v.SetDefault("assets.retries", c.Assets.Retries)
	v.SetDefault("assets.timeout", c.Assets.Timeout)

	v.SetDefault("log.dir", c.Log.Dir)
	v.SetDefault("log.level", c.Log.Level)
	v.SetDefault("log.console", c.Log.Console)

	v.SetDefault("debug.show_fps", c.Debug.ShowFPS)
	v.SetDefault("debug.show_memalloc", c.Debug.ShowMemAlloc)
	v.SetDefault("debug.show_state", c.Debug.ShowState)
	v.SetDefault("debug.show_log", c.Debug.ShowLog)
}

// Overrides are command-line values. They win over the file and the environment on every
// load and reload. Zero fields leave the config alone.
type Overrides struct {
	Manifest string
	Width    int
	Height   int
	Debug    bool // debug logging plus every debug overlay
}

// Apply writes the set fields into cfg.
func (o Overrides) Apply(cfg *Config) {
	if o.Manifest != "" {
		cfg.Assets.Manifest = o.Manifest
	}
	if o.Width > 0 {
		cfg.Window.Width = o.Width
	}
	if o.Height > 0 {
		cfg.Window.Height = o.Height
	}
	if o.Debug {
		cfg.Log.Level = "debug"
		cfg.Debug = DebugConfig{ShowFPS: true, ShowMemAlloc: true, ShowState: true, ShowLog: true}
	}
}

// Loader reads one config file through its own viper instance and can watch it for edits.
type Loader struct {
	mu        sync.Mutex
	v         *viper.Viper
	path      string
	overrides Overrides
}

// NewLoader returns a Loader for path (DefaultPath when empty).
func NewLoader(path string) *Loader {
	if path == "" {
		path = DefaultPath
	}
	v := viper.New()
	setDefaults(v, Default())
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return &Loader{v: v, path: path}
}

// Path returns the config file path.
func (l *Loader) Path() string {
	return l.path
}

// SetOverrides sets the values applied after every Load and Reload.
func (l *Loader) SetOverrides(o Overrides) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.overrides = o
}

// Load reads the config file if it exists, applies env overrides, and returns the result.
// A missing file is not an error: defaults (plus env) are returned and no file is created.
func (l *Loader) Load() (*Config, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := os.Stat(l.path); err == nil {
		if err := l.v.ReadInConfig(); err != nil {
			return Default(), fmt.Errorf("config: read %s: %w", l.path, err)
		}
	} else if !os.IsNotExist(err) {
		return Default(), fmt.Errorf("config: %w", err)
	}
	return l.decode()
}

// Reload re-reads the file after an edit. On a read or decode error it returns a nil config
// and viper keeps the previous values.
func (l *Loader) Reload() (*Config, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: reload %s: %w", l.path, err)
	}
	cfg, err := l.decode()
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func (l *Loader) decode() (*Config, error) {
	cfg := &Config{}
	if err := l.v.Unmarshal(cfg); err != nil {
		return Default(), fmt.Errorf("config: decode: %w", err)
	}
	l.overrides.Apply(cfg)
	return cfg, nil
}

// Watch calls fn with the result of Reload whenever the file changes on disk.
// fn runs on the watcher goroutine; callers hand the value to their own loop.
func (l *Loader) Watch(fn func(cfg *Config, ev fsnotify.Event, err error)) {
	l.v.OnConfigChange(func(ev fsnotify.Event) {
		cfg, err := l.Reload()
		fn(cfg, ev, err)
	})
	l.v.WatchConfig()
}

// Save writes cfg as YAML to path, creating the directory if needed.
func Save(cfg *Config, path string) error {
	if path == "" {
		path = DefaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	v := viper.New()
	v.Set("window", cfg.Window)
	v.Set("camera", cfg.Camera)
	v.Set("interaction", cfg.Interaction)
	v.Set("render", cfg.Render)
	v.Set("assets", cfg.Assets)
	v.Set("log", cfg.Log)
	v.Set("debug", cfg.Debug)
	v.SetConfigType("yaml")
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}
