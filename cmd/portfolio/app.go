package main

import (
	"context"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"portfolio-scene/internal/assets"
	"portfolio-scene/internal/config"
	"portfolio-scene/internal/controller"
	"portfolio-scene/internal/debug"
	"portfolio-scene/internal/logger"
	"portfolio-scene/internal/render"
	"portfolio-scene/internal/scene"
	"portfolio-scene/internal/starfield"
	"portfolio-scene/internal/ui"
)

// maxBackdropWidth caps decoded backdrop frames; they are stretched to the window anyway.
const maxBackdropWidth = 1280

// app wires the packages together and implements render.Loop. Everything but
// onConfigChange runs on the window goroutine.
type app struct {
	cfg *config.Config
	log *logger.Logger

	graph    *scene.Graph
	registry *assets.Registry
	overlay  *ui.Overlay
	renderer *render.Renderer
	painter  *render.Painter
	ctl      *controller.Controller
	dbg      *debug.Debug
	input    render.Input

	cancelLoads context.CancelFunc
	updates     chan *config.Config

	start, last time.Time
	started     bool
	ready       bool
	inspecting  bool
}

func newApp(ctx context.Context, cfg *config.Config, log *logger.Logger) (*app, error) {
	manifest, err := assets.LoadManifest(cfg.Assets.Manifest)
	if err != nil {
		return nil, err
	}

	graph := scene.New()
	graph.Add(assets.NewStarsObject())

	loadCtx, cancel := ctx, context.CancelFunc(func() {})
	if cfg.Assets.Timeout > 0 {
		loadCtx, cancel = context.WithTimeout(ctx, cfg.Assets.Timeout)
	}
	registry := assets.NewRegistry(assets.Options{
		Root:             cfg.Assets.Root,
		CacheDir:         cfg.Assets.CacheDir,
		Retries:          cfg.Assets.Retries,
		MaxBackdropWidth: maxBackdropWidth,
		Logger:           log.Component("assets"),
	})
	backdrop := registry.LoadManifest(loadCtx, manifest)
	field := starfield.Generate(manifest.Stars.Options())

	engine := ui.New()
	if err := engine.LoadCSS(cfg.Render.Stylesheet); err != nil {
		log.Warn().Err(err).Msg("overlay stylesheet unavailable, using default styles")
	}
	overlay := ui.NewOverlay(engine)

	renderer := render.NewRenderer(rendererOptions(cfg, log.Component("render")), cfg.Window.Width, cfg.Window.Height)
	renderer.SetOutlineSource(overlay)
	renderer.SetStars(field)

	opts := []controller.Option{
		controller.WithRenderer(renderer),
		controller.WithOverlay(overlay),
		controller.WithAnimators(manifest.Animators(field, cfg.Camera.ReferenceFPS)...),
		controller.WithReady(registry.Ready()),
		controller.WithLogger(log.Component("controller")),
	}
	if backdrop != nil {
		renderer.SetBackdrop(backdrop)
		opts = append(opts, controller.WithRefresher(backdrop))
	}
	ctl := controller.New(controller.FromConfig(cfg, cfg.Window.Width, cfg.Window.Height), graph, opts...)

	a := &app{
		cfg:         cfg,
		log:         log,
		graph:       graph,
		registry:    registry,
		overlay:     overlay,
		renderer:    renderer,
		ctl:         ctl,
		dbg:         debug.New(),
		cancelLoads: cancel,
		updates:     make(chan *config.Config, 1),
	}
	a.applyDebug(cfg.Debug)
	a.input.OnKey = a.onKey
	log.Info().Int("objects", len(manifest.Objects)).Int("stars", field.Len()).Msg("loading scene")
	return a, nil
}

// rendererOptions parses the render colors, keeping the defaults for values that do not parse.
func rendererOptions(cfg *config.Config, log zerolog.Logger) render.Options {
	def := config.Default().Render
	bg, ok := ui.ParseColor(cfg.Render.Background)
	if !ok {
		bg, _ = ui.ParseColor(def.Background)
		log.Warn().Str("value", cfg.Render.Background).Msg("bad render.background")
	}
	outline, ok := ui.ParseColor(cfg.Render.OutlineColor)
	if !ok {
		outline, _ = ui.ParseColor(def.OutlineColor)
		log.Warn().Str("value", cfg.Render.OutlineColor).Msg("bad render.outline_color")
	}
	return render.Options{
		Background:     bg,
		Bloom:          cfg.Render.Bloom,
		BloomStrength:  cfg.Render.BloomStrength,
		BloomThreshold: cfg.Render.BloomThreshold,
		Outline:        cfg.Render.Outline,
		OutlineColor:   outline,
		Logger:         log,
	}
}

func (a *app) applyDebug(d config.DebugConfig) {
	a.dbg.ShowFPS = d.ShowFPS
	a.dbg.ShowMemAlloc = d.ShowMemAlloc
	a.dbg.ShowState = d.ShowState
	a.dbg.ShowLog = d.ShowLog
}

func (a *app) onKey(key int32) {
	switch key {
	case render.KeyInspector:
		a.inspecting = !a.inspecting
	case render.KeyDebug:
		a.dbg.Toggle()
	}
}

// onConfigChange runs on the watcher goroutine; the newest config replaces any pending one.
func (a *app) onConfigChange(cfg *config.Config, ev fsnotify.Event, err error) {
	if err != nil {
		a.log.Warn().Err(err).Str("file", ev.Name).Msg("config reload failed, keeping previous values")
		return
	}
	select {
	case <-a.updates:
	default:
	}
	a.updates <- cfg
}

func (a *app) applyConfig(cfg *config.Config) {
	w, h := render.ScreenSize()
	a.ctl.SetConfig(controller.FromConfig(cfg, w, h))
	a.renderer.SetOptions(rendererOptions(cfg, a.log.Component("render")))
	a.applyDebug(cfg.Debug)
	a.cfg = cfg
	a.log.Info().Msg("config reloaded")
}

// Update runs input, loading and config changes for one frame.
func (a *app) Update() {
	now := time.Now()
	if !a.started {
		a.started = true
		a.start, a.last = now, now
		w, h := render.ScreenSize()
		a.ctl.OnResize(w, h)
		a.painter = render.NewPainter(a.cfg.Render.FontDirs, a.cfg.Render.Font, a.log.Component("render"))
		a.overlay.SetMeasure(a.painter.Measure)
		a.dbg.SetFont(a.painter.Font())
	}
	dt := float32(now.Sub(a.last).Seconds())
	a.last = now

	select {
	case cfg := <-a.updates:
		a.applyConfig(cfg)
	default:
	}

	a.input.Poll(a.ctl, a.overlay)

	for _, obj := range a.registry.Poll() {
		a.graph.Add(obj)
	}
	a.overlay.Loading().SetProgress(a.registry.Progress())
	if !a.ready {
		select {
		case <-a.registry.Ready():
			a.ready = true
			a.overlay.Loading().Finish()
		default:
		}
	}
	a.overlay.Loading().Update(dt)
	a.overlay.Inspect(a.inspecting, a.selection())
}

// Draw ticks the controller, which renders the scene, then paints the overlay and debug text.
func (a *app) Draw() {
	a.ctl.Tick(time.Since(a.start))
	w, h := render.ScreenSize()
	a.painter.Draw(a.overlay.Layout(int32(w), int32(h)))
	a.dbg.Draw(a.debugState(), a.log.Lines())
}

// Close abandons pending loads and frees GPU resources.
func (a *app) Close() {
	a.cancelLoads()
	a.renderer.Unload()
	if a.painter != nil {
		a.painter.Unload()
	}
}

func (a *app) selection() ui.Selection {
	st := a.ctl.State()
	sel := ui.Selection{Mode: st.ZoomMode(), Emphasis: 1}
	if obj := st.Hovered; obj != nil {
		p := obj.WorldPosition()
		s := obj.EffectiveScale()
		sel.Name = obj.Name
		sel.Label = obj.Label
		sel.Position = [3]float32{p.X(), p.Y(), p.Z()}
		sel.Scale = [3]float32{s.X(), s.Y(), s.Z()}
		sel.Emphasis = obj.Emphasis()
	}
	return sel
}

func (a *app) debugState() debug.State {
	st := a.ctl.State()
	cam := a.ctl.Camera().Position
	loaded, total := a.registry.Progress()
	return debug.State{
		Hover:    st.HoverState(),
		Mode:     st.ZoomMode(),
		Scroll:   st.ScrollTop,
		Camera:   [3]float32{cam.X(), cam.Y(), cam.Z()},
		HitTests: a.ctl.HitTests(),
		Loaded:   loaded,
		Total:    total,
	}
}
