package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"portfolio-scene/internal/config"
	"portfolio-scene/internal/logger"
	"portfolio-scene/internal/render"
)

var version = "dev"

type flags struct {
	config   string
	manifest string
	width    int
	height   int
	debug    bool
}

func main() {
	var f flags
	rootCmd := &cobra.Command{
		Use:           "portfolio",
		Short:         "Interactive 3D portfolio scene",
		Long:          "Opens the portfolio scene: scroll to fly the camera, hover for labels, click an object to zoom to it.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), f)
		},
	}
	rootCmd.Flags().StringVar(&f.config, "config", config.DefaultPath, "config file (YAML)")
	rootCmd.Flags().StringVar(&f.manifest, "manifest", "", "scene manifest, overrides assets.manifest")
	rootCmd.Flags().IntVar(&f.width, "width", 0, "window width, overrides window.width")
	rootCmd.Flags().IntVar(&f.height, "height", 0, "window height, overrides window.height")
	rootCmd.Flags().BoolVar(&f.debug, "debug", false, "debug logging and overlays")

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "portfolio:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, f flags) error {
	loader := config.NewLoader(f.config)
	loader.SetOverrides(config.Overrides{Manifest: f.manifest, Width: f.width, Height: f.height, Debug: f.debug})
	cfg, err := loader.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(logger.Options{Dir: cfg.Log.Dir, Level: cfg.Log.Level, Console: cfg.Log.Console})
	if err != nil {
		return err
	}
	defer log.Close()
	log.Info().Str("config", loader.Path()).Str("manifest", cfg.Assets.Manifest).Str("version", version).Msg("starting")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("startup failed")
		return err
	}
	loader.Watch(a.onConfigChange)

	render.Run(render.WindowOptions{
		Title:      cfg.Window.Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		TargetFPS:  cfg.Window.TargetFPS,
	}, a)
	log.Info().Msg("window closed")
	return nil
}
