// Command barline runs a configured status bar against a Wayland or
// X11 display server. Grounded in yambar's main.c: load the config,
// connect, run until a signal or the display connection drops, then
// exit with the worst module exit code.
package main

import (
	"context"
	"fmt"
	"image/color"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/barline/barline/internal/backend"
	x11backend "github.com/barline/barline/internal/backend/x11"
	waylandbackend "github.com/barline/barline/internal/backend/wayland"
	"github.com/barline/barline/internal/bar"
	"github.com/barline/barline/internal/config"
	"github.com/barline/barline/internal/configio"
	"github.com/barline/barline/internal/font/gotext"
	"github.com/barline/barline/internal/plugin"
)

// version is set at build time via -ldflags "-X main.version=...";
// left as a plain default otherwise.
var version = "dev"

// defaultFontPaths is searched, in order, when --font is not given.
// yambar resolves its default font through fontconfig's "monospace"
// alias (original_source/font.c); without a fontconfig binding in the
// dependency set, this is the closest approximation available.
var defaultFontPaths = []string{
	"/usr/share/fonts/truetype/dejavu/DejaVuSansMono.ttf",
	"/usr/share/fonts/TTF/DejaVuSansMono.ttf",
	"/usr/share/fonts/noto/NotoSansMono-Regular.ttf",
}

func main() {
	os.Exit(run())
}

func run() int {
	var (
		configPath string
		logLevel   string
		logFormat  string
		backendSel string
		fontPath   string
		fontSize   float64
		foreground string
	)

	exitCode := 0

	root := &cobra.Command{
		Use:     "barline",
		Short:   "a Wayland/X11 desktop status bar",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := newLogger(logLevel, logFormat)
			if err != nil {
				return err
			}

			path := configPath
			if path == "" {
				path, err = defaultConfigPath()
				if err != nil {
					return fmt.Errorf("resolving default config path: %w", err)
				}
			}

			cfg, err := configio.Load(path)
			if err != nil {
				return err
			}

			if backendSel != "" {
				cfg.Backend = parseBackendFlag(backendSel)
			}

			inherited, err := buildInherited(fontPath, fontSize, foreground)
			if err != nil {
				return fmt.Errorf("building default particle attributes: %w", err)
			}

			be, err := selectBackend(cfg.Backend, log)
			if err != nil {
				return err
			}

			b := bar.New(cfg, be, log)

			registry := plugin.NewDefaultRegistry()
			left, err := configio.BuildModules(cfg.Left, registry, inherited, b)
			if err != nil {
				return fmt.Errorf("left: %w", err)
			}
			center, err := configio.BuildModules(cfg.Center, registry, inherited, b)
			if err != nil {
				return fmt.Errorf("center: %w", err)
			}
			right, err := configio.BuildModules(cfg.Right, registry, inherited, b)
			if err != nil {
				return fmt.Errorf("right: %w", err)
			}
			b.SetModules(left, center, right)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			code, err := b.Run(ctx)
			if err != nil {
				log.Error().Err(err).Msg("bar exited with an error")
			}
			exitCode = code
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to the bar config file (default: $HOME/.config/barline/config.yml)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: trace, debug, info, warn, error")
	root.PersistentFlags().StringVar(&logFormat, "log-format", "console", "log format: console or json")
	root.PersistentFlags().StringVar(&backendSel, "backend", "", "override the configured backend: auto, wayland, x11")
	root.PersistentFlags().StringVar(&fontPath, "font", "", "path to a TrueType font file")
	root.PersistentFlags().Float64Var(&fontSize, "font-size", 12, "font size in pixels")
	root.PersistentFlags().StringVar(&foreground, "foreground", "ffffffff", "default foreground color, rrggbb or rrggbbaa")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "print the barline version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), version)
			return nil
		},
	})

	if err := root.Execute(); err != nil {
		return 1
	}
	return exitCode
}

func newLogger(level, format string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("invalid --log-level %q: %w", level, err)
	}

	var w = os.Stderr
	log := zerolog.New(zerolog.ConsoleWriter{Out: w}).Level(lvl).With().Timestamp().Logger()
	if format == "json" {
		log = zerolog.New(w).Level(lvl).With().Timestamp().Logger()
	}
	return log, nil
}

func defaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "barline", "config.yml"), nil
}

func parseBackendFlag(s string) config.Backend {
	switch s {
	case "wayland":
		return config.BackendWayland
	case "x11":
		return config.BackendX11
	default:
		return config.BackendAuto
	}
}

// selectBackend resolves a config.Backend choice to a concrete
// backend.Backend. BackendAuto prefers Wayland when WAYLAND_DISPLAY is
// set, the same signal yambar's own wayland.c probe uses before
// falling back to X11.
func selectBackend(b config.Backend, log zerolog.Logger) (backend.Backend, error) {
	switch b {
	case config.BackendWayland:
		return waylandbackend.New(log), nil
	case config.BackendX11:
		return x11backend.New(log), nil
	default:
		if os.Getenv("WAYLAND_DISPLAY") != "" {
			return waylandbackend.New(log), nil
		}
		return x11backend.New(log), nil
	}
}

// buildInherited loads the default font and foreground color every
// particle falls back to when its own config node doesn't set one.
func buildInherited(fontPath string, sizePx float64, foreground string) (plugin.Inherited, error) {
	data, path, err := loadFontBytes(fontPath)
	if err != nil {
		return plugin.Inherited{}, err
	}
	provider, err := gotext.New(data, float32(sizePx))
	if err != nil {
		return plugin.Inherited{}, fmt.Errorf("%s: %w", path, err)
	}

	fg, err := parseColor(foreground)
	if err != nil {
		return plugin.Inherited{}, fmt.Errorf("--foreground: %w", err)
	}

	return plugin.Inherited{Font: provider, Foreground: fg}, nil
}

func loadFontBytes(explicit string) ([]byte, string, error) {
	candidates := defaultFontPaths
	if explicit != "" {
		candidates = []string{explicit}
	}
	var lastErr error
	for _, p := range candidates {
		data, err := os.ReadFile(p)
		if err == nil {
			return data, p, nil
		}
		lastErr = err
	}
	return nil, "", fmt.Errorf("no usable font found (pass --font): %w", lastErr)
}

func parseColor(s string) (color.Color, error) {
	s = strings.TrimPrefix(s, "#")
	if len(s) == 6 {
		s += "ff"
	}
	if len(s) != 8 {
		return nil, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}
