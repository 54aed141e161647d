package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	ebaudio "github.com/hajimehoshi/ebiten/v2/audio"

	"github.com/Garsondee/spacecoco/internal/audio"
	"github.com/Garsondee/spacecoco/internal/game"
	"github.com/Garsondee/spacecoco/internal/profile"
	"github.com/Garsondee/spacecoco/internal/remote"
	"github.com/Garsondee/spacecoco/internal/sim"
)

// seedEnv overrides the seed flag when set.
const seedEnv = "SPACECOCO_SEED"

type options struct {
	variant string
	seed    int64
	walls   bool
	remote  string
	assets  string
	debug   bool
	mute    bool
	noCopy  bool
}

func parseFlags(args []string) (options, error) {
	var o options
	fs := flag.NewFlagSet("spacecoco", flag.ContinueOnError)
	fs.StringVar(&o.variant, "variant", "grid", "grid, grid-walls, plane, sphere or sphere-inner")
	fs.Int64Var(&o.seed, "seed", 0, "RNG seed (0 picks one from the clock)")
	fs.BoolVar(&o.walls, "walls", false, "make the planar edge fatal")
	fs.StringVar(&o.remote, "remote", "", "listen address for the phone controller, e.g. :8090")
	fs.StringVar(&o.assets, "assets", "assets", "directory holding sprites/")
	fs.BoolVar(&o.debug, "debug", false, "log to stderr")
	fs.BoolVar(&o.mute, "mute", false, "start muted")
	fs.BoolVar(&o.noCopy, "no-copy", false, "do not copy the run report at game over")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if v := os.Getenv(seedEnv); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return o, fmt.Errorf("%s: %w", seedEnv, err)
		}
		o.seed = seed
	}
	return o, nil
}

// buildConfig resolves the variant preset and applies flag overrides.
func buildConfig(o options, logger *log.Logger) (sim.Config, error) {
	cfg, err := sim.ConfigForVariant(o.variant)
	if err != nil {
		return cfg, err
	}
	if o.walls && cfg.Topology != sim.TopologySphere {
		cfg.PlayerBoundary = sim.BoundaryFatal
	}
	cfg.Seed = o.seed
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	cfg.Logger = logger
	return cfg, cfg.Validate()
}

func main() {
	o, err := parseFlags(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatal(err)
	}
	logger := log.New(io.Discard, "", 0)
	if o.debug {
		logger = log.New(os.Stderr, "spacecoco ", log.LstdFlags|log.Lmicroseconds)
	}

	cfg, err := buildConfig(o, logger)
	if err != nil {
		log.Fatal(err)
	}
	sm, err := sim.New(cfg)
	if err != nil {
		log.Fatal(err)
	}

	engine := audio.New(ebaudio.NewContext(audio.SampleRate), logger)
	engine.SetMuted(o.mute)

	var store *profile.Store
	if path, err := profile.DefaultPath(); err != nil {
		logger.Printf("profile disabled: %v", err)
	} else {
		store = profile.Open(path)
	}

	g := game.New(sm, game.Options{
		Notifier:   engine,
		Store:      store,
		Sprites:    os.DirFS(o.assets),
		Logger:     logger,
		CopyReport: !o.noCopy,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	go func() {
		<-ctx.Done()
		g.Loop().Stop()
	}()
	if o.remote != "" {
		h := remote.NewHandler(sm.Input(), remote.HandlerConfig{Logger: logger})
		go func() {
			if err := remote.Serve(ctx, o.remote, h); err != nil {
				logger.Printf("remote: %v", err)
			}
		}()
	}

	w, h := g.WindowSize()
	ebiten.SetWindowTitle("Spacecoco")
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowResizable(true)
	if err := ebiten.RunGame(g); err != nil {
		log.Fatal(err)
	}
}
