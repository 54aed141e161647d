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

	"github.com/gdamore/tcell/v2"

	"github.com/Garsondee/spacecoco/internal/profile"
	"github.com/Garsondee/spacecoco/internal/remote"
	"github.com/Garsondee/spacecoco/internal/sim"
	"github.com/Garsondee/spacecoco/internal/term"
)

const seedEnv = "SPACECOCO_SEED"

type options struct {
	variant string
	seed    int64
	walls   bool
	remote  string
	logPath string
}

func parseFlags(args []string) (options, error) {
	var o options
	fs := flag.NewFlagSet("spacecoco-term", flag.ContinueOnError)
	fs.StringVar(&o.variant, "variant", "grid", "grid, grid-walls, plane, sphere or sphere-inner")
	fs.Int64Var(&o.seed, "seed", 0, "RNG seed (0 picks one from the clock)")
	fs.BoolVar(&o.walls, "walls", false, "make the planar edge fatal")
	fs.StringVar(&o.remote, "remote", "", "listen address for the phone controller")
	fs.StringVar(&o.logPath, "log", "", "append logs to this file")
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

// openLog returns a file logger, or a discard logger when path is empty.
// The terminal owns stdout and stderr while the game runs.
func openLog(path string) (*log.Logger, io.Closer, error) {
	if path == "" {
		return log.New(io.Discard, "", 0), io.NopCloser(nil), nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log: %w", err)
	}
	return log.New(f, "spacecoco ", log.LstdFlags|log.Lmicroseconds), f, nil
}

func main() {
	if err := run(os.Args[1:]); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal(err)
	}
}

func run(args []string) error {
	o, err := parseFlags(args)
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}
	logger, closer, err := openLog(o.logPath)
	if err != nil {
		return err
	}
	defer closer.Close()

	cfg, err := buildConfig(o, logger)
	if err != nil {
		return err
	}
	sm, err := sim.New(cfg)
	if err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	defer screen.Fini()
	screen.EnableFocus()
	screen.HideCursor()

	host := term.NewHost(screen, sm, nil)
	if path, err := profile.DefaultPath(); err == nil {
		store := profile.Open(path)
		host.OnGameOver = func(sm *sim.Sim) {
			score, _ := sm.Session().FinalScore()
			if _, err := store.SubmitScore(score, sim.VariantName(sm.Config()), sm.Seed()); err != nil {
				logger.Printf("submit score: %v", err)
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if o.remote != "" {
		h := remote.NewHandler(sm.Input(), remote.HandlerConfig{Logger: logger})
		go func() {
			if err := remote.Serve(ctx, o.remote, h); err != nil {
				logger.Printf("remote: %v", err)
			}
		}()
	}
	return host.Run(ctx)
}
