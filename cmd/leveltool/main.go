// Command leveltool serves and checks level data outside the game.
//
//	leveltool serve              serve public/ with the level API endpoints
//	leveltool validate FILE...   check placement or exclusion files
//	leveltool times              list the best recorded runs
//	leveltool defaults           write config/game.yaml with the default tuning
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"toycar/internal/commands"
	"toycar/internal/fetch"
	"toycar/internal/gameconfig"
	"toycar/internal/level"
	"toycar/internal/levelapi"
	"toycar/internal/logger"
	"toycar/internal/tracker"
)

func main() {
	env, err := gameconfig.LoadEnv(".env")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logger.New(env.LogFile)
	defer log.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	reg := registry(env, log.Zap())
	if err := reg.Execute(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, commands.ErrUsage) {
			fmt.Fprintln(os.Stderr, err)
			reg.Usage(os.Stderr, filepath.Base(os.Args[0]))
			os.Exit(2)
		}
		log.Zap().Error("leveltool failed", zap.Error(err))
		os.Exit(1)
	}
}

func registry(env gameconfig.Env, log *zap.Logger) *commands.Registry {
	reg := commands.NewRegistry()

	serveFlags := flag.NewFlagSet("serve", flag.ContinueOnError)
	addr := serveFlags.String("addr", env.ListenAddr, "listen address")
	dir := serveFlags.String("dir", env.StaticDir, "static directory")
	reg.Register("serve", "serve the level API and static files", serveFlags, func(ctx context.Context, _ []string) error {
		fsys, err := fetch.DirFS(*dir)
		if err != nil {
			return err
		}
		return levelapi.New(fsys, log).ListenAndServe(ctx, *addr)
	})

	validateFlags := flag.NewFlagSet("validate", flag.ContinueOnError)
	kind := validateFlags.String("kind", "", `"blocks" or "excluded"; guessed from the file name when empty`)
	reg.Register("validate", "check placement and exclusion files", validateFlags, func(_ context.Context, args []string) error {
		if len(args) == 0 {
			return fmt.Errorf("%w: validate needs at least one file", commands.ErrUsage)
		}
		var failed int
		for _, path := range args {
			if err := validateFile(path, *kind); err != nil {
				fmt.Printf("FAIL %s: %v\n", path, err)
				failed++
				continue
			}
			fmt.Printf("ok   %s\n", path)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d files invalid", failed, len(args))
		}
		return nil
	})

	timesFlags := flag.NewFlagSet("times", flag.ContinueOnError)
	limit := timesFlags.Int("n", 10, "number of runs")
	db := timesFlags.String("db", env.DBPath, "times database")
	reg.Register("times", "list the best recorded runs", timesFlags, func(ctx context.Context, _ []string) error {
		store, err := tracker.OpenSQLite(*db)
		if err != nil {
			return err
		}
		defer store.Close()
		runs, err := store.BestTimes(ctx, *limit)
		if err != nil {
			return err
		}
		for i, r := range runs {
			fmt.Printf("%2d. %s  %3d points  %s\n", i+1, tracker.FormatElapsed(r.Elapsed), r.Points, r.FinishedAt.Format("2006-01-02 15:04"))
		}
		return nil
	})

	defaultsFlags := flag.NewFlagSet("defaults", flag.ContinueOnError)
	out := defaultsFlags.String("out", env.TuningPath, "tuning file to write")
	reg.Register("defaults", "write the default tuning file", defaultsFlags, func(context.Context, []string) error {
		if err := gameconfig.Save(*out, gameconfig.Default()); err != nil {
			return err
		}
		log.Info("tuning written", zap.String("path", *out))
		return nil
	})
	return reg
}

func validateFile(path, kind string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if kind == "" {
		kind = "blocks"
		if strings.Contains(filepath.Base(path), "excluded") {
			kind = "excluded"
		}
	}
	switch kind {
	case "blocks":
		recs, err := level.DecodePlacements(data)
		if err != nil {
			return err
		}
		for i, r := range recs {
			if r.Name == nil || *r.Name == "" {
				return fmt.Errorf("record %d has no name", i)
			}
		}
		return nil
	case "excluded":
		_, err := level.DecodeExclusions(data)
		return err
	}
	return fmt.Errorf("%w: unknown kind %q", commands.ErrUsage, kind)
}
