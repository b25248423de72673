// Command sinerider plays a single level file in a window.
//
//	sinerider --level levels/constant_lake.yaml --assets assets
//
// With --script the level is driven by a JSON step list instead of the
// keyboard, which together with --screenshot-dir is how level renders are
// captured headlessly in CI.
package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/phanxgames/sinerider"
	"github.com/phanxgames/sinerider/ecs"
	"github.com/urfave/cli/v3"
	"github.com/yohamta/donburi"
	"go.uber.org/zap"
)

func main() {
	cmd := &cli.Command{
		Name:  "sinerider",
		Usage: "play a Sinerider level",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "level", Aliases: []string{"l"}, Usage: "level file (.yaml or .json)", Required: true},
			&cli.StringFlag{Name: "assets", Usage: "directory of PNG and WAV assets"},
			&cli.StringFlag{Name: "script", Usage: "JSON step script to drive the level"},
			&cli.StringFlag{Name: "screenshot-dir", Value: "screenshots", Usage: "where screenshots are written"},
			&cli.IntFlag{Name: "width", Value: 1280, Usage: "window width"},
			&cli.IntFlag{Name: "height", Value: 720, Usage: "window height"},
			&cli.IntFlag{Name: "tps", Value: 60, Usage: "ticks per second"},
			&cli.BoolFlag{Name: "bubble", Usage: "load as a bubble level"},
			&cli.BoolFlag{Name: "mute", Usage: "do not open an audio device"},
			&cli.BoolFlag{Name: "fps", Usage: "show the FPS overlay"},
			&cli.BoolFlag{Name: "debug", Usage: "development logging and debug checks"},
			&cli.BoolFlag{Name: "stats", Usage: "print level statistics on exit"},
		},
		Action: run,
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "sinerider:", err)
		os.Exit(1)
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func run(ctx context.Context, cmd *cli.Command) error {
	log, err := newLogger(cmd.Bool("debug"))
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	datum, err := sinerider.LoadLevelFile(cmd.String("level"))
	if err != nil {
		return err
	}

	var assets sinerider.AssetMap
	sounds := sinerider.NewSoundBank(sinerider.DefaultSampleRate)
	if dir := cmd.String("assets"); dir != "" {
		if assets, err = sinerider.LoadAssetDir(ctx, dir); err != nil {
			return err
		}
		files, err := soundFiles(dir)
		if err != nil {
			return err
		}
		if sounds, err = sinerider.LoadSoundBank(ctx, sinerider.DefaultSampleRate, files); err != nil {
			return err
		}
	}
	sounds.SetLogger(log.Named("sound"))
	if err := sounds.AddDefaultCues(); err != nil {
		return err
	}
	if !cmd.Bool("mute") {
		if err := sounds.Start(); err != nil {
			log.Warn("audio unavailable", zap.Error(err))
		}
		defer sounds.Close()
	}

	world := donburi.NewWorld()
	scene := sinerider.NewScene()
	scene.SetLogger(log)
	cfg := sinerider.LevelConfig{
		BubbleLevel: cmd.Bool("bubble"),
		Sounds:      sounds,
		Logger:      log,
		Events:      ecs.NewDonburiSink(world),
		OnLevelCompleted: func() {
			log.Info("level completed", zap.String("level", datum.Name))
		},
	}
	if assets != nil {
		cfg.Assets = assets
	}
	level, err := sinerider.NewLevel(scene, datum, cfg)
	if err != nil {
		return err
	}
	defer level.Destroy()

	game := sinerider.NewGame(level)
	if path := cmd.String("script"); path != "" {
		if game.Script, err = sinerider.LoadScriptFile(path); err != nil {
			return err
		}
		game.QuitWhenDone = true
	}

	err = sinerider.Run(game, sinerider.RunConfig{
		Title:         "Sinerider: " + datum.Name,
		Width:         int(cmd.Int("width")),
		Height:        int(cmd.Int("height")),
		TPS:           int(cmd.Int("tps")),
		Debug:         cmd.Bool("debug"),
		ShowFPS:       cmd.Bool("fps"),
		ScreenshotDir: cmd.String("screenshot-dir"),
	})
	if cmd.Bool("stats") {
		if st, ok := ecs.Stats(world); ok {
			fmt.Printf("runs=%d goals=%d failed=%d cascaded=%d completed=%d\n",
				st.Runs, st.GoalsCompleted, st.GoalsFailed, st.Cascaded, st.LevelsCompleted)
		}
	}
	return err
}

// soundFiles maps every WAV under dir to its slash-separated path relative
// to dir, without extension.
func soundFiles(dir string) (map[string]string, error) {
	files := make(map[string]string)
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".wav") {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		files[filepath.ToSlash(strings.TrimSuffix(rel, filepath.Ext(rel)))] = path
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan sounds: %w", err)
	}
	return files, nil
}
