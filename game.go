package sinerider

import (
	"errors"
	"unicode/utf8"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"go.uber.org/zap"
)

// RunConfig configures the window and frame loop.
type RunConfig struct {
	Title         string
	Width, Height int
	// TPS is the fixed tick rate. Zero keeps Ebitengine's default of 60.
	TPS   int
	Debug bool
	// ShowFPS spawns an FPSOverlay.
	ShowFPS       bool
	ScreenshotDir string
}

// ErrQuit ends Run without an error when returned from Game.Update.
var ErrQuit = errors.New("sinerider: quit")

// Game adapts a Level to ebiten.Game. Keys: Enter runs or stops, Escape
// resets, Tab focuses the expression editor (Enter applies, Escape leaves),
// left and right walk the lead walker, F12 takes a screenshot and Q quits
// when the editor is not focused.
type Game struct {
	Level  *Level
	Script *Script
	// QuitWhenDone ends the loop once Script finishes.
	QuitWhenDone bool

	editing bool
	field   []rune
	w, h    int
	log     *zap.Logger
}

// NewGame wraps l.
func NewGame(l *Level) *Game {
	return &Game{Level: l, log: l.log}
}

// Editing reports whether the expression editor has focus.
func (g *Game) Editing() bool { return g.editing }

// Update implements ebiten.Game.
func (g *Game) Update() error {
	if g.Script != nil {
		g.Script.Step(g.Level)
		if g.QuitWhenDone && g.Script.Done() {
			return ErrQuit
		}
	}
	if err := g.handleInput(); err != nil {
		return err
	}
	g.Level.Update()
	return nil
}

func (g *Game) handleInput() error {
	l := g.Level
	if g.editing {
		g.field = ebiten.AppendInputChars(g.field)
		switch {
		case inpututil.IsKeyJustPressed(ebiten.KeyBackspace) && len(g.field) > 0:
			g.field = g.field[:len(g.field)-1]
		case inpututil.IsKeyJustPressed(ebiten.KeyEnter):
			g.ApplyExpression(string(g.field))
			g.editing = false
		case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
			g.editing = false
		}
		l.ui.SetText(ElemMathField, string(g.field))
		return nil
	}
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyTab):
		g.Focus()
	case inpututil.IsKeyJustPressed(ebiten.KeyEnter):
		g.ToggleRunning()
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		l.Reset()
	case inpututil.IsKeyJustPressed(ebiten.KeyF12):
		l.scene.Screenshot("manual")
	case inpututil.IsKeyJustPressed(ebiten.KeyQ):
		return ErrQuit
	}
	if len(l.walkers) > 0 {
		switch {
		case ebiten.IsKeyPressed(ebiten.KeyArrowLeft):
			l.walkers[0].Nudge(-1)
		case ebiten.IsKeyPressed(ebiten.KeyArrowRight):
			l.walkers[0].Nudge(1)
		}
	}
	return nil
}

// Focus gives the expression editor focus, seeded with the current
// expression.
func (g *Game) Focus() {
	g.editing = true
	g.field = []rune(g.Level.graph.Expression())
	if s := g.Level.shader; s != nil {
		g.field = []rune(s.Expression())
	}
	g.Level.MathFieldFocused()
}

// ApplyExpression sets the level's expression from the editor text.
func (g *Game) ApplyExpression(text string) bool {
	if !utf8.ValidString(text) {
		return false
	}
	valid := g.Level.SetGraphExpression(text, text)
	g.log.Debug("expression applied", zap.String("expression", text), zap.Bool("valid", valid))
	return valid
}

// ToggleRunning starts a stopped level or stops a running one.
func (g *Game) ToggleRunning() {
	if g.Level.Running() {
		g.Level.StopRunning()
	} else {
		g.Level.StartRunning()
	}
}

// Draw implements ebiten.Game.
func (g *Game) Draw(screen *ebiten.Image) {
	g.Level.Draw(screen)
}

// Layout implements ebiten.Game. The level is resized whenever the outside
// size changes.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.w || outsideHeight != g.h {
		g.w, g.h = outsideWidth, outsideHeight
		g.Level.Resize(outsideWidth, outsideHeight)
	}
	return outsideWidth, outsideHeight
}

// Run opens a window and runs g until the window closes or Update returns
// ErrQuit.
func Run(g *Game, cfg RunConfig) error {
	if cfg.Title == "" {
		cfg.Title = "Sinerider"
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg.Width, cfg.Height = 1280, 720
	}
	if cfg.TPS > 0 {
		ebiten.SetTPS(cfg.TPS)
	}
	s := g.Level.scene
	if cfg.ScreenshotDir != "" {
		s.ScreenshotDir = cfg.ScreenshotDir
	}
	s.SetDebugMode(cfg.Debug)
	if cfg.ShowFPS {
		s.Spawn(NoEntity, "fps", LayerLevel, Transform{}, NewFPSOverlay())
	}
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	g.Layout(cfg.Width, cfg.Height)

	g.Level.PlayOpenMusic()
	err := ebiten.RunGame(g)
	if errors.Is(err, ErrQuit) {
		return nil
	}
	return err
}
