package sinerider

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// FPSOverlay shows frame and tick rates plus the scene's entity count and
// hook failures in the top-left corner. The text refreshes about every half
// second.
type FPSOverlay struct {
	img   *ebiten.Image
	since float64
	dirty bool
	text  string
}

// NewFPSOverlay creates the overlay behaviour. Spawn it at LayerNavigator
// or above.
func NewFPSOverlay() *FPSOverlay {
	return &FPSOverlay{dirty: true}
}

// Text returns the most recently rendered overlay text.
func (f *FPSOverlay) Text() string { return f.text }

func (f *FPSOverlay) Tick(e *Entity, sc *Scope) error {
	f.since += sc.DT
	if f.since < 0.5 && !f.dirty {
		return nil
	}
	f.since = 0
	f.dirty = false
	s := e.Scene()
	f.text = fmt.Sprintf("FPS: %.1f\nTPS: %.1f\nEntities: %d\nHook errors: %d",
		ebiten.ActualFPS(), ebiten.ActualTPS(), s.Len(), s.HookFailures())
	if f.img == nil {
		// 140x64 fits four lines of the debug font.
		f.img = ebiten.NewImage(140, 64)
	}
	f.img.Clear()
	f.img.Fill(color.RGBA{0, 0, 0, 128})
	ebitenutil.DebugPrint(f.img, f.text)
	return nil
}

func (f *FPSOverlay) Draw(_ *Entity, _ *Scope, dst *ebiten.Image) error {
	if f.img != nil {
		dst.DrawImage(f.img, nil)
	}
	return nil
}

func (f *FPSOverlay) Destroy(*Entity) error {
	if f.img != nil {
		f.img.Deallocate()
		f.img = nil
	}
	return nil
}
