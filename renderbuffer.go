package sinerider

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"
)

// PostProcessFunc runs on a render buffer's content once per frame, just
// before the buffer is composited onto the primary surface.
type PostProcessFunc func(img *ebiten.Image, width, height int)

// RenderBuffer is an off-screen surface owned by an entity. Entities whose
// target is the buffer draw into it instead of the primary surface. The
// buffer is cleared at the start of each Draw and composited source-over
// onto the primary surface at its owner's draw slot.
//
// Only entities that draw before the owner land in the composited frame;
// later draws are cleared with the next frame.
type RenderBuffer struct {
	Name        string
	PostProcess PostProcessFunc

	owner    EntityID
	image    *ebiten.Image
	w, h     int
	degraded bool
	err      error
	allocs   int
}

// allocImage allocates a surface. Replaced in tests to simulate failures.
var allocImage = func(w, h int) (img *ebiten.Image, err error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("allocate %dx%d: %w", w, h, ErrInvalidSize)
	}
	defer func() {
		if r := recover(); r != nil {
			img, err = nil, fmt.Errorf("allocate %dx%d: %v", w, h, r)
		}
	}()
	return ebiten.NewImage(w, h), nil
}

// NewRenderBuffer creates a buffer owned by owner and sized to the scene's
// current surface. A buffer created before the first Resize stays empty
// until then. On allocation failure the buffer is still returned, marked
// degraded, together with the error.
func (s *Scene) NewRenderBuffer(owner EntityID, name string, post PostProcessFunc) (*RenderBuffer, error) {
	e := s.get(owner)
	if e == nil {
		return nil, fmt.Errorf("render buffer %q: owner %v: %w", name, owner, ErrDestroyed)
	}
	b := &RenderBuffer{Name: name, PostProcess: post, owner: owner}
	e.buffers = append(e.buffers, b)
	s.buffers = append(s.buffers, b)
	if s.width > 0 && s.height > 0 {
		if err := b.Resize(s.width, s.height); err != nil {
			s.log.Error("render buffer allocation failed",
				zap.String("buffer", name),
				zap.String("owner", e.Name),
				zap.Error(err))
			return b, err
		}
	}
	return b, nil
}

// removeBuffer unregisters b from the scene.
func (s *Scene) removeBuffer(b *RenderBuffer) {
	for i, rb := range s.buffers {
		if rb == b {
			copy(s.buffers[i:], s.buffers[i+1:])
			s.buffers[len(s.buffers)-1] = nil
			s.buffers = s.buffers[:len(s.buffers)-1]
			return
		}
	}
}

// Image returns the underlying surface, or nil when unallocated.
func (b *RenderBuffer) Image() *ebiten.Image { return b.image }

// Owner returns the owning entity's handle.
func (b *RenderBuffer) Owner() EntityID { return b.owner }

// Width returns the buffer width in pixels.
func (b *RenderBuffer) Width() int { return b.w }

// Height returns the buffer height in pixels.
func (b *RenderBuffer) Height() int { return b.h }

// Degraded reports whether the last allocation failed.
func (b *RenderBuffer) Degraded() bool { return b.degraded }

// Err returns the last allocation error.
func (b *RenderBuffer) Err() error { return b.err }

// Allocations returns how many surfaces the buffer has allocated.
func (b *RenderBuffer) Allocations() int { return b.allocs }

// Usable reports whether entities can draw into the buffer.
func (b *RenderBuffer) Usable() bool { return b.image != nil && !b.degraded }

// Resize reallocates the surface at the given dimensions. It is a no-op
// when the dimensions match the current, healthy surface. A failed
// allocation marks the buffer degraded until a later Resize succeeds.
func (b *RenderBuffer) Resize(width, height int) error {
	if b.image != nil && !b.degraded && b.w == width && b.h == height {
		return nil
	}
	img, err := allocImage(width, height)
	if err != nil {
		b.release()
		b.degraded = true
		b.err = err
		return fmt.Errorf("render buffer %q: %w", b.Name, err)
	}
	b.release()
	b.image = img
	b.w, b.h = width, height
	b.degraded = false
	b.err = nil
	b.allocs++
	return nil
}

// clear fills the surface with transparent black.
func (b *RenderBuffer) clear() {
	if b.Usable() {
		b.image.Clear()
	}
}

// composite draws the buffer over dst with source-over blending.
func (b *RenderBuffer) composite(dst *ebiten.Image) {
	if !b.Usable() {
		return
	}
	var op ebiten.DrawImageOptions
	op.Blend = BlendNormal.EbitenBlend()
	dst.DrawImage(b.image, &op)
}

// compositeBuffer runs b's post-process as a hook of its owner and then
// composites it onto screen.
func (s *Scene) compositeBuffer(owner *Entity, b *RenderBuffer, screen *ebiten.Image) {
	if !b.Usable() {
		return
	}
	if b.PostProcess != nil {
		s.invoke(owner, "postprocess", func() error {
			b.PostProcess(b.image, b.w, b.h)
			return nil
		})
	}
	b.composite(screen)
}

func (b *RenderBuffer) release() {
	if b.image != nil {
		b.image.Deallocate()
		b.image = nil
	}
}

// Dispose deallocates the surface. The buffer must not be used afterwards.
func (b *RenderBuffer) Dispose() {
	b.release()
	b.w, b.h = 0, 0
}
