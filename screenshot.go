package sinerider

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"
)

// Screenshot queues a capture of the next drawn frame. Captures are named
// after the label and the frame number so scripted runs write the same file
// names every time. Repeating a label within one frame captures once.
func (s *Scene) Screenshot(label string) {
	if slices.Contains(s.screenshotQueue, label) {
		return
	}
	s.screenshotQueue = append(s.screenshotQueue, label)
}

// flushScreenshots writes every queued capture of screen. Called last in
// Scene.Draw.
func (s *Scene) flushScreenshots(screen *ebiten.Image) {
	if len(s.screenshotQueue) == 0 {
		return
	}
	defer func() { s.screenshotQueue = s.screenshotQueue[:0] }()

	if err := os.MkdirAll(s.ScreenshotDir, 0o755); err != nil {
		s.log.Error("screenshot directory", zap.String("dir", s.ScreenshotDir), zap.Error(err))
		return
	}

	b := screen.Bounds()
	pixels := make([]byte, 4*b.Dx()*b.Dy())
	screen.ReadPixels(pixels)
	img := unpremultiply(pixels, b.Dx(), b.Dy())

	for _, label := range s.screenshotQueue {
		path := filepath.Join(s.ScreenshotDir, screenshotName(label, s.scope.Frame))
		if err := savePNG(path, img); err != nil {
			s.log.Error("screenshot", zap.String("label", label), zap.Error(err))
			continue
		}
		s.log.Info("screenshot written", zap.String("path", path), zap.Uint64("frame", s.scope.Frame))
	}
}

// unpremultiply turns premultiplied RGBA bytes read back from the GPU into
// a straight-alpha image.
func unpremultiply(pixels []byte, w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	copy(img.Pix, pixels)
	for i := 0; i+3 < len(img.Pix); i += 4 {
		a := int(img.Pix[i+3])
		if a == 0 || a == 255 {
			continue
		}
		for c := i; c < i+3; c++ {
			img.Pix[c] = uint8(min(int(img.Pix[c])*255/a, 255))
		}
	}
	return img
}

func savePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// screenshotName is "<label>-<frame>.png" with the frame zero-padded so
// captures sort in frame order. Label characters outside [A-Za-z0-9._-]
// become underscores; an empty label is "frame".
func screenshotName(label string, frame uint64) string {
	label = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '.', r == '_':
			return r
		}
		return '_'
	}, strings.TrimSpace(label))
	if label == "" {
		label = "frame"
	}
	return fmt.Sprintf("%s-%06d.png", label, frame)
}
