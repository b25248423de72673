package sinerider

import (
	"context"
	"fmt"
	"image"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"golang.org/x/sync/errgroup"
)

// Assets resolves image assets by key. Keys are slash-separated paths
// without extension, e.g. "images/sledder".
type Assets interface {
	Image(key string) (*ebiten.Image, bool)
}

// AssetMap is an in-memory Assets.
type AssetMap map[string]*ebiten.Image

// Image implements Assets.
func (m AssetMap) Image(key string) (*ebiten.Image, bool) {
	img, ok := m[key]
	return img, ok && img != nil
}

// LoadAssetDir decodes every PNG under dir in parallel. Keys are paths
// relative to dir with the extension removed.
func LoadAssetDir(ctx context.Context, dir string) (AssetMap, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".png") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan assets: %w", err)
	}

	var mu sync.Mutex
	out := make(AssetMap, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for _, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			img, err := decodeImage(path)
			if err != nil {
				return err
			}
			rel, _ := filepath.Rel(dir, path)
			key := filepath.ToSlash(strings.TrimSuffix(rel, filepath.Ext(rel)))
			mu.Lock()
			out[key] = img
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func decodeImage(path string) (*ebiten.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	src, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return ebiten.NewImageFromImage(src), nil
}

// drawImageWorld draws img centred on world point p, scaled so its height
// spans size world units.
func drawImageWorld(dst, img *ebiten.Image, sc *Scope, p Vec2, size float64, flip bool, alpha float64) {
	b := img.Bounds()
	if b.Dy() == 0 || size <= 0 {
		return
	}
	scale := size * sc.PixelsPerUnit() / float64(b.Dy())
	sx, sy := sc.WorldToScreen(p)
	var op ebiten.DrawImageOptions
	op.GeoM.Translate(-float64(b.Dx())/2, -float64(b.Dy())/2)
	if flip {
		op.GeoM.Scale(-scale, scale)
	} else {
		op.GeoM.Scale(scale, scale)
	}
	op.GeoM.Translate(sx, sy)
	op.ColorScale.ScaleAlpha(float32(clamp01(alpha)))
	op.Filter = ebiten.FilterLinear
	dst.DrawImage(img, &op)
}

func lookupImage(a Assets, key string) (*ebiten.Image, bool) {
	if a == nil || key == "" {
		return nil, false
	}
	return a.Image(key)
}
