package level

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"sync"

	"github.com/anthonynsimon/bild/transform"
	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"toycar/internal/fetch"
	"toycar/internal/gameconfig"
	"toycar/internal/scene"
)

// Decals loads the signage texture off the game goroutine and applies it to display
// surfaces through Post. The decoded texture is shared by every surface.
type Decals struct {
	Source   fetch.Source
	Settings gameconfig.Signage
	// Post hands the material swap to the game goroutine; nil applies it inline.
	Post func(func())
	Log  *zap.Logger

	once sync.Once
	tex  *scene.Texture
	err  error
	wg   sync.WaitGroup
}

// Apply starts loading the texture (once) and swaps surface's material when it is ready.
// A failed load is logged and leaves the surface untouched.
func (d *Decals) Apply(ctx context.Context, surface *scene.Node) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		tex, err := d.texture(ctx)
		if err != nil {
			d.logger().Warn("cannot load signage texture", zap.String("texture", d.Settings.Texture), zap.Error(err))
			return
		}
		mat := decalMaterial(tex, d.Settings)
		swap := func() { surface.Material = mat }
		if d.Post != nil {
			d.Post(swap)
		} else {
			swap()
		}
	}()
}

// Wait blocks until every started load has finished (not necessarily been applied).
func (d *Decals) Wait() { d.wg.Wait() }

func (d *Decals) logger() *zap.Logger {
	if d.Log == nil {
		return zap.NewNop()
	}
	return d.Log
}

func (d *Decals) texture(ctx context.Context) (*scene.Texture, error) {
	d.once.Do(func() {
		data, err := d.Source.Fetch(ctx, d.Settings.Texture)
		if err != nil {
			d.err = err
			return
		}
		img, err := decodeDecal(data, d.Settings)
		if err != nil {
			d.err = err
			return
		}
		d.tex = &scene.Texture{Name: d.Settings.Texture, Image: img}
	})
	return d.tex, d.err
}

// decodeDecal decodes png, jpeg, webp or bmp data and bakes the configured flip and
// rotation (about the image center) into the pixels.
func decodeDecal(data []byte, s gameconfig.Signage) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("level: decal: %w", err)
	}
	if s.FlipY {
		img = transform.FlipV(img)
	}
	if s.RotationDeg != 0 {
		img = transform.Rotate(img, s.RotationDeg, nil)
	}
	return img, nil
}

func decalMaterial(tex *scene.Texture, s gameconfig.Signage) *scene.Material {
	return &scene.Material{
		Color:      [4]uint8{255, 255, 255, 255},
		Texture:    tex,
		WrapS:      scene.WrapClampToEdge,
		WrapT:      scene.WrapClampToEdge,
		Anisotropy: s.Anisotropy,
		DoubleSide: true,
	}
}
