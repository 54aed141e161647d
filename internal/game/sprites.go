package game

import (
	_ "image/png"
	"io/fs"
	"log"
	"path"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/Garsondee/spacecoco/internal/sim"
)

// spriteDir is where sprites live inside the asset filesystem.
const spriteDir = "sprites"

// Sprites holds one optional image per entity kind. Kinds without an image
// are drawn as placeholder discs.
type Sprites struct {
	images [sim.KindCount]*ebiten.Image
}

// spritePath is the asset path for k, e.g. sprites/ufo.png.
func spritePath(k sim.Kind) string {
	return path.Join(spriteDir, k.String()+".png")
}

// LoadSprites loads every kind's sprite from fsys. Missing or broken files
// are logged and fall back to the placeholder.
func LoadSprites(fsys fs.FS, logger *log.Logger) *Sprites {
	s := &Sprites{}
	for k := sim.Kind(0); k < sim.KindCount; k++ {
		p := spritePath(k)
		img, _, err := ebitenutil.NewImageFromFileSystem(fsys, p)
		if err != nil {
			logger.Printf("sprite %s: %v (using placeholder)", p, err)
			continue
		}
		s.images[k] = img
	}
	return s
}

// Image returns k's sprite or nil. A nil Sprites has no images.
func (s *Sprites) Image(k sim.Kind) *ebiten.Image {
	if s == nil || k < 0 || k >= sim.KindCount {
		return nil
	}
	return s.images[k]
}

// Loaded counts kinds with a sprite.
func (s *Sprites) Loaded() int {
	n := 0
	for _, img := range s.images {
		if img != nil {
			n++
		}
	}
	return n
}
