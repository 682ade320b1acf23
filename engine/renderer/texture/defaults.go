package texture

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// Fallback textures substituted for missing material or lightmap bindings.
// Each is chosen so that it leaves the composite unchanged for its role.
var (
	defaultsOnce sync.Once

	defaultBase     Texture
	defaultDetail   Texture
	defaultBump     Texture
	defaultLightmap Texture
)

func initDefaults() {
	defaultBase = NewSolidTexture("default_base", mgl32.Vec4{1, 1, 1, 1})
	// zero alpha makes every recognized blend mode a no-op
	defaultDetail = NewSolidTexture("default_detail", mgl32.Vec4{0.5, 0.5, 0.5, 0})
	// opaque so an alpha-tested material never discards on the bump test
	defaultBump = NewSolidTexture("default_bump", mgl32.Vec4{0.5, 0.5, 1, 1})
	defaultLightmap = NewSolidTexture("default_lightmap", mgl32.Vec4{1, 1, 1, 1})
}

// DefaultBaseTexture returns the opaque white 1x1 base map fallback.
func DefaultBaseTexture() Texture {
	defaultsOnce.Do(initDefaults)
	return defaultBase
}

// DefaultDetailTexture returns the fully transparent mid-gray 1x1 detail map fallback.
func DefaultDetailTexture() Texture {
	defaultsOnce.Do(initDefaults)
	return defaultDetail
}

// DefaultBumpTexture returns the flat, opaque 1x1 bump map fallback.
func DefaultBumpTexture() Texture {
	defaultsOnce.Do(initDefaults)
	return defaultBump
}

// DefaultLightmapTexture returns the opaque white 1x1 lightmap fallback (full brightness).
func DefaultLightmapTexture() Texture {
	defaultsOnce.Do(initDefaults)
	return defaultLightmap
}
