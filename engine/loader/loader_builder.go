package loader

import (
	"github.com/Carmen-Shannon/oxy-envmat/common"
	"github.com/Carmen-Shannon/oxy-envmat/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-envmat/engine/renderer/texture"
)

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithLogger is an option builder that sets the logger receiving validation warnings and fallback notices.
//
// Parameters:
//   - logger: the logger, nil for none
//
// Returns:
//   - LoaderBuilderOption: a function that applies the logger option to a loader
func WithLogger(logger common.Logger) LoaderBuilderOption {
	return func(l *loader) {
		l.logger = common.LoggerOrNop(logger)
	}
}

// WithValidateOptions is an option builder that sets the rules materials are validated with when added.
//
// Parameters:
//   - opts: the validation options, nil for the defaults
//
// Returns:
//   - LoaderBuilderOption: a function that applies the validation option to a loader
func WithValidateOptions(opts *material.ValidateOptions) LoaderBuilderOption {
	return func(l *loader) {
		l.validateOptions = opts
	}
}

// WithTexture is an option builder that pre-populates the texture cache with a texture.
//
// Parameters:
//   - key: the cache key for the texture
//   - tex: the texture to cache
//
// Returns:
//   - LoaderBuilderOption: a function that applies the texture option to a loader
func WithTexture(key string, tex texture.Texture) LoaderBuilderOption {
	return func(l *loader) {
		l.textureCache[key] = tex
	}
}
