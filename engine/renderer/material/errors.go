package material

import "errors"

var (
	// ErrShortParamsBuffer indicates a uniform buffer smaller than the block decoded from it.
	ErrShortParamsBuffer = errors.New("parameter block buffer too short")

	// ErrUnknownBlendMode indicates a blend mode name or code outside the recognized set.
	ErrUnknownBlendMode = errors.New("unknown blend mode")

	// ErrUnknownMaterialType indicates a material type name that is not recognized.
	ErrUnknownMaterialType = errors.New("unknown material type")

	// ErrInvalidMaterial indicates a material rejected by validation.
	ErrInvalidMaterial = errors.New("invalid material")
)
