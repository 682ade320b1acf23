package material

import (
	"errors"
	"fmt"
	"math"
)

// IssueLevel represents severity of validation issue.
type IssueLevel string

const (
	// IssueError indicates a validation error. Loaders reject materials with error-level issues.
	IssueError IssueLevel = "error"
	// IssueWarning indicates a validation warning.
	IssueWarning IssueLevel = "warning"
)

// Issue codes reported by Validate.
const (
	CodeInvalidScale      = "invalid_scale"
	CodeInvalidColor      = "invalid_color"
	CodeUnknownBlendMode  = "unknown_blend_mode"
	CodeReservedFlags     = "reserved_flags"
	CodeMissingTexture    = "missing_texture"
	CodeCutoutWithoutBump = "cutout_without_bump"
)

// Issue represents a validation issue.
type Issue struct {
	Level   IssueLevel `json:"level" yaml:"level"`                   // Severity level
	Code    string     `json:"code,omitempty" yaml:"code,omitempty"` // Machine-readable code
	Message string     `json:"message" yaml:"message"`               // Issue message
	Path    string     `json:"path,omitempty" yaml:"path,omitempty"` // Material name or affected field
}

func (i Issue) String() string {
	if i.Path == "" {
		return fmt.Sprintf("%s: %s", i.Level, i.Message)
	}
	return fmt.Sprintf("%s: %s (%s)", i.Level, i.Message, i.Path)
}

// ValidateOptions controls validation rules.
type ValidateOptions struct {
	// StrictBlendModes reports unrecognized blend codes as errors instead of warnings.
	// Without it such materials load and their detail layers evaluate to transparent black.
	StrictBlendModes bool
	// DisableMissingTextureCheck silences warnings about roles that fall back to default textures.
	DisableMissingTextureCheck bool
}

// normalize normalizes the ValidateOptions.
func (o *ValidateOptions) normalize() ValidateOptions {
	if o == nil {
		return ValidateOptions{}
	}

	return *o
}

// Validate validates a material and returns issues.
//
// Parameters:
//   - m: the material to check
//   - opt: validation options, nil for the defaults
//
// Returns:
//   - []Issue: the issues found, empty for a clean material
func Validate(m Material, opt *ValidateOptions) []Issue {
	vopt := opt.normalize()
	var out []Issue

	if !vopt.DisableMissingTextureCheck {
		for _, role := range m.Type().Roles() {
			if !m.HasTexture(role) {
				out = append(out, Issue{Level: IssueWarning, Code: CodeMissingTexture,
					Message: fmt.Sprintf("%s not bound, using default texture", role), Path: m.Name()})
			}
		}
	}

	if m.Type() == TypeSolidColor {
		c := m.SolidColor()
		for i, v := range c.Color {
			f := float64(v)
			if math.IsNaN(f) || math.IsInf(f, 0) {
				out = append(out, Issue{Level: IssueError, Code: CodeInvalidColor,
					Message: fmt.Sprintf("color channel %d must be finite, got %g", i, f), Path: m.Name()})
			}
		}
		return out
	}
	if m.Type() != TypeShaderEnvironment {
		return out
	}

	p := m.Params()
	scales := []struct {
		field string
		value float32
	}{
		{"bump_map_scale", p.BumpMapScale},
		{"primary_detail_map_scale", p.PrimaryDetailMapScale},
		{"secondary_detail_map_scale", p.SecondaryDetailMapScale},
		{"micro_detail_map_scale", p.MicroDetailMapScale},
	}
	for _, s := range scales {
		v := float64(s.value)
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			out = append(out, Issue{Level: IssueError, Code: CodeInvalidScale,
				Message: fmt.Sprintf("%s must be a positive finite number, got %g", s.field, v), Path: m.Name()})
		}
	}

	blendLevel := IssueWarning
	if vopt.StrictBlendModes {
		blendLevel = IssueError
	}
	modes := []struct {
		field string
		mode  BlendMode
	}{
		{"detail_map_function", p.DetailMapFunction},
		{"micro_detail_map_function", p.MicroDetailMapFunction},
	}
	for _, f := range modes {
		if !f.mode.Valid() {
			out = append(out, Issue{Level: blendLevel, Code: CodeUnknownBlendMode,
				Message: fmt.Sprintf("%s has unrecognized code %d", f.field, uint32(f.mode)), Path: m.Name()})
		}
	}

	if reserved := p.Flags &^ flagsKnown; reserved != 0 {
		out = append(out, Issue{Level: IssueWarning, Code: CodeReservedFlags,
			Message: fmt.Sprintf("reserved flag bits %#x are set and ignored", reserved), Path: m.Name()})
	}

	if p.AlphaTested() && !m.HasTexture(RoleBumpMap) {
		out = append(out, Issue{Level: IssueWarning, Code: CodeCutoutWithoutBump,
			Message: "alpha tested without a bump map, only the base map alpha drives the cutout", Path: m.Name()})
	}

	return out
}

// ValidateStrict validates a material and converts its error-level issues into an error.
//
// Parameters:
//   - m: the material to check
//   - opt: validation options, nil for the defaults
//
// Returns:
//   - []Issue: every issue found, warnings included
//   - error: an error wrapping ErrInvalidMaterial and each error-level issue, or nil
func ValidateStrict(m Material, opt *ValidateOptions) ([]Issue, error) {
	issues := Validate(m, opt)
	var errs []error
	for _, it := range issues {
		if it.Level == IssueError {
			errs = append(errs, errors.New(it.String()))
		}
	}
	if len(errs) == 0 {
		return issues, nil
	}
	return issues, fmt.Errorf("material %q: %w: %w", m.Name(), ErrInvalidMaterial, errors.Join(errs...))
}
