// annotations.go defines the @oxy: comment annotations understood by the WGSL
// pre-processor. An annotation is a single "//@oxy:" line that either injects a
// registered struct, generates a buffer binding declaration, or tags a hand-written
// texture/sampler binding with the resource provider and role that feeds it.
package shader

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

const annotationPrefix = "@oxy:"

var (
	// ErrMalformedAnnotation is returned when an @oxy: line has the wrong shape.
	ErrMalformedAnnotation = errors.New("malformed annotation")

	// ErrUnknownAnnotationArg is returned when an @oxy: line names an unregistered argument.
	ErrUnknownAnnotationArg = errors.New("unknown annotation argument")
)

// AnnotationType identifies the kind of annotation parsed from a WGSL comment line.
type AnnotationType string

const (
	// annotationTypeInclude pastes a registered WGSL source block at the annotation site.
	//
	// Syntax: //@oxy:include <struct_type>
	annotationTypeInclude AnnotationType = "include"

	// AnnotationTypeBindingGroup generates a buffer binding for a registered struct and
	// records a declaration for it.
	//
	// Syntax: //@oxy:group <group> <binding> <address_space> <var_name> <struct_type>
	AnnotationTypeBindingGroup AnnotationType = "group"

	// AnnotationTypeProvider records which provider (and optionally which role within
	// that provider) feeds the hand-written binding below it. No WGSL is emitted.
	//
	// Syntax: //@oxy:provider <group> <binding> <provider_identity> [binding_role]
	AnnotationTypeProvider AnnotationType = "provider"
)

// AnnotationArg is a single validated argument of an annotation.
type AnnotationArg string

// Struct types.
const (
	AnnotationArgEnvironmentParams AnnotationArg = "environment_params"
	AnnotationArgSolidColor        AnnotationArg = "solid_color"
	annotationArgBlend             AnnotationArg = "blend"
	annotationArgVertex            AnnotationArg = "vertex"
)

// Address spaces.
const (
	annotationArgStorageTypeUniform AnnotationArg = "storage_uniform"
	annotationArgStorageTypeRead    AnnotationArg = "storage_read"
)

// Provider identities.
const (
	// AnnotationArgLightmap is the per-draw lightmap group shared by every material type.
	AnnotationArgLightmap AnnotationArg = "lightmap"

	// AnnotationArgMaterial is the per-material group holding maps, sampler and parameters.
	AnnotationArgMaterial AnnotationArg = "material"
)

// Binding roles. Material map roles share their spelling with material.TextureRole.
const (
	AnnotationArgLightmapSampler    AnnotationArg = "lightmap_sampler"
	AnnotationArgLightmapTexture    AnnotationArg = "lightmap_texture"
	AnnotationArgMaterialSampler    AnnotationArg = "material_sampler"
	AnnotationArgBaseMap            AnnotationArg = "base_map"
	AnnotationArgPrimaryDetailMap   AnnotationArg = "primary_detail_map"
	AnnotationArgSecondaryDetailMap AnnotationArg = "secondary_detail_map"
	AnnotationArgMicroDetailMap     AnnotationArg = "micro_detail_map"
	AnnotationArgBumpMap            AnnotationArg = "bump_map"
)

var validStructTypes = []AnnotationArg{
	AnnotationArgEnvironmentParams,
	AnnotationArgSolidColor,
	annotationArgBlend,
	annotationArgVertex,
}

var validAddressSpaces = []AnnotationArg{
	annotationArgStorageTypeUniform,
	annotationArgStorageTypeRead,
}

var validProviderIdentities = []AnnotationArg{
	AnnotationArgLightmap,
	AnnotationArgMaterial,
}

var validBindingRoles = []AnnotationArg{
	AnnotationArgLightmapSampler,
	AnnotationArgLightmapTexture,
	AnnotationArgMaterialSampler,
	AnnotationArgBaseMap,
	AnnotationArgPrimaryDetailMap,
	AnnotationArgSecondaryDetailMap,
	AnnotationArgMicroDetailMap,
	AnnotationArgBumpMap,
}

// Annotation is one parsed @oxy: line.
//
// Args layout by type:
//   - include:  [struct_type]
//   - group:    [address_space, var_name, struct_type]
//   - provider: [provider_identity] or [provider_identity, binding_role]
type Annotation struct {
	Type    AnnotationType
	Args    []AnnotationArg
	Line    int
	Group   *int
	Binding *int
}

// Role returns the binding role of a provider annotation, or "" when none was given.
func (a Annotation) Role() AnnotationArg {
	if a.Type != AnnotationTypeProvider || len(a.Args) < 2 {
		return ""
	}
	return a.Args[1]
}

// StructType returns the struct argument of a group annotation, or "" for other types.
func (a Annotation) StructType() AnnotationArg {
	if a.Type != AnnotationTypeBindingGroup || len(a.Args) < 3 {
		return ""
	}
	return a.Args[2]
}

// parseAnnotation parses a single WGSL line. Lines without the @oxy: prefix
// yield (nil, nil).
func parseAnnotation(line string, lineNum int) (*Annotation, error) {
	_, body, ok := strings.Cut(strings.TrimSpace(line), annotationPrefix)
	if !ok {
		return nil, nil
	}
	fields := strings.Fields(body)
	if len(fields) == 0 {
		return nil, fmt.Errorf("line %d: %w: empty @oxy annotation", lineNum, ErrMalformedAnnotation)
	}

	a := &Annotation{Type: AnnotationType(fields[0]), Line: lineNum}
	args := fields[1:]

	var err error
	switch a.Type {
	case annotationTypeInclude:
		err = a.parseInclude(args)
	case AnnotationTypeBindingGroup:
		err = a.parseGroup(args)
	case AnnotationTypeProvider:
		err = a.parseProvider(args)
	default:
		err = fmt.Errorf("%w: annotation type %q", ErrUnknownAnnotationArg, fields[0])
	}
	if err != nil {
		return nil, fmt.Errorf("line %d: %w", lineNum, err)
	}
	return a, nil
}

func (a *Annotation) parseInclude(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: include takes exactly one struct type", ErrMalformedAnnotation)
	}
	arg, err := expectArg(args[0], validStructTypes, "struct type")
	if err != nil {
		return err
	}
	a.Args = []AnnotationArg{arg}
	return nil
}

func (a *Annotation) parseGroup(args []string) error {
	if len(args) != 5 {
		return fmt.Errorf("%w: group takes <group> <binding> <address_space> <var_name> <struct_type>", ErrMalformedAnnotation)
	}
	if err := a.parseSlot(args[0], args[1]); err != nil {
		return err
	}
	space, err := expectArg(args[2], validAddressSpaces, "address space")
	if err != nil {
		return err
	}
	typ, err := expectArg(args[4], validStructTypes, "struct type")
	if err != nil {
		return err
	}
	a.Args = []AnnotationArg{space, AnnotationArg(args[3]), typ}
	return nil
}

func (a *Annotation) parseProvider(args []string) error {
	if len(args) < 3 || len(args) > 4 {
		return fmt.Errorf("%w: provider takes <group> <binding> <identity> [role]", ErrMalformedAnnotation)
	}
	if err := a.parseSlot(args[0], args[1]); err != nil {
		return err
	}
	identity, err := expectArg(args[2], validProviderIdentities, "provider identity")
	if err != nil {
		return err
	}
	a.Args = []AnnotationArg{identity}
	if len(args) == 4 {
		role, err := expectArg(args[3], validBindingRoles, "binding role")
		if err != nil {
			return err
		}
		a.Args = append(a.Args, role)
	}
	return nil
}

func (a *Annotation) parseSlot(group, binding string) error {
	g, err := strconv.Atoi(group)
	if err != nil || g < 0 {
		return fmt.Errorf("%w: bad group index %q", ErrMalformedAnnotation, group)
	}
	b, err := strconv.Atoi(binding)
	if err != nil || b < 0 {
		return fmt.Errorf("%w: bad binding index %q", ErrMalformedAnnotation, binding)
	}
	a.Group, a.Binding = &g, &b
	return nil
}

func expectArg(s string, valid []AnnotationArg, what string) (AnnotationArg, error) {
	arg := AnnotationArg(s)
	if !slices.Contains(valid, arg) {
		return "", fmt.Errorf("%w: %s %q", ErrUnknownAnnotationArg, what, s)
	}
	return arg, nil
}
