package shader

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-envmat/engine/renderer/material"
)

//go:embed assets/vertex.wgsl
var GPUVertexSource string

// registryEntry pairs an embedded WGSL block with the type name generated
// declarations refer to. Type is empty for include-only blocks such as helper functions.
type registryEntry struct {
	Source string
	Type   string
}

type preProcessor struct {
	structRegistry       map[AnnotationArg]registryEntry
	addressSpaceRegistry map[AnnotationArg]string
	declarations         []Annotation
}

// PreProcessor expands @oxy: annotations in WGSL source and records the
// group and provider declarations it met along the way.
type PreProcessor interface {
	// Process rewrites source with every annotation expanded. Declarations from a
	// previous call are discarded.
	//
	// Parameters:
	//   - source: raw WGSL with @oxy: annotations
	//
	// Returns:
	//   - string: WGSL ready for parsing or compilation
	//   - error: a line-numbered error for malformed or unknown annotations
	Process(source string) (string, error)

	// Declarations returns the group and provider annotations of the last Process call
	// in source order.
	//
	// Returns:
	//   - []Annotation: the collected declarations
	Declarations() []Annotation
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor returns a PreProcessor with the compositor's WGSL blocks registered.
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor
func NewPreProcessor() PreProcessor {
	return &preProcessor{
		structRegistry: map[AnnotationArg]registryEntry{
			AnnotationArgEnvironmentParams: {Source: material.GPUEnvironmentParamsSource, Type: "EnvironmentParams"},
			AnnotationArgSolidColor:        {Source: material.GPUSolidColorSource, Type: "SolidColor"},
			annotationArgBlend:             {Source: material.BlendSource},
			annotationArgVertex:            {Source: GPUVertexSource, Type: "VertexInput"},
		},
		addressSpaceRegistry: map[AnnotationArg]string{
			annotationArgStorageTypeUniform: "var<uniform>",
			annotationArgStorageTypeRead:    "var<storage, read>",
		},
	}
}

func (p *preProcessor) Process(source string) (string, error) {
	p.declarations = nil

	lines := strings.Split(source, "\n")
	var sb strings.Builder
	sb.Grow(len(source))

	for i, line := range lines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		a, err := parseAnnotation(line, i+1)
		if err != nil {
			return "", err
		}
		if a == nil {
			sb.WriteString(line)
			continue
		}

		switch a.Type {
		case annotationTypeInclude:
			sb.WriteString(p.structRegistry[a.Args[0]].Source)
		case AnnotationTypeBindingGroup:
			entry := p.structRegistry[a.StructType()]
			if entry.Type == "" {
				return "", fmt.Errorf("line %d: %w: %q has no bindable type", a.Line, ErrUnknownAnnotationArg, a.StructType())
			}
			fmt.Fprintf(&sb, "@group(%d) @binding(%d) %s %s: %s;",
				*a.Group, *a.Binding, p.addressSpaceRegistry[a.Args[0]], a.Args[1], entry.Type)
			p.declarations = append(p.declarations, *a)
		case AnnotationTypeProvider:
			sb.WriteString(line)
			p.declarations = append(p.declarations, *a)
		}
	}
	return sb.String(), nil
}

func (p *preProcessor) Declarations() []Annotation {
	return p.declarations
}
