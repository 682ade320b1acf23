package shader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAnnotation(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    *Annotation
		wantErr error
	}{
		{name: "plain wgsl", line: "let x = 1.0;"},
		{name: "plain comment", line: "// just words"},
		{
			name: "include",
			line: "//@oxy:include environment_params",
			want: &Annotation{Type: annotationTypeInclude, Args: []AnnotationArg{AnnotationArgEnvironmentParams}},
		},
		{
			name: "group",
			line: "  //@oxy:group 1 6 storage_uniform params environment_params",
			want: &Annotation{
				Type:    AnnotationTypeBindingGroup,
				Args:    []AnnotationArg{annotationArgStorageTypeUniform, "params", AnnotationArgEnvironmentParams},
				Group:   intPtr(1),
				Binding: intPtr(6),
			},
		},
		{
			name: "provider with role",
			line: "//@oxy:provider 1 5 material bump_map",
			want: &Annotation{
				Type:    AnnotationTypeProvider,
				Args:    []AnnotationArg{AnnotationArgMaterial, AnnotationArgBumpMap},
				Group:   intPtr(1),
				Binding: intPtr(5),
			},
		},
		{
			name: "provider without role",
			line: "//@oxy:provider 0 1 lightmap",
			want: &Annotation{
				Type:    AnnotationTypeProvider,
				Args:    []AnnotationArg{AnnotationArgLightmap},
				Group:   intPtr(0),
				Binding: intPtr(1),
			},
		},
		{name: "empty", line: "//@oxy:", wantErr: ErrMalformedAnnotation},
		{name: "unknown type", line: "//@oxy:define X", wantErr: ErrUnknownAnnotationArg},
		{name: "include arity", line: "//@oxy:include vertex blend", wantErr: ErrMalformedAnnotation},
		{name: "group arity", line: "//@oxy:group 1 6 storage_uniform params", wantErr: ErrMalformedAnnotation},
		{name: "negative binding", line: "//@oxy:provider 0 -1 lightmap", wantErr: ErrMalformedAnnotation},
		{name: "unknown space", line: "//@oxy:group 1 6 push_constant p environment_params", wantErr: ErrUnknownAnnotationArg},
		{name: "unknown identity", line: "//@oxy:provider 0 0 camera", wantErr: ErrUnknownAnnotationArg},
		{name: "unknown role", line: "//@oxy:provider 1 2 material normal_map", wantErr: ErrUnknownAnnotationArg},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseAnnotation(tt.line, 7)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Contains(t, err.Error(), "line 7")
				return
			}
			require.NoError(t, err)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			tt.want.Line = 7
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAnnotationAccessors(t *testing.T) {
	a, err := parseAnnotation("//@oxy:provider 1 1 material base_map", 1)
	require.NoError(t, err)
	assert.Equal(t, AnnotationArgBaseMap, a.Role())
	assert.Empty(t, a.StructType())

	g, err := parseAnnotation("//@oxy:group 1 6 storage_uniform params environment_params", 2)
	require.NoError(t, err)
	assert.Equal(t, AnnotationArgEnvironmentParams, g.StructType())
	assert.Empty(t, g.Role())
}

func TestPreProcessorDeclarationsReset(t *testing.T) {
	pp := NewPreProcessor()
	_, err := pp.Process("//@oxy:provider 0 0 lightmap lightmap_sampler\n//@oxy:provider 0 1 lightmap lightmap_texture")
	require.NoError(t, err)
	assert.Len(t, pp.Declarations(), 2)

	out, err := pp.Process("//@oxy:include vertex\nfn f() {}")
	require.NoError(t, err)
	assert.Empty(t, pp.Declarations())
	assert.Contains(t, out, "struct VertexInput")
	assert.Contains(t, out, "fn f() {}")
}

func intPtr(v int) *int { return &v }
