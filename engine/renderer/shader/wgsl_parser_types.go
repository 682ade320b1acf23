package shader

import "github.com/cogentcore/webgpu/wgpu"

// vertexFormatInfo is a wgpu vertex format and the bytes one attribute occupies.
type vertexFormatInfo struct {
	format wgpu.VertexFormat
	size   uint64
}

// typeLayout is the size and alignment of a host-shareable WGSL type.
type typeLayout struct {
	size  uint64
	align uint64
}

type wgslField struct {
	name     string
	typeName string
	location int // -1 without @location
	builtin  bool
}

type wgslStruct struct {
	name   string
	fields []wgslField
}

// bindingDecl is one "@group(g) @binding(b) var<space> name: type;" line.
type bindingDecl struct {
	group        int
	binding      int
	addressSpace string
	name         string
	typeName     string
}
