package loader

import (
	"io"
)

// loaderBackend decodes material definitions from a specific file format.
type loaderBackend interface {
	// Decode reads one material definition. Fields missing from the source keep
	// the values of DefaultMaterialDefinition.
	//
	// Parameters:
	//   - r: the reader providing the encoded definition
	//
	// Returns:
	//   - *MaterialDefinition: the decoded definition
	//   - error: error if decoding fails
	Decode(r io.Reader) (*MaterialDefinition, error)
}
