package loader

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// yamlLoaderBackendImpl is the implementation of yamlLoaderBackend.
type yamlLoaderBackendImpl struct {
	strict bool
}

// yamlLoaderBackend is a loaderBackend implementation for YAML material definitions.
type yamlLoaderBackend interface {
	loaderBackend
}

var _ yamlLoaderBackend = &yamlLoaderBackendImpl{}

// newYAMLLoaderBackend creates a new YAML loader backend. Unknown keys are rejected.
//
// Returns:
//   - yamlLoaderBackend: the loader backend for .yaml/.yml files
func newYAMLLoaderBackend() yamlLoaderBackend {
	return &yamlLoaderBackendImpl{strict: true}
}

func (b *yamlLoaderBackendImpl) Decode(r io.Reader) (*MaterialDefinition, error) {
	def := DefaultMaterialDefinition()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(b.strict)
	if err := dec.Decode(&def); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty material definition")
		}
		return nil, fmt.Errorf("yaml: %w", err)
	}
	return &def, nil
}
