package bind_group_provider

import "errors"

// BufferWrite describes a single buffer write targeting a specific binding
// on a BindGroupProvider at a given byte offset.
type BufferWrite struct {
	Provider BindGroupProvider
	Binding  int
	Offset   uint64
	Data     []byte
}

// ApplyWrites applies each write to its provider. Every write is attempted; failures are joined.
//
// Parameters:
//   - writes: the writes to apply
//
// Returns:
//   - error: the joined errors of the failed writes, or nil
func ApplyWrites(writes ...BufferWrite) error {
	var errs []error
	for _, w := range writes {
		if w.Provider == nil {
			errs = append(errs, errors.New("buffer write without provider"))
			continue
		}
		if err := w.Provider.Write(w); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
