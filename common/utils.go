package common

// Coalesce picks the first argument that is not its type's zero value, such as a
// configured name over a derived default. It returns the zero value when every argument is zero.
//
// Parameters:
//   - candidates: the values in order of preference
//
// Returns:
//   - T: the preferred non-zero value
func Coalesce[T comparable](candidates ...T) T {
	var zero T
	for _, c := range candidates {
		if c != zero {
			return c
		}
	}
	return zero
}
