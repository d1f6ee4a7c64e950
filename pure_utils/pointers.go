package pure_utils

// NilIfEmpty returns nil for an empty string, a pointer to s otherwise.
func NilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
