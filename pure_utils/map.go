package pure_utils

// Map applies f to every element of src, keeping the order.
func Map[T, U any](src []T, f func(T) U) []U {
	us := make([]U, len(src))
	for i, t := range src {
		us[i] = f(t)
	}
	return us
}
