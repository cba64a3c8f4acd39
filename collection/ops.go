package collection

// Partition reorders buf in place so that every element for which predicate is false precedes
// every element for which it is true, and returns the index of the first true element.
func Partition[T any](buf []T, predicate func(T) bool) int {
	i, j := 0, len(buf)-1
	for i <= j {
		for i <= j && !predicate(buf[i]) {
			i++
		}
		for i <= j && predicate(buf[j]) {
			j--
		}
		if i < j {
			buf[i], buf[j] = buf[j], buf[i]
		}
	}
	return i
}
