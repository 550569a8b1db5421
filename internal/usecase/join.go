package usecase

// IndexBy builds a key → record index over one side of an application-level
// join so the other side can be scanned linearly instead of nested. Later
// duplicates of a key are ignored; the first record wins.
func IndexBy[T any](rows []T, key func(T) string) map[string]T {
	index := make(map[string]T, len(rows))
	for _, row := range rows {
		k := key(row)
		if _, exists := index[k]; exists {
			continue
		}
		index[k] = row
	}
	return index
}

// DistinctKeys collects the distinct non-empty keys of rows, preserving first
// occurrence order.
func DistinctKeys[T any](rows []T, key func(T) string) []string {
	seen := make(map[string]bool, len(rows))
	var keys []string
	for _, row := range rows {
		k := key(row)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		keys = append(keys, k)
	}
	return keys
}
