package pipeline

// StableOrder merges the previously persisted display order with the
// latest set of identity keys. Keys still present keep their relative
// position, keys that disappeared are dropped, and new keys append at the
// end in computation order. On the first run the latest order is taken
// as-is. The caller stores the returned slice for the next cycle.
func StableOrder(previous, latest []string) []string {
	if len(previous) == 0 {
		out := make([]string, len(latest))
		copy(out, latest)
		return out
	}

	current := make(map[string]bool, len(latest))
	for _, key := range latest {
		current[key] = true
	}

	out := make([]string, 0, len(latest))
	kept := make(map[string]bool, len(previous))
	for _, key := range previous {
		if current[key] && !kept[key] {
			kept[key] = true
			out = append(out, key)
		}
	}
	for _, key := range latest {
		if !kept[key] {
			kept[key] = true
			out = append(out, key)
		}
	}
	return out
}
