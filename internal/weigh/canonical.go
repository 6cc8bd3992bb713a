package weigh

import "strings"

// CanonicalContainerID trims and capitalizes a container identifier so the
// same normalization applies on both write and lookup.
func CanonicalContainerID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

// CanonicalContainers canonicalizes every id in ids, in order, dropping any
// that canonicalize to empty.
func CanonicalContainers(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		c := CanonicalContainerID(id)
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}

// JoinContainers renders a canonical container list as the legacy
// comma-joined wire/storage format.
func JoinContainers(ids []string) string {
	return strings.Join(ids, ",")
}

// SplitContainers parses the legacy comma-joined format back into a
// canonical id slice.
func SplitContainers(joined string) []string {
	if strings.TrimSpace(joined) == "" {
		return nil
	}
	parts := strings.Split(joined, ",")
	return CanonicalContainers(parts)
}

// ContainersEqual compares two container lists by their canonical
// comma-joined form, per the byte-comparison rule the out-flow mismatch
// check uses.
func ContainersEqual(a, b []string) bool {
	return JoinContainers(CanonicalContainers(a)) == JoinContainers(CanonicalContainers(b))
}

// ContainsContainer reports whether id (already canonical or not) appears
// in containers.
func ContainsContainer(containers []string, id string) bool {
	target := CanonicalContainerID(id)
	for _, c := range containers {
		if c == target {
			return true
		}
	}
	return false
}
