package valueprovider

import (
	"sort"
	"strings"
)

// PrefixContainer answers prefix queries over a fixed set of keys.
// Matching is case-insensitive.
type PrefixContainer struct {
	keys  []string
	lower []string
}

// NewPrefixContainer indexes keys. Duplicates are kept once.
func NewPrefixContainer(keys []string) *PrefixContainer {
	seen := make(map[string]struct{}, len(keys))
	pc := &PrefixContainer{
		keys:  make([]string, 0, len(keys)),
		lower: make([]string, 0, len(keys)),
	}
	for _, k := range keys {
		lk := strings.ToLower(k)
		if _, ok := seen[lk]; ok {
			continue
		}
		seen[lk] = struct{}{}
		pc.keys = append(pc.keys, k)
		pc.lower = append(pc.lower, lk)
	}
	sort.Sort(byLower{pc})
	return pc
}

type byLower struct{ pc *PrefixContainer }

func (b byLower) Len() int           { return len(b.pc.keys) }
func (b byLower) Less(i, j int) bool { return b.pc.lower[i] < b.pc.lower[j] }
func (b byLower) Swap(i, j int) {
	b.pc.keys[i], b.pc.keys[j] = b.pc.keys[j], b.pc.keys[i]
	b.pc.lower[i], b.pc.lower[j] = b.pc.lower[j], b.pc.lower[i]
}

// Len returns the number of distinct keys.
func (pc *PrefixContainer) Len() int {
	return len(pc.keys)
}

// ContainsPrefix reports whether a key equals prefix or continues it with '.' or '['.
func (pc *PrefixContainer) ContainsPrefix(prefix string) bool {
	if prefix == "" {
		return len(pc.keys) > 0
	}
	lp := strings.ToLower(prefix)
	for i := pc.search(lp); i < len(pc.lower) && strings.HasPrefix(pc.lower[i], lp); i++ {
		if len(pc.lower[i]) == len(lp) {
			return true
		}
		switch pc.lower[i][len(lp)] {
		case '.', '[':
			return true
		}
	}
	return false
}

// GetKeysFromPrefix returns the first path segment of every key below prefix,
// mapped to the full key of that segment. For the empty prefix the first
// segment of every key is returned; a leading indexer ("[0].Name") yields "0".
func (pc *PrefixContainer) GetKeysFromPrefix(prefix string) map[string]string {
	result := make(map[string]string)
	if prefix == "" {
		for _, key := range pc.keys {
			if strings.HasPrefix(key, "[") {
				end := strings.IndexByte(key, ']')
				if end < 0 {
					continue
				}
				segment := key[1:end]
				addKey(result, segment, key[:end+1])
				continue
			}
			segment := key
			if idx := strings.IndexAny(key, ".["); idx >= 0 {
				segment = key[:idx]
			}
			addKey(result, segment, segment)
		}
		return result
	}

	lp := strings.ToLower(prefix)
	for i := pc.search(lp); i < len(pc.lower) && strings.HasPrefix(pc.lower[i], lp); i++ {
		key := pc.keys[i]
		if len(key) <= len(prefix) || !strings.EqualFold(key[:len(prefix)], prefix) {
			continue
		}
		rest := key[len(prefix)+1:]
		switch key[len(prefix)] {
		case '[':
			end := strings.IndexByte(rest, ']')
			if end < 0 {
				continue
			}
			segment := rest[:end]
			addKey(result, segment, prefix+"["+segment+"]")
		case '.':
			segment := rest
			if idx := strings.IndexAny(rest, ".["); idx >= 0 {
				segment = rest[:idx]
			}
			addKey(result, segment, prefix+"."+segment)
		}
	}
	return result
}

func (pc *PrefixContainer) search(lowerPrefix string) int {
	return sort.SearchStrings(pc.lower, lowerPrefix)
}

// addKey keeps the first full name seen for a segment.
func addKey(result map[string]string, segment, fullName string) {
	if _, ok := result[segment]; !ok {
		result[segment] = fullName
	}
}
