package playback

import "sort"

// SelectPrimary returns the source that drives the shared timeline: the one
// with the longest duration. Equal durations are broken by ascending name so
// the election is deterministic. A single source is primary by definition.
// An empty input yields "".
func SelectPrimary(sources []*Source) SourceName {
	switch len(sources) {
	case 0:
		return ""
	case 1:
		return sources[0].Name
	}

	ranked := make([]*Source, len(sources))
	copy(ranked, sources)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Duration != ranked[j].Duration {
			return ranked[i].Duration > ranked[j].Duration
		}
		return ranked[i].Name < ranked[j].Name
	})
	return ranked[0].Name
}
