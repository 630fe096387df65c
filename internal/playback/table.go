package playback

import "sort"

// sourceTable is the ownership table of sources keyed by name. It holds
// references to media handles on behalf of the controller; clearing it drops
// every reference so nothing dangles after an unmount.
type sourceTable struct {
	sources map[SourceName]*Source
}

func newSourceTable() *sourceTable {
	return &sourceTable{sources: make(map[SourceName]*Source)}
}

func (t *sourceTable) get(name SourceName) (*Source, bool) {
	s, ok := t.sources[name]
	return s, ok
}

// getOrCreate returns the record for name, creating an empty one if absent.
func (t *sourceTable) getOrCreate(name SourceName) *Source {
	if s, ok := t.sources[name]; ok {
		return s
	}
	s := &Source{Name: name}
	t.sources[name] = s
	return s
}

func (t *sourceTable) delete(name SourceName) {
	delete(t.sources, name)
}

func (t *sourceTable) len() int {
	return len(t.sources)
}

// sorted returns the records ordered by name so fan-outs and views are
// deterministic.
func (t *sourceTable) sorted() []*Source {
	out := make([]*Source, 0, len(t.sources))
	for _, s := range t.sources {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (t *sourceTable) clear() {
	t.sources = make(map[SourceName]*Source)
}
