package series

import (
	"slices"
)

// Index maps a group key to that group's store
type Index struct {
	stores map[string]*Store
}

// NewIndex creates an empty index
func NewIndex() *Index {
	return &Index{stores: make(map[string]*Store)}
}

// Replay builds an index from the aggregate store's records in their current
// order, creating a group's store on first sight. It is meant to run on the
// raw per-event records, before the aggregate is merged, so every
// contributing record reaches its group.
func Replay(aggregate *Store) *Index {
	idx := NewIndex()
	for _, r := range aggregate.records {
		idx.Add(r)
	}
	return idx
}

// Add appends r to the store for r.Group
func (idx *Index) Add(r Record) {
	store, ok := idx.stores[r.Group]
	if !ok {
		store = NewStore(r.Group)
		idx.stores[r.Group] = store
	}
	store.AddRecord(r)
}

// Store returns the store for group, if any
func (idx *Index) Store(group string) (*Store, bool) {
	store, ok := idx.stores[group]
	return store, ok
}

// Names returns the group keys in sorted order
func (idx *Index) Names() []string {
	names := make([]string, 0, len(idx.stores))
	for name := range idx.stores {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Stores returns the group stores ordered by name
func (idx *Index) Stores() []*Store {
	names := idx.Names()
	stores := make([]*Store, len(names))
	for i, name := range names {
		stores[i] = idx.stores[name]
	}
	return stores
}

// Len returns the number of groups
func (idx *Index) Len() int {
	return len(idx.stores)
}

// SortAll sorts every group store by time
func (idx *Index) SortAll() {
	for _, store := range idx.stores {
		store.SortByTime()
	}
}
