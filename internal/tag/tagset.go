package tag

// Set is an ordered sequence of tags produced by a single module snapshot.
// Lookup by name is linear; sets are expected to stay small (<20 tags),
// matching spec §3.
type Set struct {
	tags []Tag
}

// NewSet builds a Set from the given tags, in order.
func NewSet(tags ...Tag) *Set {
	return &Set{tags: tags}
}

// ForName returns the first tag matching name and true, or the zero Tag
// and false if none matches.
func (s *Set) ForName(name string) (Tag, bool) {
	if s == nil {
		return Tag{}, false
	}
	for _, t := range s.tags {
		if t.Name() == name {
			return t, true
		}
	}
	return Tag{}, false
}

// All returns the set's tags in declaration order. The returned slice
// must not be mutated by the caller.
func (s *Set) All() []Tag {
	if s == nil {
		return nil
	}
	return s.tags
}

// Destroy releases the set's tags. Tags carry no external resources today,
// but Destroy exists so modules have a single place to retire a snapshot
// if a future tag kind acquires one (spec §3's tag-set ownership model).
func (s *Set) Destroy() {
	if s == nil {
		return
	}
	s.tags = nil
}
