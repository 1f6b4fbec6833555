// Package index accumulates index entries and renders them into the document
// as a letter-grouped index section.
package index

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Entry is one index key with its nested sub-entries.
type Entry struct {
	Key string
	// SortKey orders and groups entries; it is the upper-cased Key.
	SortKey  string
	ID       string
	Category string
	Children *Set
}

// NewEntry returns an entry for key linking to id, which may be empty.
func NewEntry(key, id string) *Entry {
	return &Entry{Key: key, SortKey: SortKey(key), ID: id, Children: NewSet()}
}

// SortKey returns the locale-independent upper-case form of key.
func SortKey(key string) string {
	return cases.Upper(language.Und).String(key)
}

// Letter returns the group letter of the entry, or "" for an empty key.
func (e *Entry) Letter() string {
	for _, r := range e.SortKey {
		return string(r)
	}
	return ""
}

// Set is an ordered collection of entries, unique by SortKey.
type Set struct {
	entries []*Entry
}

// NewSet returns an empty set.
func NewSet() *Set {
	return &Set{}
}

func (s *Set) search(sortKey string) int {
	return sort.Search(len(s.entries), func(i int) bool {
		return strings.Compare(s.entries[i].SortKey, sortKey) >= 0
	})
}

// Insert adds e unless an entry with the same sort key is present. It returns
// the entry held by the set and whether e was inserted.
func (s *Set) Insert(e *Entry) (*Entry, bool) {
	i := s.search(e.SortKey)
	if i < len(s.entries) && s.entries[i].SortKey == e.SortKey {
		return s.entries[i], false
	}
	s.entries = append(s.entries, nil)
	copy(s.entries[i+1:], s.entries[i:])
	s.entries[i] = e
	return e, true
}

// Find returns the entry whose sort key equals that of key, or nil.
func (s *Set) Find(key string) *Entry {
	sk := SortKey(key)
	i := s.search(sk)
	if i < len(s.entries) && s.entries[i].SortKey == sk {
		return s.entries[i]
	}
	return nil
}

// Entries returns the entries in sort key order.
func (s *Set) Entries() []*Entry {
	return s.entries
}

// Len returns the number of entries.
func (s *Set) Len() int {
	return len(s.entries)
}
