// Package dedup tracks which (company, title) positions a run has
// already emitted.
package dedup

import (
	"strings"
	"sync"

	"golang.org/x/text/cases"
)

type Key struct {
	Company string
	Title   string
}

// MakeKey case-folds both parts and collapses whitespace.
func MakeKey(company, title string) Key {
	return Key{Company: normalize(company), Title: normalize(title)}
}

func normalize(s string) string {
	return cases.Fold().String(strings.Join(strings.Fields(s), " "))
}

// Deduplicator is the seen-set of one run. Keys move from unseen to seen;
// only Forget moves one back. Safe for concurrent use.
type Deduplicator struct {
	mu   sync.Mutex
	seen map[Key]struct{}
}

func New() *Deduplicator {
	return &Deduplicator{seen: make(map[Key]struct{})}
}

// Seed marks keys from an earlier export as seen before the run starts.
func (d *Deduplicator) Seed(keys []Key) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, k := range keys {
		d.seen[MakeKey(k.Company, k.Title)] = struct{}{}
	}
}

func (d *Deduplicator) IsDuplicate(company, title string) bool {
	k := MakeKey(company, title)
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.seen[k]
	return ok
}

func (d *Deduplicator) MarkSeen(company, title string) {
	k := MakeKey(company, title)
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seen[k] = struct{}{}
}

// CheckAndMark reports whether the key was already seen and marks it.
func (d *Deduplicator) CheckAndMark(company, title string) (dup bool) {
	k := MakeKey(company, title)
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.seen[k]; ok {
		return true
	}
	d.seen[k] = struct{}{}
	return false
}

// Forget unmarks a key whose position could not be stored.
func (d *Deduplicator) Forget(company, title string) {
	k := MakeKey(company, title)
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.seen, k)
}

func (d *Deduplicator) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}
