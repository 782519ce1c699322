package ref

import (
	"fmt"

	"dexkit/internal/opcode"
)

// Pool is an in-memory reference table per kind. It implements Resolver,
// Interner and StringIndexer, assigning indices in insertion order.
//
// A Pool is not safe for concurrent mutation; once populated it may be read
// from many goroutines.
type Pool struct {
	items map[opcode.ReferenceKind][]Reference
	index map[string]uint32
}

func NewPool() *Pool {
	return &Pool{
		items: make(map[opcode.ReferenceKind][]Reference),
		index: make(map[string]uint32),
	}
}

// Intern returns the index of r, adding it when missing.
func (p *Pool) Intern(r Reference) (uint32, error) {
	if r == nil {
		return 0, fmt.Errorf("ref: intern nil reference")
	}
	k := Key(r)
	if idx, ok := p.index[k]; ok {
		return idx, nil
	}
	kind := r.Kind()
	idx := uint32(len(p.items[kind]))
	p.items[kind] = append(p.items[kind], r)
	p.index[k] = idx
	return idx, nil
}

// MustIntern is Intern for callers that only pass non-nil references.
func (p *Pool) MustIntern(r Reference) uint32 {
	idx, err := p.Intern(r)
	if err != nil {
		panic(err)
	}
	return idx
}

// Resolve returns the item at index for kind.
func (p *Pool) Resolve(kind opcode.ReferenceKind, index uint32) (Reference, error) {
	items := p.items[kind]
	if int64(index) >= int64(len(items)) {
		return nil, fmt.Errorf("%w: %s@%d (pool has %d)", ErrIndexOutOfRange, kind, index, len(items))
	}
	return items[index], nil
}

// Lookup returns the index of r without adding it.
func (p *Pool) Lookup(r Reference) (uint32, bool) {
	idx, ok := p.index[Key(r)]
	return idx, ok
}

// StringIndex implements StringIndexer.
func (p *Pool) StringIndex(s string) (uint32, bool) {
	return p.Lookup(String(s))
}

// Len returns the number of items of a kind.
func (p *Pool) Len(kind opcode.ReferenceKind) int { return len(p.items[kind]) }

// Items returns the items of a kind in index order.
func (p *Pool) Items(kind opcode.ReferenceKind) []Reference {
	return append([]Reference(nil), p.items[kind]...)
}
