// Package batching groups render views into GPU index ranges keyed by
// geometry kind and material hash.
package batching

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"geoview/internal/logging"
	"geoview/internal/renderview"
)

// ErrInvariant is wrapped by Validate when the registry layout is broken.
var ErrInvariant = errors.New("batching: invariant violated")

// Batch is a snapshot of one batch: every member shares Kind and Hash and
// occupies [Start, Start+Count) of the kind's shared index buffer.
type Batch struct {
	ID      string
	Kind    renderview.GeometryType
	Hash    int32
	Start   int
	Count   int
	Members []*renderview.RenderView
}

// BatchHandle identifies the slot a render view was placed in.
type BatchHandle struct {
	BatchID   string
	Kind      renderview.GeometryType
	Hash      int32
	Placement renderview.Placement
}

type batchKey struct {
	kind renderview.GeometryType
	hash int32
}

// BatchID formats the identity of the (kind, hash) batch.
func BatchID(kind renderview.GeometryType, hash int32) string {
	return fmt.Sprintf("%s:%08x", kind, uint32(hash))
}

// Registry is the sole writer of render view placements. One mutex
// serialises all mutations so readers never see a batch mid-reassignment.
type Registry struct {
	mu       sync.Mutex
	batches  map[batchKey]*Batch
	byID     map[string]*Batch
	order    map[renderview.GeometryType][]*Batch
	owner    map[*renderview.RenderView]*Batch
	versions map[renderview.GeometryType]uint64
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		batches:  make(map[batchKey]*Batch),
		byID:     make(map[string]*Batch),
		order:    make(map[renderview.GeometryType][]*Batch),
		owner:    make(map[*renderview.RenderView]*Batch),
		versions: make(map[renderview.GeometryType]uint64),
	}
}

// Place puts rv into the batch for its (kind, hash), creating the batch if
// needed, and writes the placement onto rv. Placing an already registered
// view under the same key is a no-op; under a different key it moves.
func (r *Registry) Place(rv *renderview.RenderView) BatchHandle {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.placeLocked(rv)
}

// Remove takes rv out of its batch and clears its placement. The batch is
// destroyed when rv was its last member. Unknown views are ignored.
func (r *Registry) Remove(rv *renderview.RenderView) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeLocked(rv)
}

// Reclassify replaces old with next (normally next = old.WithAppearance(...))
// in one step. Passing the same view for both re-places it under its
// current hash.
func (r *Registry) Reclassify(old, next *renderview.RenderView) BatchHandle {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeLocked(old)
	return r.placeLocked(next)
}

func (r *Registry) placeLocked(rv *renderview.RenderView) BatchHandle {
	key := batchKey{kind: rv.GeometryType(), hash: rv.MaterialHash()}
	if cur, ok := r.owner[rv]; ok {
		if cur.Kind == key.kind && cur.Hash == key.hash {
			return r.handle(cur, rv)
		}
		r.removeLocked(rv)
	}

	b, ok := r.batches[key]
	if !ok {
		b = &Batch{ID: BatchID(key.kind, key.hash), Kind: key.kind, Hash: key.hash}
		kindBatches := r.order[key.kind]
		if n := len(kindBatches); n > 0 {
			last := kindBatches[n-1]
			b.Start = last.Start + last.Count
		}
		r.batches[key] = b
		r.byID[b.ID] = b
		r.order[key.kind] = append(kindBatches, b)
		logging.Logger().Debug("batch created", "id", b.ID)
	}

	n := rv.IndexCount()
	b.Members = append(b.Members, rv)
	r.owner[rv] = b

	kindBatches := r.order[key.kind]
	if kindBatches[len(kindBatches)-1] == b {
		// Tail batch: grow in place, nothing after it moves.
		rv.SetPlacement(renderview.Placement{BatchID: b.ID, Start: b.Start + b.Count, Count: n})
		b.Count += n
	} else {
		r.relayout(key.kind, slices.Index(kindBatches, b))
	}
	r.versions[key.kind]++
	return r.handle(b, rv)
}

func (r *Registry) removeLocked(rv *renderview.RenderView) {
	b, ok := r.owner[rv]
	if !ok {
		return
	}
	delete(r.owner, rv)
	rv.ClearPlacement()
	b.Members = slices.DeleteFunc(b.Members, func(m *renderview.RenderView) bool { return m == rv })

	kindBatches := r.order[b.Kind]
	idx := slices.Index(kindBatches, b)
	if len(b.Members) == 0 {
		delete(r.batches, batchKey{kind: b.Kind, hash: b.Hash})
		delete(r.byID, b.ID)
		kindBatches = slices.Delete(kindBatches, idx, idx+1)
		if len(kindBatches) == 0 {
			delete(r.order, b.Kind)
		} else {
			r.order[b.Kind] = kindBatches
		}
		logging.Logger().Debug("batch destroyed", "id", b.ID)
	}
	r.relayout(b.Kind, idx)
	r.versions[b.Kind]++
}

// relayout packs the kind's batches from index from onward so that every
// batch starts where the previous one ends.
func (r *Registry) relayout(kind renderview.GeometryType, from int) {
	kindBatches := r.order[kind]
	if from < 0 || from >= len(kindBatches) {
		return
	}
	cursor := 0
	if from > 0 {
		prev := kindBatches[from-1]
		cursor = prev.Start + prev.Count
	}
	for _, b := range kindBatches[from:] {
		b.Start = cursor
		for _, m := range b.Members {
			n := m.IndexCount()
			m.SetPlacement(renderview.Placement{BatchID: b.ID, Start: cursor, Count: n})
			cursor += n
		}
		b.Count = cursor - b.Start
	}
}

func (r *Registry) handle(b *Batch, rv *renderview.RenderView) BatchHandle {
	pl, _ := rv.Placement()
	return BatchHandle{BatchID: b.ID, Kind: b.Kind, Hash: b.Hash, Placement: pl}
}

func snapshot(b *Batch) Batch {
	out := *b
	out.Members = slices.Clone(b.Members)
	return out
}

// Batches returns snapshots of the kind's batches in buffer order.
func (r *Registry) Batches(kind renderview.GeometryType) []Batch {
	r.mu.Lock()
	defer r.mu.Unlock()
	kindBatches := r.order[kind]
	out := make([]Batch, 0, len(kindBatches))
	for _, b := range kindBatches {
		out = append(out, snapshot(b))
	}
	return out
}

// Batch returns a snapshot of the batch with the given id.
func (r *Registry) Batch(id string) (Batch, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.byID[id]
	if !ok {
		return Batch{}, false
	}
	return snapshot(b), true
}

// Lookup returns the batch rv is currently placed in.
func (r *Registry) Lookup(rv *renderview.RenderView) (Batch, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.owner[rv]
	if !ok {
		return Batch{}, false
	}
	return snapshot(b), true
}

// Contains reports whether rv is registered.
func (r *Registry) Contains(rv *renderview.RenderView) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.owner[rv]
	return ok
}

// Len returns the number of live batches.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.batches)
}

// BufferSize returns the number of index slots used by the kind.
func (r *Registry) BufferSize(kind renderview.GeometryType) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	kindBatches := r.order[kind]
	if len(kindBatches) == 0 {
		return 0
	}
	last := kindBatches[len(kindBatches)-1]
	return last.Start + last.Count
}

// Version increases on every layout change of the kind.
func (r *Registry) Version(kind renderview.GeometryType) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.versions[kind]
}

// Validate checks that every registered view maps to exactly one batch and
// one range, that ranges of different batches do not overlap, and that no
// empty batch survives.
func (r *Registry) Validate() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[*renderview.RenderView]bool, len(r.owner))
	for kind, kindBatches := range r.order {
		cursor := 0
		for _, b := range kindBatches {
			if len(b.Members) == 0 {
				return fmt.Errorf("%w: empty batch %s", ErrInvariant, b.ID)
			}
			if b.Kind != kind {
				return fmt.Errorf("%w: batch %s listed under %s", ErrInvariant, b.ID, kind)
			}
			if b.Start < cursor {
				return fmt.Errorf("%w: batch %s overlaps previous range", ErrInvariant, b.ID)
			}
			pos := b.Start
			for _, m := range b.Members {
				if seen[m] {
					return fmt.Errorf("%w: %s is in more than one batch", ErrInvariant, m.ID())
				}
				seen[m] = true
				if r.owner[m] != b {
					return fmt.Errorf("%w: owner of %s is not %s", ErrInvariant, m.ID(), b.ID)
				}
				if m.GeometryType() != b.Kind || m.MaterialHash() != b.Hash {
					return fmt.Errorf("%w: %s does not match key of %s", ErrInvariant, m.ID(), b.ID)
				}
				pl, ok := m.Placement()
				if !ok || pl.BatchID != b.ID || pl.Start != pos || pl.Count != m.IndexCount() {
					return fmt.Errorf("%w: placement of %s is %+v", ErrInvariant, m.ID(), pl)
				}
				pos += pl.Count
			}
			if pos != b.Start+b.Count {
				return fmt.Errorf("%w: batch %s count %d, members cover %d", ErrInvariant, b.ID, b.Count, pos-b.Start)
			}
			cursor = b.Start + b.Count
		}
	}
	if len(seen) != len(r.owner) {
		return fmt.Errorf("%w: %d owners but %d placed members", ErrInvariant, len(r.owner), len(seen))
	}
	return nil
}
