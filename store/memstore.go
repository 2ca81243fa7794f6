package store

import (
	"sort"
	"sync"
)

// MemStore is an in-memory Store for testing. Update stages writes in an
// overlay and applies them only when the callback succeeds.
type MemStore struct {
	mu      sync.RWMutex
	buckets map[string]map[string][]byte
}

// Compile-time interface check.
var _ Store = (*MemStore)(nil)

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	s := &MemStore{buckets: make(map[string]map[string][]byte)}
	for _, b := range allBuckets {
		s.buckets[string(b)] = make(map[string][]byte)
	}
	return s
}

// Update runs fn against a staged overlay and commits it on success.
func (s *MemStore) Update(fn func(Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o := &overlay{base: s.buckets, writes: make(map[string]map[string][]byte)}
	if err := fn(&recordTx{kv: o}); err != nil {
		return err
	}
	o.commit()
	return nil
}

// View runs fn against the committed state.
func (s *MemStore) View(fn func(Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(&recordTx{kv: &overlay{base: s.buckets, readOnly: true}})
}

// Close is a no-op.
func (s *MemStore) Close() error { return nil }

// overlay layers pending writes over committed buckets. A nil value in
// writes marks a deletion.
type overlay struct {
	base     map[string]map[string][]byte
	writes   map[string]map[string][]byte
	readOnly bool
}

func (o *overlay) get(bucket, key []byte) []byte {
	if w, ok := o.writes[string(bucket)]; ok {
		if v, ok := w[string(key)]; ok {
			return v
		}
	}
	return o.base[string(bucket)][string(key)]
}

func (o *overlay) put(bucket, key, value []byte) error {
	if o.readOnly {
		return ErrReadOnly
	}
	w, ok := o.writes[string(bucket)]
	if !ok {
		w = make(map[string][]byte)
		o.writes[string(bucket)] = w
	}
	cp := make([]byte, len(value))
	copy(cp, value)
	w[string(key)] = cp
	return nil
}

func (o *overlay) del(bucket, key []byte) error {
	if o.readOnly {
		return ErrReadOnly
	}
	w, ok := o.writes[string(bucket)]
	if !ok {
		w = make(map[string][]byte)
		o.writes[string(bucket)] = w
	}
	w[string(key)] = nil
	return nil
}

func (o *overlay) forEach(bucket []byte, fn func(k, v []byte) error) error {
	merged := make(map[string][]byte, len(o.base[string(bucket)]))
	for k, v := range o.base[string(bucket)] {
		merged[k] = v
	}
	for k, v := range o.writes[string(bucket)] {
		if v == nil {
			delete(merged, k)
			continue
		}
		merged[k] = v
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := fn([]byte(k), merged[k]); err != nil {
			return err
		}
	}
	return nil
}

func (o *overlay) commit() {
	for b, w := range o.writes {
		target := o.base[b]
		for k, v := range w {
			if v == nil {
				delete(target, k)
				continue
			}
			target[k] = v
		}
	}
}
