// Package uncomparable contains an implementation that allows user to create
// a map with key of type [any] using the given compare function, which returns
// an error instead of panicking. Iteration follows insertion order.
package uncomparable

import (
	"iter"
	"slices"

	"github.com/vinicius-lino-figueiredo/godm/domain"
)

// Map represents a map[K]T, where K does not need to be [comparable].
type Map[T any] struct {
	buckets  [][]int
	entries  []*kv[T]
	hasher   domain.Hasher
	comparer domain.Comparer
	length   int
}

// New returns a new instance of [Map] with the given [domain.Hasher] and
// [domain.Comparer].
func New[T any](hasher domain.Hasher, comparer domain.Comparer) *Map[T] {
	return &Map[T]{
		buckets:  make([][]int, 8),
		hasher:   hasher,
		comparer: comparer,
	}
}

// Delete removes a given key from the map, if it exists. If the given key could
// not be hashed or some comparison failed, it returns the error.
func (m *Map[T]) Delete(key any) error {
	bucketIndex, pos, err := m.find(key)
	if err != nil || pos < 0 {
		return err
	}

	bucket := m.buckets[bucketIndex]
	m.entries[bucket[pos]] = nil
	m.buckets[bucketIndex] = slices.Delete(bucket, pos, pos+1)
	m.length--
	return nil
}

// Get returns the value for the given key with a bool to indicate whether it
// exists in the map or not. If hash or comparison fails, returns an error.
func (m *Map[T]) Get(key any) (T, bool, error) {
	bucketIndex, pos, err := m.find(key)
	if err != nil || pos < 0 {
		return *new(T), false, err
	}
	return m.entries[m.buckets[bucketIndex][pos]].value, true, nil
}

// find returns the bucket of the key and its position inside it, or -1.
func (m *Map[T]) find(key any) (uint64, int, error) {
	bucketIndex, err := m.getBucketIndex(key)
	if err != nil {
		return 0, -1, err
	}

	for n, entry := range m.buckets[bucketIndex] {
		c, err := m.comparer.Compare(key, m.entries[entry].key)
		if err != nil {
			return 0, -1, err
		}
		if c == 0 {
			return bucketIndex, n, nil
		}
	}
	return bucketIndex, -1, nil
}

func (m *Map[T]) getBucketIndex(key any) (uint64, error) {
	h, err := m.hasher.Hash(key)
	if err != nil {
		return 0, err
	}
	return h % uint64(len(m.buckets)), nil
}

// Keys returns an [iter.Seq] containing all the stored keys in insertion
// order.
func (m *Map[T]) Keys() iter.Seq[any] {
	return func(yield func(any) bool) {
		for k := range m.Iter() {
			if !yield(k) {
				return
			}
		}
	}
}

// Len returns the amount of stored values.
func (m *Map[T]) Len() int {
	return m.length
}

// Iter returns an [iter.Seq2] containing all the key+value pairs in insertion
// order.
func (m *Map[T]) Iter() iter.Seq2[any, T] {
	return func(yield func(any, T) bool) {
		for _, v := range m.entries {
			if v == nil {
				continue
			}
			if !yield(v.key, v.value) {
				return
			}
		}
	}
}

// Set adds or replaces the given key in the map, returning error on hash or
// comparison failure. Replacing a key keeps its original position.
func (m *Map[T]) Set(key any, value T) error {
	bucketIndex, pos, err := m.find(key)
	if err != nil {
		return err
	}

	if pos >= 0 {
		m.entries[m.buckets[bucketIndex][pos]].value = value
		return nil
	}

	m.buckets[bucketIndex] = append(m.buckets[bucketIndex], len(m.entries))
	m.entries = append(m.entries, &kv[T]{key: key, value: value})
	m.length++

	return nil
}

// Values returns an [iter.Seq] containing all the stored values in insertion
// order.
func (m *Map[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, v := range m.Iter() {
			if !yield(v) {
				return
			}
		}
	}
}

type kv[T any] struct {
	key   any
	value T
}
