package model

import (
	"encoding/json"
	"fmt"
	"iter"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Keyed is implemented by items stored in a KeyedCollection.
// Key returns the item's identity; it must not change after construction.
type Keyed interface {
	Key() string
}

// KeyRule normalizes keys before they are compared.
type KeyRule interface {
	Normalize(key string) string
}

// ExactKeys compares keys byte for byte.
type ExactKeys struct{}

// Normalize returns key unchanged.
func (ExactKeys) Normalize(key string) string { return key }

// FoldedKeys compares keys case-insensitively: NFC normalization followed by
// Unicode case folding.
type FoldedKeys struct{}

// Normalize returns the folded form of key.
func (FoldedKeys) Normalize(key string) string {
	// cases.Caser is stateful, so one per call.
	return cases.Fold().String(norm.NFC.String(key))
}

// KeyedCollection holds at most one item per key and iterates in insertion
// order. The zero value is an empty collection ready to use.
//
// Adding an item whose key already exists fails with ErrDuplicateKey and
// leaves the collection unchanged; nothing is ever overwritten.
type KeyedCollection[T Keyed, R KeyRule] struct {
	items []T
	index map[string]int
}

func (c *KeyedCollection[T, R]) normalize(key string) string {
	var rule R
	return rule.Normalize(key)
}

// Add appends item. It fails with ErrEmptyIdentity if the item's key is
// blank and with ErrDuplicateKey if an item with an equal key exists.
func (c *KeyedCollection[T, R]) Add(item T) error {
	key := item.Key()
	if isBlank(key) {
		return fmt.Errorf("%w: item key is empty", ErrEmptyIdentity)
	}
	k := c.normalize(key)
	if _, exists := c.index[k]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateKey, key)
	}
	if c.index == nil {
		c.index = make(map[string]int)
	}
	c.index[k] = len(c.items)
	c.items = append(c.items, item)
	return nil
}

// Get returns the item stored under key.
func (c *KeyedCollection[T, R]) Get(key string) (T, bool) {
	i, ok := c.index[c.normalize(key)]
	if !ok {
		var zero T
		return zero, false
	}
	return c.items[i], true
}

// Contains reports whether an item with an equal key exists.
func (c *KeyedCollection[T, R]) Contains(key string) bool {
	_, ok := c.index[c.normalize(key)]
	return ok
}

// Remove deletes the item stored under key, keeping the order of the rest.
func (c *KeyedCollection[T, R]) Remove(key string) bool {
	i, ok := c.index[c.normalize(key)]
	if !ok {
		return false
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	delete(c.index, c.normalize(key))
	for j := i; j < len(c.items); j++ {
		c.index[c.normalize(c.items[j].Key())] = j
	}
	return true
}

// Clear removes all items.
func (c *KeyedCollection[T, R]) Clear() {
	c.items = nil
	c.index = nil
}

// Len returns the number of items.
func (c *KeyedCollection[T, R]) Len() int {
	return len(c.items)
}

// At returns the i-th item in insertion order.
func (c *KeyedCollection[T, R]) At(i int) T {
	return c.items[i]
}

// All iterates over the items in insertion order.
func (c *KeyedCollection[T, R]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, item := range c.items {
			if !yield(item) {
				return
			}
		}
	}
}

// Items returns a copy of the items in insertion order.
func (c *KeyedCollection[T, R]) Items() []T {
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// MarshalJSON writes the items as a JSON array in insertion order.
func (c KeyedCollection[T, R]) MarshalJSON() ([]byte, error) {
	if c.items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c.items)
}

// UnmarshalJSON replaces the contents with the items of a JSON array.
// Duplicate keys in the input are an error.
func (c *KeyedCollection[T, R]) UnmarshalJSON(data []byte) error {
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	var fresh KeyedCollection[T, R]
	for _, item := range items {
		if err := fresh.Add(item); err != nil {
			return err
		}
	}
	*c = fresh
	return nil
}
