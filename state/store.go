package state

import (
	"errors"
	"sort"

	"github.com/cosmos/iavl"
)

var ErrReadOnly = errors.New("read only store")

// KVStore is the raw key/value surface every record is kept in.
type KVStore interface {
	Get(key []byte) ([]byte, error)
	Set(key, value []byte) error
	Delete(key []byte) error
}

type reader interface {
	Get(key []byte) ([]byte, error)
}

type treeStore struct {
	tree *iavl.MutableTree
}

func (t *treeStore) Get(key []byte) ([]byte, error) {
	return t.tree.Get(key)
}

func (t *treeStore) Set(key, value []byte) error {
	_, err := t.tree.Set(key, value)
	return err
}

func (t *treeStore) Delete(key []byte) error {
	_, _, err := t.tree.Remove(key)
	return err
}

// snapshotStore serves reads from a committed tree version.
type snapshotStore struct {
	r reader
}

func (s *snapshotStore) Get(key []byte) ([]byte, error) {
	if s.r == nil {
		return nil, nil
	}
	return s.r.Get(key)
}

func (s *snapshotStore) Set(key, value []byte) error {
	return ErrReadOnly
}

func (s *snapshotStore) Delete(key []byte) error {
	return ErrReadOnly
}

type cacheEntry struct {
	value   []byte
	deleted bool
}

// cacheKV buffers writes over a parent store until Write is called.
type cacheKV struct {
	parent KVStore
	dirty  map[string]cacheEntry
}

func newCacheKV(parent KVStore) *cacheKV {
	return &cacheKV{
		parent: parent,
		dirty:  make(map[string]cacheEntry),
	}
}

func (c *cacheKV) Get(key []byte) ([]byte, error) {
	if e, ok := c.dirty[string(key)]; ok {
		if e.deleted {
			return nil, nil
		}
		return e.value, nil
	}
	return c.parent.Get(key)
}

func (c *cacheKV) Set(key, value []byte) error {
	v := make([]byte, len(value))
	copy(v, value)
	c.dirty[string(key)] = cacheEntry{value: v}
	return nil
}

func (c *cacheKV) Delete(key []byte) error {
	c.dirty[string(key)] = cacheEntry{deleted: true}
	return nil
}

// Write flushes the buffered writes into the parent in sorted key order,
// so the resulting tree shape does not depend on map iteration.
func (c *cacheKV) Write() error {
	keys := make([]string, 0, len(c.dirty))
	for k := range c.dirty {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		e := c.dirty[k]
		var err error
		if e.deleted {
			err = c.parent.Delete([]byte(k))
		} else {
			err = c.parent.Set([]byte(k), e.value)
		}
		if err != nil {
			return err
		}
	}
	c.dirty = make(map[string]cacheEntry)
	return nil
}

func (c *cacheKV) Dirty() int {
	return len(c.dirty)
}
