package oraclesync

import (
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"
)

const pagePrefix = "page/"

// PageCache keeps raw registry pages on disk so an interrupted sync does
// not download them again.
type PageCache struct {
	db *leveldb.DB
}

func OpenPageCache(dir string) (*PageCache, error) {
	db, err := leveldb.OpenFile(dir, nil)
	if err != nil {
		return nil, err
	}
	return &PageCache{db: db}, nil
}

func pageKey(skip, first int) []byte {
	return []byte(fmt.Sprintf("%s%d/%d", pagePrefix, skip, first))
}

func (c *PageCache) Get(skip, first int) ([]byte, bool, error) {
	dat, err := c.db.Get(pageKey(skip, first), nil)
	if err != nil {
		if err == leveldb.ErrNotFound {
			return nil, false, nil
		}
		return nil, false, err
	}
	return dat, true, nil
}

func (c *PageCache) Put(skip, first int, dat []byte) error {
	return c.db.Put(pageKey(skip, first), dat, nil)
}

// Clear drops every cached page.
func (c *PageCache) Clear() error {
	iter := c.db.NewIterator(util.BytesPrefix([]byte(pagePrefix)), nil)
	batch := new(leveldb.Batch)
	for iter.Next() {
		batch.Delete(append([]byte(nil), iter.Key()...))
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return err
	}
	return c.db.Write(batch, nil)
}

func (c *PageCache) Close() error {
	return c.db.Close()
}
