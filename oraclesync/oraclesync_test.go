package oraclesync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"

	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func addr(i int64) common.Address {
	return common.BigToAddress(big.NewInt(i))
}

func addrs(ids ...int64) []common.Address {
	out := make([]common.Address, len(ids))
	for i, id := range ids {
		out[i] = addr(id)
	}
	return out
}

func TestDiff(t *testing.T) {
	registry := addrs(5, 1, 2, 3, 3)
	chain := addrs(4, 2, 6, 1)
	register, deregister := Diff(registry, chain)
	assert.Equal(t, addrs(3, 5), register)
	assert.Equal(t, addrs(4, 6), deregister)

	// applying the plan to the chain set yields the registry set
	set := map[common.Address]bool{}
	for _, a := range chain {
		set[a] = true
	}
	for _, a := range register {
		assert.False(t, set[a])
		set[a] = true
	}
	for _, a := range deregister {
		assert.True(t, set[a])
		delete(set, a)
	}
	want := map[common.Address]bool{}
	for _, a := range registry {
		want[a] = true
	}
	assert.Equal(t, want, set)

	register, deregister = Diff(addrs(1, 2), addrs(2, 1))
	assert.Empty(t, register)
	assert.Empty(t, deregister)
}

func TestChunk(t *testing.T) {
	list := addrs(1, 2, 3, 4, 5)
	batches := Chunk(list, 2)
	assert.Equal(t, [][]common.Address{addrs(1, 2), addrs(3, 4), addrs(5)}, batches)
	assert.Equal(t, [][]common.Address{list}, Chunk(list, 5))
	assert.Empty(t, Chunk(nil, 3))
	assert.Nil(t, Chunk(list, 0))
}

// registryServer serves n submissions; every third one is unregistered.
func registryServer(t *testing.T, n int, hits *int32) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		skip, err := strconv.Atoi(r.URL.Query().Get("skip"))
		require.NoError(t, err)
		first, err := strconv.Atoi(r.URL.Query().Get("first"))
		require.NoError(t, err)
		page := registryPage{Submissions: []submission{}}
		for i := skip; i < skip+first && i < n; i++ {
			page.Submissions = append(page.Submissions, submission{
				Id:         addr(int64(i + 1)).Hex(),
				Registered: i%3 != 2,
			})
		}
		require.NoError(t, json.NewEncoder(w).Encode(page))
	}))
}

func TestRegistrySourcePaging(t *testing.T) {
	var hits int32
	srv := registryServer(t, 5, &hits)
	defer srv.Close()
	cache, err := OpenPageCache(t.TempDir())
	require.NoError(t, err)
	defer cache.Close()

	src, err := NewRegistrySource(cmtlog.NewNopLogger(), srv.URL, 2, cache)
	require.NoError(t, err)
	got, err := src.Addresses(context.Background())
	require.NoError(t, err)
	assert.Equal(t, addrs(1, 2, 4, 5), got)
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))

	// a retry is served from the cache
	got, err = src.Addresses(context.Background())
	require.NoError(t, err)
	assert.Equal(t, addrs(1, 2, 4, 5), got)
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))

	require.NoError(t, cache.Clear())
	_, found, err := cache.Get(0, 2)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRegistrySourceStopsOnRepeatedPage(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		fmt.Fprintf(w, `{"submissions":[{"id":%q,"registered":true},{"id":%q,"registered":true}]}`,
			addr(1).Hex(), addr(2).Hex())
	}))
	defer srv.Close()

	src, err := NewRegistrySource(cmtlog.NewNopLogger(), srv.URL, 2, nil)
	require.NoError(t, err)
	got, err := src.Addresses(context.Background())
	require.NoError(t, err)
	assert.Equal(t, addrs(1, 2), got)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestRegistrySourceErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("skip") == "0" {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
	}))
	defer srv.Close()
	cache, err := OpenPageCache(t.TempDir())
	require.NoError(t, err)
	defer cache.Close()

	src, err := NewRegistrySource(cmtlog.NewNopLogger(), srv.URL, 2, cache)
	require.NoError(t, err)
	_, err = src.Addresses(context.Background())
	assert.Error(t, err)
	_, found, err := cache.Get(0, 2)
	require.NoError(t, err)
	assert.False(t, found)

	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"submissions":[{"id":"nope","registered":true}]}`)
	}))
	defer bad.Close()
	src, err = NewRegistrySource(cmtlog.NewNopLogger(), bad.URL, 2, nil)
	require.NoError(t, err)
	_, err = src.Addresses(context.Background())
	assert.ErrorIs(t, err, ErrInvalidAddress)

	_, err = NewRegistrySource(cmtlog.NewNopLogger(), bad.URL, 0, nil)
	assert.ErrorIs(t, err, ErrPageSize)
}

func TestIndexerSource(t *testing.T) {
	humans := addrs(1, 2, 3, 4, 5)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/getHumans", r.URL.Path)
		var req humansReq
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		res := humansRes{Humans: []string{}, Total: uint64(len(humans))}
		for i := req.Page * req.PageSize; i < (req.Page+1)*req.PageSize && i < len(humans); i++ {
			res.Humans = append(res.Humans, humans[i].Hex())
		}
		require.NoError(t, json.NewEncoder(w).Encode(res))
	}))
	defer srv.Close()

	src, err := NewIndexerSource(srv.URL, 2)
	require.NoError(t, err)
	got, err := src.Addresses(context.Background())
	require.NoError(t, err)
	assert.Equal(t, humans, got)
}

type failingSource struct{}

func (failingSource) Addresses(ctx context.Context) ([]common.Address, error) {
	return nil, errors.New("unreachable")
}

func TestPlanner(t *testing.T) {
	registry := StaticSource(addrs(1, 2, 3, 4, 5))
	chain := StaticSource(addrs(4, 9))
	p := NewPlanner(cmtlog.NewNopLogger(), registry, chain, 2)
	plan, err := p.Plan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, plan.RegistryCount)
	assert.Equal(t, 2, plan.ChainCount)
	assert.Equal(t, [][]common.Address{addrs(1, 2), addrs(3, 5)}, plan.Register)
	assert.Equal(t, [][]common.Address{addrs(9)}, plan.Deregister)
	assert.False(t, plan.Empty())

	out, err := plan.Render("yaml")
	require.NoError(t, err)
	var view planView
	require.NoError(t, yaml.Unmarshal(out, &view))
	assert.Equal(t, [][]string{{addr(9).Hex()}}, view.Deregister)
	assert.Len(t, view.Register, 2)

	out, err = plan.Render("json")
	require.NoError(t, err)
	var decoded Plan
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, plan.Register, decoded.Register)

	_, err = plan.Render("xml")
	assert.Error(t, err)

	p.Chain = failingSource{}
	_, err = p.Plan(context.Background())
	assert.ErrorContains(t, err, "chain")

	p.BatchSize = 0
	_, err = p.Plan(context.Background())
	assert.ErrorIs(t, err, ErrBatchSize)
}
