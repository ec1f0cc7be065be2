package oraclesync

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrInvalidAddress = errors.New("invalid address")
	ErrPageSize       = errors.New("page size must be positive")
)

// Source yields one list of human addresses.
type Source interface {
	Addresses(ctx context.Context) ([]common.Address, error)
}

type submission struct {
	Id         string `json:"id"`
	Registered bool   `json:"registered"`
}

type registryPage struct {
	Submissions []submission `json:"submissions"`
}

// RegistrySource reads the authoritative identity registry page by page.
type RegistrySource struct {
	url      string
	pageSize int
	client   *http.Client
	cache    *PageCache
	logger   cmtlog.Logger
}

// NewRegistrySource reads url with ?skip=&first= paging. cache may be nil.
func NewRegistrySource(logger cmtlog.Logger, registryUrl string, pageSize int, cache *PageCache) (*RegistrySource, error) {
	if pageSize <= 0 {
		return nil, ErrPageSize
	}
	if _, err := url.Parse(registryUrl); err != nil {
		return nil, err
	}
	return &RegistrySource{
		url:      registryUrl,
		pageSize: pageSize,
		client:   http.DefaultClient,
		cache:    cache,
		logger:   logger.With("module", "oraclesync", "source", "registry"),
	}, nil
}

func (r *RegistrySource) pageUrl(skip int) (string, error) {
	u, err := url.Parse(r.url)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("skip", strconv.Itoa(skip))
	q.Set("first", strconv.Itoa(r.pageSize))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (r *RegistrySource) download(ctx context.Context, skip int) ([]byte, error) {
	u, err := r.pageUrl(skip)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	res, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	dat, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("registry page skip=%d: status %d", skip, res.StatusCode)
	}
	return dat, nil
}

// page returns the raw page at skip, from the cache when present. Pages are
// only cached once they parse.
func (r *RegistrySource) page(ctx context.Context, skip int) ([]byte, *registryPage, error) {
	if r.cache != nil {
		dat, found, err := r.cache.Get(skip, r.pageSize)
		if err != nil {
			return nil, nil, err
		}
		if found {
			var p registryPage
			if err = json.Unmarshal(dat, &p); err == nil {
				return dat, &p, nil
			}
			r.logger.Error("drop corrupt cached page", "skip", skip, "err", err)
		}
	}
	dat, err := r.download(ctx, skip)
	if err != nil {
		return nil, nil, err
	}
	var p registryPage
	if err = json.Unmarshal(dat, &p); err != nil {
		return nil, nil, fmt.Errorf("registry page skip=%d: %w", skip, err)
	}
	if r.cache != nil {
		if err = r.cache.Put(skip, r.pageSize, dat); err != nil {
			return nil, nil, err
		}
	}
	return dat, &p, nil
}

// Addresses walks the registry until a short page or a page identical to
// the previous one, keeping registered submissions only.
func (r *RegistrySource) Addresses(ctx context.Context) ([]common.Address, error) {
	var (
		out  []common.Address
		seen = map[common.Address]struct{}{}
		last []byte
	)
	for skip := 0; ; skip += r.pageSize {
		dat, p, err := r.page(ctx, skip)
		if err != nil {
			return nil, err
		}
		if last != nil && bytes.Equal(dat, last) {
			r.logger.Info("registry repeated page", "skip", skip)
			break
		}
		last = dat
		for _, s := range p.Submissions {
			if !s.Registered {
				continue
			}
			if !common.IsHexAddress(s.Id) {
				return nil, fmt.Errorf("%w: %q", ErrInvalidAddress, s.Id)
			}
			a := common.HexToAddress(s.Id)
			if _, ok := seen[a]; ok {
				continue
			}
			seen[a] = struct{}{}
			out = append(out, a)
		}
		r.logger.Debug("registry page", "skip", skip, "submissions", len(p.Submissions))
		if len(p.Submissions) < r.pageSize {
			break
		}
	}
	return out, nil
}

type humansReq struct {
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
}

type humansRes struct {
	Humans []string `json:"humans"`
	Total  uint64   `json:"total"`
}

// IndexerSource reads the on-chain human set the indexer rebuilt from
// humans events.
type IndexerSource struct {
	url      string
	pageSize int
	client   *http.Client
}

func NewIndexerSource(indexerUrl string, pageSize int) (*IndexerSource, error) {
	if pageSize <= 0 {
		return nil, ErrPageSize
	}
	return &IndexerSource{url: indexerUrl, pageSize: pageSize, client: http.DefaultClient}, nil
}

func (s *IndexerSource) fetch(ctx context.Context, page int) (*humansRes, error) {
	body, err := json.Marshal(humansReq{Page: page, PageSize: s.pageSize})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url+"/getHumans", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	res, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	dat, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("indexer humans page %d: status %d: %s", page, res.StatusCode, dat)
	}
	var out humansRes
	if err = json.Unmarshal(dat, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *IndexerSource) Addresses(ctx context.Context) ([]common.Address, error) {
	var out []common.Address
	for page := 0; ; page++ {
		res, err := s.fetch(ctx, page)
		if err != nil {
			return nil, err
		}
		for _, h := range res.Humans {
			if !common.IsHexAddress(h) {
				return nil, fmt.Errorf("%w: %q", ErrInvalidAddress, h)
			}
			out = append(out, common.HexToAddress(h))
		}
		if len(res.Humans) == 0 || uint64(len(out)) >= res.Total {
			break
		}
	}
	return out, nil
}

// StaticSource serves a fixed list, e.g. one loaded from a file.
type StaticSource []common.Address

func (s StaticSource) Addresses(ctx context.Context) ([]common.Address, error) {
	return s, nil
}
