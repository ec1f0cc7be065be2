package oraclesync

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

var ErrBatchSize = errors.New("batch size must be positive")

func sortAddresses(addrs []common.Address) {
	sort.Slice(addrs, func(i, j int) bool {
		return bytes.Compare(addrs[i][:], addrs[j][:]) < 0
	})
}

// Diff returns the addresses only registry has and the ones only chain has,
// each sorted.
func Diff(registry, chain []common.Address) (register, deregister []common.Address) {
	inRegistry := make(map[common.Address]struct{}, len(registry))
	for _, a := range registry {
		inRegistry[a] = struct{}{}
	}
	inChain := make(map[common.Address]struct{}, len(chain))
	for _, a := range chain {
		inChain[a] = struct{}{}
	}
	for a := range inRegistry {
		if _, ok := inChain[a]; !ok {
			register = append(register, a)
		}
	}
	for a := range inChain {
		if _, ok := inRegistry[a]; !ok {
			deregister = append(deregister, a)
		}
	}
	sortAddresses(register)
	sortAddresses(deregister)
	return register, deregister
}

// Chunk splits addrs into consecutive batches of at most size.
func Chunk(addrs []common.Address, size int) [][]common.Address {
	if size <= 0 {
		return nil
	}
	batches := make([][]common.Address, 0, (len(addrs)+size-1)/size)
	for start := 0; start < len(addrs); start += size {
		end := start + size
		if end > len(addrs) {
			end = len(addrs)
		}
		batches = append(batches, addrs[start:end])
	}
	return batches
}

type Plan struct {
	RegistryCount int                `json:"registryCount" yaml:"registryCount"`
	ChainCount    int                `json:"chainCount" yaml:"chainCount"`
	Register      [][]common.Address `json:"register" yaml:"-"`
	Deregister    [][]common.Address `json:"deregister" yaml:"-"`
}

func (p *Plan) Empty() bool {
	return len(p.Register) == 0 && len(p.Deregister) == 0
}

type planView struct {
	RegistryCount int        `yaml:"registryCount"`
	ChainCount    int        `yaml:"chainCount"`
	Register      [][]string `yaml:"register"`
	Deregister    [][]string `yaml:"deregister"`
}

func hexBatches(batches [][]common.Address) [][]string {
	out := make([][]string, len(batches))
	for i, b := range batches {
		out[i] = make([]string, len(b))
		for j, a := range b {
			out[i][j] = a.Hex()
		}
	}
	return out
}

// Render encodes the plan as "yaml" or "json".
func (p *Plan) Render(format string) ([]byte, error) {
	switch format {
	case "yaml", "yml":
		return yaml.Marshal(planView{
			RegistryCount: p.RegistryCount,
			ChainCount:    p.ChainCount,
			Register:      hexBatches(p.Register),
			Deregister:    hexBatches(p.Deregister),
		})
	case "json":
		return json.MarshalIndent(p, "", "  ")
	}
	return nil, fmt.Errorf("unknown format %q", format)
}

// Planner reconciles the chain's human set against the registry.
type Planner struct {
	Registry  Source
	Chain     Source
	BatchSize int
	logger    cmtlog.Logger
}

func NewPlanner(logger cmtlog.Logger, registry, chain Source, batchSize int) *Planner {
	return &Planner{
		Registry:  registry,
		Chain:     chain,
		BatchSize: batchSize,
		logger:    logger.With("module", "oraclesync"),
	}
}

func (p *Planner) Plan(ctx context.Context) (*Plan, error) {
	if p.BatchSize <= 0 {
		return nil, ErrBatchSize
	}
	var registry, chain []common.Address
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		registry, err = p.Registry.Addresses(gctx)
		if err != nil {
			return fmt.Errorf("registry: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		chain, err = p.Chain.Addresses(gctx)
		if err != nil {
			return fmt.Errorf("chain: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	register, deregister := Diff(registry, chain)
	p.logger.Info("oracle diff", "registry", len(registry), "chain", len(chain),
		"register", len(register), "deregister", len(deregister))
	return &Plan{
		RegistryCount: len(registry),
		ChainCount:    len(chain),
		Register:      Chunk(register, p.BatchSize),
		Deregister:    Chunk(deregister, p.BatchSize),
	}, nil
}
