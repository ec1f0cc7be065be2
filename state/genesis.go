package state

import (
	"errors"
	"fmt"

	"github.com/calehh/assembly-app/ledger"
	"github.com/calehh/assembly-app/types"
	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrGenesisApplied   = errors.New("genesis already applied")
	ErrGenesisNoCreator = errors.New("genesis roles need a creator")
)

func paramsFromGenesis(g *types.GenesisParams) (params *types.Params, err error) {
	params = &types.Params{
		SeatCount:              g.SeatCount,
		VotingPercentThreshold: g.VotingPercentThreshold,
		Quorum:                 g.Quorum,
		TallyDuration:          g.TallyDuration,
		ExecRewardBase:         g.ExecRewardBase,
		ExecRewardExponentMax:  g.ExecRewardExponentMax,
		OracleBatchMax:         g.OracleBatchMax,
	}
	if params.DelegationRewardRate, err = ledger.ParseAmount(g.DelegationRewardRate); err != nil {
		return nil, fmt.Errorf("delegation_reward_rate: %w", err)
	}
	if params.ReferredAmount, err = ledger.ParseAmount(g.ReferredAmount); err != nil {
		return nil, fmt.Errorf("referred_amount: %w", err)
	}
	if params.ReferrerAmount, err = ledger.ParseAmount(g.ReferrerAmount); err != nil {
		return nil, fmt.Errorf("referrer_amount: %w", err)
	}
	switch {
	case params.VotingPercentThreshold < 50 || params.VotingPercentThreshold > 100:
		return nil, ErrThresholdRange
	case params.TallyDuration <= 0:
		return nil, ErrDurationZero
	case params.ExecRewardBase < 1:
		return nil, ErrExecBaseZero
	case params.ExecRewardExponentMax > types.MaxExecRewardExponent:
		return nil, ErrExponentTooLarge
	case params.OracleBatchMax == 0:
		return nil, ErrBatchMaxZero
	}
	return params, nil
}

// InitGenesis writes roles, parameters, balances and the initial human set.
func (s *State) InitGenesis(g *types.AppGenesis) error {
	if _, err := s.Roles(); err == nil {
		return ErrGenesisApplied
	}
	roles := g.Roles
	if roles.Creator == (common.Address{}) {
		return ErrGenesisNoCreator
	}
	roles.Treasury = types.TreasuryAddress
	roles.Assembly = types.AssemblyAddress
	if roles.Owner == (common.Address{}) {
		roles.Owner = roles.Treasury
	}
	if roles.RewardPool == (common.Address{}) {
		roles.RewardPool = roles.Treasury
	}
	if roles.OracleUpdater == (common.Address{}) {
		roles.OracleUpdater = roles.Creator
	}
	params, err := paramsFromGenesis(&g.Params)
	if err != nil {
		return err
	}
	if err = s.setRoles(&roles); err != nil {
		return err
	}
	if err = s.setParams(params); err != nil {
		return err
	}
	if err = s.setUint(KeySchema, CurrentSchemaVersion); err != nil {
		return err
	}
	if err = s.setPopulation(&types.Population{}); err != nil {
		return err
	}
	l := ledger.New(s, roles.Owner)
	for _, b := range g.Balances {
		amount, err := ledger.ParseAmount(b.Amount)
		if err != nil {
			return fmt.Errorf("balance of %s: %w", b.Address.Hex(), err)
		}
		if err = l.Mint(b.Address, amount); err != nil {
			return err
		}
	}
	info := &types.OracleInfo{LastUpdate: s.Now()}
	if _, err = s.setHumans(info, g.Humans, true); err != nil {
		return err
	}
	return s.setJSON(KeyOracle, info)
}
