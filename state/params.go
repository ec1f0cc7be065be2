package state

import (
	"math/big"

	"github.com/calehh/assembly-app/types"
	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrUnknownParam     = types.NewError(types.InvalidParameter, "unknown parameter")
	ErrParamUnchanged   = types.NewError(types.InvalidParameter, "value unchanged")
	ErrParamMissing     = types.NewError(types.InvalidParameter, "value missing")
	ErrSeatDecrease     = types.NewError(types.InvalidParameter, "seat count can only increase")
	ErrThresholdRange   = types.NewError(types.InvalidParameter, "threshold out of [50,100]")
	ErrDurationZero     = types.NewError(types.InvalidParameter, "tally duration must be positive")
	ErrExecBaseZero     = types.NewError(types.InvalidParameter, "execution reward base must be at least 1")
	ErrExponentTooLarge = types.NewError(types.InvalidParameter, "execution reward exponent above 255")
	ErrBatchMaxZero     = types.NewError(types.InvalidParameter, "oracle batch size must be positive")
	ErrZeroAddress      = types.NewError(types.InvalidParameter, "zero address")
	ErrNegativeAmount   = types.NewError(types.InvalidParameter, "negative amount")
	ErrValueOutOfRange  = types.NewError(types.InvalidParameter, "value out of range")
)

func (s *State) Roles() (*types.Roles, error) {
	roles := new(types.Roles)
	found, err := s.getJSON(KeyRoles, roles)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrStateNotCreated
	}
	return roles, nil
}

func (s *State) setRoles(roles *types.Roles) error {
	return s.setJSON(KeyRoles, roles)
}

func (s *State) Params() (*types.Params, error) {
	params := new(types.Params)
	found, err := s.getJSON(KeyParams, params)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrStateNotCreated
	}
	return params, nil
}

func (s *State) setParams(params *types.Params) error {
	return s.setJSON(KeyParams, params)
}

func uintValue(v *big.Int) (uint64, error) {
	if v == nil {
		return 0, ErrParamMissing
	}
	if !v.IsUint64() {
		return 0, ErrValueOutOfRange
	}
	return v.Uint64(), nil
}

func amountValue(v *big.Int) (*big.Int, error) {
	if v == nil {
		return nil, ErrParamMissing
	}
	if v.Sign() < 0 {
		return nil, ErrNegativeAmount
	}
	return new(big.Int).Set(v), nil
}

// SetParam changes one governance parameter or role. Every setter rejects
// a value equal to the current one.
func (s *State) SetParam(caller common.Address, name string, value, extra *big.Int, addr common.Address) (err error) {
	if name == types.ParamCreator {
		err = s.requireCreator(caller)
	} else {
		err = s.requireOwner(caller)
	}
	if err != nil {
		return err
	}
	params, err := s.Params()
	if err != nil {
		return err
	}
	roles, err := s.Roles()
	if err != nil {
		return err
	}
	shown := ""
	switch name {
	case types.ParamSeatCount:
		n, err := uintValue(value)
		if err != nil {
			return err
		}
		if n == params.SeatCount {
			return ErrParamUnchanged
		}
		if n < params.SeatCount {
			return ErrSeatDecrease
		}
		params.SeatCount = n
	case types.ParamVotingPercent:
		n, err := uintValue(value)
		if err != nil {
			return err
		}
		if n == params.VotingPercentThreshold {
			return ErrParamUnchanged
		}
		if n < 50 || n > 100 {
			return ErrThresholdRange
		}
		params.VotingPercentThreshold = n
	case types.ParamQuorum:
		n, err := uintValue(value)
		if err != nil {
			return err
		}
		if n == params.Quorum {
			return ErrParamUnchanged
		}
		params.Quorum = n
	case types.ParamTallyDuration:
		if value == nil {
			return ErrParamMissing
		}
		if !value.IsInt64() {
			return ErrValueOutOfRange
		}
		d := value.Int64()
		if d == params.TallyDuration {
			return ErrParamUnchanged
		}
		if d <= 0 {
			return ErrDurationZero
		}
		params.TallyDuration = d
	case types.ParamDelegationRewardRate:
		rate, err := amountValue(value)
		if err != nil {
			return err
		}
		if rate.Cmp(params.DelegationRewardRate) == 0 {
			return ErrParamUnchanged
		}
		// what accrued so far is paid at the old rate
		if err = s.accrueDelegationReward(params); err != nil {
			return err
		}
		params.DelegationRewardRate = rate
	case types.ParamReferralReward:
		referred, err := amountValue(value)
		if err != nil {
			return err
		}
		referrer, err := amountValue(extra)
		if err != nil {
			return err
		}
		if referred.Cmp(params.ReferredAmount) == 0 && referrer.Cmp(params.ReferrerAmount) == 0 {
			return ErrParamUnchanged
		}
		params.ReferredAmount = referred
		params.ReferrerAmount = referrer
		shown = referred.String() + "," + referrer.String()
	case types.ParamExecRewardBase:
		n, err := uintValue(value)
		if err != nil {
			return err
		}
		if n == params.ExecRewardBase {
			return ErrParamUnchanged
		}
		if n < 1 {
			return ErrExecBaseZero
		}
		params.ExecRewardBase = n
	case types.ParamExecRewardExponentMax:
		n, err := uintValue(value)
		if err != nil {
			return err
		}
		if n == params.ExecRewardExponentMax {
			return ErrParamUnchanged
		}
		if n > types.MaxExecRewardExponent {
			return ErrExponentTooLarge
		}
		params.ExecRewardExponentMax = n
	case types.ParamOracleBatchMax:
		n, err := uintValue(value)
		if err != nil {
			return err
		}
		if n == params.OracleBatchMax {
			return ErrParamUnchanged
		}
		if n == 0 {
			return ErrBatchMaxZero
		}
		params.OracleBatchMax = n
	case types.ParamOracleUpdater, types.ParamCreator, types.ParamOwner, types.ParamRewardPool:
		return s.setRole(roles, name, addr)
	default:
		return ErrUnknownParam
	}
	if err = s.setParams(params); err != nil {
		return err
	}
	if shown == "" {
		shown = value.String()
	}
	s.emit(types.EncodeEventParam(&types.EventParam{Name: name, Value: shown}))
	return nil
}

func (s *State) setRole(roles *types.Roles, name string, addr common.Address) error {
	if addr == (common.Address{}) {
		return ErrZeroAddress
	}
	var slot *common.Address
	switch name {
	case types.ParamOracleUpdater:
		slot = &roles.OracleUpdater
	case types.ParamCreator:
		slot = &roles.Creator
	case types.ParamOwner:
		slot = &roles.Owner
	case types.ParamRewardPool:
		slot = &roles.RewardPool
	}
	if *slot == addr {
		return ErrParamUnchanged
	}
	*slot = addr
	if err := s.setRoles(roles); err != nil {
		return err
	}
	s.emit(types.EncodeEventParam(&types.EventParam{Name: name, Value: addr.Hex()}))
	return nil
}
