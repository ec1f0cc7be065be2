package state

import (
	"fmt"
	"math/big"

	"github.com/calehh/assembly-app/types"
	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrNoRewardToClaim     = types.NewError(types.PreconditionUnmet, "no reward to claim")
	ErrSelfReferral        = types.NewError(types.PreconditionUnmet, "self referral")
	ErrReferrerNotMember   = types.NewError(types.PreconditionUnmet, "referrer is not a member")
	ErrReferredNotMember   = types.NewError(types.PreconditionUnmet, "caller is not a member")
	ErrReferralClaimed     = types.NewError(types.PreconditionUnmet, "referral reward already claimed")
	ErrNegativeRewardDelta = types.NewError(types.InvalidParameter, "negative reward")
)

func (s *State) Rewards(addr common.Address) (*big.Int, error) {
	val, err := s.store.Get([]byte(fmt.Sprintf(KeyRewards, addr.Bytes())))
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(val), nil
}

func (s *State) setRewards(addr common.Address, v *big.Int) error {
	key := []byte(fmt.Sprintf(KeyRewards, addr.Bytes()))
	if v.Sign() == 0 {
		return s.store.Delete(key)
	}
	return s.store.Set(key, v.Bytes())
}

func (s *State) creditReward(addr common.Address, amount *big.Int, kind string) error {
	if amount.Sign() < 0 {
		return ErrNegativeRewardDelta
	}
	if amount.Sign() == 0 {
		return nil
	}
	bal, err := s.Rewards(addr)
	if err != nil {
		return err
	}
	if err = s.setRewards(addr, bal.Add(bal, amount)); err != nil {
		return err
	}
	s.emit(types.EncodeEventReward(&types.EventReward{
		Address: addr.Hex(),
		Kind:    kind,
		Amount:  amount.String(),
	}))
	return nil
}

func (s *State) Incentives() (*types.Incentives, error) {
	inc := new(types.Incentives)
	if _, err := s.getJSON(KeyIncentives, inc); err != nil {
		return nil, err
	}
	return inc, nil
}

// executionReward is base^min(max(elapsed,0), maxExponent).
func executionReward(params *types.Params, elapsed int64) *big.Int {
	if elapsed < 0 {
		elapsed = 0
	}
	exp := uint64(elapsed)
	if exp > params.ExecRewardExponentMax {
		exp = params.ExecRewardExponentMax
	}
	if exp > types.MaxExecRewardExponent {
		exp = types.MaxExecRewardExponent
	}
	base := new(big.Int).SetUint64(params.ExecRewardBase)
	return base.Exp(base, new(big.Int).SetUint64(exp), nil)
}

// accrueDelegationReward splits rate*(now-last) over the occupied seats by
// appointment count relative to the citizen count. The first call only
// starts the clock.
func (s *State) accrueDelegationReward(params *types.Params) error {
	inc, err := s.Incentives()
	if err != nil {
		return err
	}
	now := s.Now()
	if inc.LastDistribution == 0 {
		inc.LastDistribution = now
		return s.setJSON(KeyIncentives, inc)
	}
	elapsed := now - inc.LastDistribution
	if elapsed <= 0 {
		return nil
	}
	pop, err := s.Population()
	if err != nil {
		return err
	}
	if pop.Citizens > 0 && params.DelegationRewardRate.Sign() > 0 {
		total := new(big.Int).Mul(big.NewInt(elapsed), params.DelegationRewardRate)
		citizens := new(big.Int).SetUint64(pop.Citizens)
		for i := uint64(0); i < params.SeatCount; i++ {
			seat, err := s.Seat(i)
			if err != nil {
				return err
			}
			if !seat.Occupied() {
				continue
			}
			d, err := s.activeMember(seat.Delegate)
			if err != nil {
				return err
			}
			if d == nil {
				continue
			}
			share := new(big.Int).Mul(total, new(big.Int).SetUint64(d.AppointCount()))
			share.Quo(share, citizens)
			if err = s.creditReward(d.Address, share, types.RewardKindDelegation); err != nil {
				return err
			}
		}
	}
	inc.LastDistribution = now
	return s.setJSON(KeyIncentives, inc)
}

func (s *State) DistributeDelegationReward(caller common.Address) error {
	params, err := s.Params()
	if err != nil {
		return err
	}
	return s.accrueDelegationReward(params)
}

// ClaimRewards pays the caller's accrued balance out of the reward pool.
func (s *State) ClaimRewards(caller common.Address) (*big.Int, error) {
	bal, err := s.Rewards(caller)
	if err != nil {
		return nil, err
	}
	if bal.Sign() == 0 {
		return nil, ErrNoRewardToClaim
	}
	roles, err := s.Roles()
	if err != nil {
		return nil, err
	}
	if err = s.setRewards(caller, new(big.Int)); err != nil {
		return nil, err
	}
	l, err := s.Ledger()
	if err != nil {
		return nil, err
	}
	ev, err := l.Send(roles.RewardPool, caller, bal)
	if err != nil {
		return nil, err
	}
	s.emit(types.EncodeEventTransfer(ev))
	s.emit(types.EncodeEventReward(&types.EventReward{
		Address: caller.Hex(),
		Kind:    types.RewardKindClaim,
		Amount:  bal.String(),
	}))
	return bal, nil
}

// ClaimReferralReward pays the referred caller once and the referrer on
// every claim naming it.
func (s *State) ClaimReferralReward(caller, referrer common.Address) error {
	if caller == referrer {
		return ErrSelfReferral
	}
	r, err := s.activeMember(referrer)
	if err != nil {
		return err
	}
	if r == nil {
		return ErrReferrerNotMember
	}
	m, err := s.activeMember(caller)
	if err != nil {
		return err
	}
	if m == nil {
		return ErrReferredNotMember
	}
	if m.ReferralClaimed {
		return ErrReferralClaimed
	}
	params, err := s.Params()
	if err != nil {
		return err
	}
	roles, err := s.Roles()
	if err != nil {
		return err
	}
	l, err := s.Ledger()
	if err != nil {
		return err
	}
	payouts := []struct {
		to     common.Address
		amount *big.Int
		kind   string
	}{
		{caller, params.ReferredAmount, types.RewardKindReferred},
		{referrer, params.ReferrerAmount, types.RewardKindReferrer},
	}
	for _, p := range payouts {
		ev, err := l.Send(roles.RewardPool, p.to, p.amount)
		if err != nil {
			return err
		}
		s.emit(types.EncodeEventTransfer(ev))
		s.emit(types.EncodeEventReward(&types.EventReward{
			Address: p.to.Hex(),
			Kind:    p.kind,
			Amount:  p.amount.String(),
		}))
	}
	m.ReferralClaimed = true
	return s.setMember(m)
}
