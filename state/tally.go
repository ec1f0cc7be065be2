package state

import (
	"fmt"
	"math/big"

	"github.com/calehh/assembly-app/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
)

var (
	ErrUnknownTally         = types.NewError(types.InvalidReference, "unknown tally")
	ErrUnknownProposal      = types.NewError(types.InvalidReference, "unknown proposal")
	ErrProposalNotSubmitted = types.NewError(types.InvalidState, "proposal not submitted")
	ErrAlreadyTallied       = types.NewError(types.InvalidState, "proposal already tallied")
	ErrDelegateYayOnly      = types.NewError(types.InvalidParameter, "delegate votes are yay only")
	ErrNotDeliberation      = types.NewError(types.InvalidState, "tally is not in deliberation")
	ErrNotRevocation        = types.NewError(types.InvalidState, "tally is not in revocation")
	ErrNotSeated            = types.NewError(types.PreconditionUnmet, "caller is not a seated delegate")
	ErrAlreadyVoted         = types.NewError(types.InvalidState, "already voted")
	ErrQuorumNotReached     = types.NewError(types.PreconditionUnmet, "quorum not reached")
	ErrNotApproved          = types.NewError(types.InvalidState, "tally is not approved")
	ErrStepNotExecuted      = types.NewError(types.ExecutionFailure, "step not executed")
)

func (s *State) lookupUint(key string) (n uint64, found bool, err error) {
	val, err := s.store.Get([]byte(key))
	if err != nil || val == nil {
		return 0, false, err
	}
	err = rlp.DecodeBytes(val, &n)
	return n, err == nil, err
}

func (s *State) Tally(idx uint64) (*types.Tally, error) {
	t := new(types.Tally)
	found, err := s.getJSON(fmt.Sprintf(KeyTally, idx), t)
	if err != nil || !found {
		return nil, err
	}
	return t, nil
}

func (s *State) setTally(t *types.Tally) error {
	return s.setJSON(fmt.Sprintf(KeyTally, t.Index), t)
}

func (s *State) mustTally(idx uint64) (*types.Tally, error) {
	t, err := s.Tally(idx)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrUnknownTally
	}
	return t, nil
}

// TallyOf returns the tally id of a proposal.
func (s *State) TallyOf(proposal uint64) (idx uint64, found bool, err error) {
	return s.lookupUint(fmt.Sprintf(KeyTallyOf, proposal))
}

func (s *State) TallyCount() (uint64, error) {
	return s.getUint(KeyTallyIndex)
}

func (s *State) openTallies() (ids []uint64, err error) {
	val, err := s.store.Get([]byte(KeyOpenTallies))
	if err != nil || val == nil {
		return nil, err
	}
	err = rlp.DecodeBytes(val, &ids)
	return
}

func (s *State) setOpenTallies(ids []uint64) error {
	if len(ids) == 0 {
		return s.store.Delete([]byte(KeyOpenTallies))
	}
	val, err := rlp.EncodeToBytes(ids)
	if err != nil {
		return err
	}
	return s.store.Set([]byte(KeyOpenTallies), val)
}

func (s *State) closeTally(idx uint64) error {
	ids, err := s.openTallies()
	if err != nil {
		return err
	}
	for i, id := range ids {
		if id == idx {
			return s.setOpenTallies(append(ids[:i:i], ids[i+1:]...))
		}
	}
	return nil
}

// Vote returns what voter cast on tally idx.
func (s *State) Vote(idx uint64, voter common.Address) (types.Vote, error) {
	return s.vote(idx, voter)
}

func (s *State) vote(idx uint64, voter common.Address) (types.Vote, error) {
	val, err := s.store.Get([]byte(fmt.Sprintf(KeyVote, idx, voter.Bytes())))
	if err != nil || len(val) == 0 {
		return types.VoteNone, err
	}
	return types.Vote(val[0]), nil
}

func (s *State) setVote(idx uint64, voter common.Address, v types.Vote) error {
	return s.store.Set([]byte(fmt.Sprintf(KeyVote, idx, voter.Bytes())), []byte{byte(v)})
}

func (s *State) clearVote(idx uint64, voter common.Address) error {
	return s.store.Delete([]byte(fmt.Sprintf(KeyVote, idx, voter.Bytes())))
}

// forEachRunningTally visits the open tallies whose voting has not ended
// and saves the ones fn reports as changed.
func (s *State) forEachRunningTally(fn func(t *types.Tally) (bool, error)) error {
	ids, err := s.openTallies()
	if err != nil {
		return err
	}
	now := s.Now()
	for _, id := range ids {
		t, err := s.mustTally(id)
		if err != nil {
			return err
		}
		if t.PhaseAt(now) == types.PhaseEnded {
			continue
		}
		changed, err := fn(t)
		if err != nil {
			return err
		}
		if changed {
			if err = s.setTally(t); err != nil {
				return err
			}
		}
	}
	return nil
}

// refreshOpenTallies recomputes weight and provisional status of every
// running tally after a membership or seat change.
func (s *State) refreshOpenTallies() error {
	params, err := s.Params()
	if err != nil {
		return err
	}
	return s.forEachRunningTally(func(t *types.Tally) (bool, error) {
		before := *t
		if err := s.recompute(t, params); err != nil {
			return false, err
		}
		return before.DelegatedYays != t.DelegatedYays || before.Status != t.Status, nil
	})
}

// recompute sets delegatedYays from the current appointment counts of the
// seated delegates that voted yay, then the provisional status.
func (s *State) recompute(t *types.Tally, params *types.Params) error {
	var sum uint64
	for _, addr := range t.Yays {
		d, err := s.activeMember(addr)
		if err != nil {
			return err
		}
		if d == nil || d.Role != types.RoleDelegate || !d.Seated {
			continue
		}
		sum += d.AppointCount()
	}
	t.DelegatedYays = sum
	if approved(t, params.VotingPercentThreshold) {
		t.Status = types.TallyProvisionalApproved
	} else {
		t.Status = types.TallyProvisionalNotApproved
	}
	return nil
}

func approved(t *types.Tally, threshold uint64) bool {
	n := t.CitizenCount
	if n == 0 {
		return false
	}
	need := new(big.Int).Mul(new(big.Int).SetUint64(threshold), new(big.Int).SetUint64(n))
	reaches := func(v uint64) bool {
		return new(big.Int).Mul(new(big.Int).SetUint64(v), big.NewInt(100)).Cmp(need) >= 0
	}
	return (reaches(t.DelegatedYays) || reaches(t.CitizenYays)) && !reaches(t.CitizenNays)
}

func (s *State) CreateTally(caller common.Address, proposal uint64) (idx uint64, err error) {
	if err = s.requireTrusted(caller); err != nil {
		return
	}
	p, err := s.Proposal(proposal)
	if err != nil {
		return
	}
	if p == nil {
		return 0, ErrUnknownProposal
	}
	if p.Status != types.ProposalSubmitted {
		return 0, ErrProposalNotSubmitted
	}
	_, tallied, err := s.TallyOf(proposal)
	if err != nil {
		return
	}
	if tallied {
		return 0, ErrAlreadyTallied
	}
	params, err := s.Params()
	if err != nil {
		return
	}
	pop, err := s.Population()
	if err != nil {
		return
	}
	idx, err = s.TallyCount()
	if err != nil {
		return
	}
	now := s.Now()
	t := &types.Tally{
		Index:           idx,
		Proposal:        proposal,
		Creator:         caller,
		Submission:      now,
		RevocationStart: now + params.TallyDuration/2,
		VotingEnd:       now + params.TallyDuration,
		CitizenCount:    pop.Citizens,
		CitizenSeq:      pop.NextSeq,
		Status:          types.TallyProvisionalNotApproved,
		Yays:            []common.Address{},
	}
	if err = s.setTally(t); err != nil {
		return
	}
	if err = s.setUint(KeyTallyIndex, idx+1); err != nil {
		return
	}
	if err = s.setUint(fmt.Sprintf(KeyTallyOf, proposal), idx); err != nil {
		return
	}
	ids, err := s.openTallies()
	if err != nil {
		return
	}
	if err = s.setOpenTallies(append(ids, idx)); err != nil {
		return
	}
	s.emit(types.EncodeEventTally(&types.EventTally{
		Tally:           idx,
		Proposal:        proposal,
		Creator:         caller.Hex(),
		Submission:      t.Submission,
		RevocationStart: t.RevocationStart,
		VotingEnd:       t.VotingEnd,
		CitizenCount:    t.CitizenCount,
	}))
	return idx, nil
}

// CastDelegateVote records a yay of a seated delegate. There is no
// delegate nay: abstaining is the only way to withhold weight.
func (s *State) CastDelegateVote(caller common.Address, idx uint64, yay bool) error {
	if !yay {
		return ErrDelegateYayOnly
	}
	t, err := s.mustTally(idx)
	if err != nil {
		return err
	}
	if t.PhaseAt(s.Now()) != types.PhaseDeliberation {
		return ErrNotDeliberation
	}
	m, err := s.activeMember(caller)
	if err != nil {
		return err
	}
	if m == nil || m.Role != types.RoleDelegate || !m.Seated {
		return ErrNotSeated
	}
	v, err := s.vote(idx, caller)
	if err != nil {
		return err
	}
	if v != types.VoteNone {
		return ErrAlreadyVoted
	}
	if err = s.setVote(idx, caller, types.VoteYay); err != nil {
		return err
	}
	t.Yays = append(t.Yays, caller)
	if err = s.setTally(t); err != nil {
		return err
	}
	s.emit(types.EncodeEventVote(&types.EventVote{
		Tally: idx,
		Voter: caller.Hex(),
		Role:  types.RoleDelegate,
		Vote:  types.VoteYay,
	}))
	_, err = s.TallyUp(caller, idx)
	return err
}

func (s *State) CastCitizenVote(caller common.Address, idx uint64, yay bool) error {
	t, err := s.mustTally(idx)
	if err != nil {
		return err
	}
	if t.PhaseAt(s.Now()) != types.PhaseRevocation {
		return ErrNotRevocation
	}
	m, err := s.activeMember(caller)
	if err != nil {
		return err
	}
	if m == nil || m.Role != types.RoleCitizen {
		return ErrNotCitizen
	}
	v, err := s.vote(idx, caller)
	if err != nil {
		return err
	}
	if v != types.VoteNone {
		return ErrAlreadyVoted
	}
	vote := types.VoteNay
	if yay {
		vote = types.VoteYay
		t.CitizenYays++
	} else {
		t.CitizenNays++
	}
	if err = s.setVote(idx, caller, vote); err != nil {
		return err
	}
	if err = s.setTally(t); err != nil {
		return err
	}
	s.emit(types.EncodeEventVote(&types.EventVote{
		Tally: idx,
		Voter: caller.Hex(),
		Role:  types.RoleCitizen,
		Vote:  vote,
	}))
	_, err = s.TallyUp(caller, idx)
	return err
}

// TallyUp recomputes the status of tally idx. Once voting has ended the
// tally is finalized, which needs quorum unless the creator calls.
func (s *State) TallyUp(caller common.Address, idx uint64) (status types.TallyStatus, err error) {
	t, err := s.mustTally(idx)
	if err != nil {
		return
	}
	if t.Status.Final() {
		return t.Status, nil
	}
	params, err := s.Params()
	if err != nil {
		return
	}
	if t.PhaseAt(s.Now()) != types.PhaseEnded {
		if err = s.recompute(t, params); err != nil {
			return
		}
	} else {
		if t.CitizenYays+t.CitizenNays < params.Quorum {
			roles, err := s.Roles()
			if err != nil {
				return status, err
			}
			if caller != roles.Creator {
				return status, ErrQuorumNotReached
			}
		}
		if approved(t, params.VotingPercentThreshold) {
			t.Status = types.TallyApproved
		} else {
			t.Status = types.TallyNotApproved
		}
		if err = s.closeTally(idx); err != nil {
			return
		}
	}
	if err = s.setTally(t); err != nil {
		return
	}
	s.emitTallied(t)
	return t.Status, nil
}

func (s *State) emitTallied(t *types.Tally) {
	s.emit(types.EncodeEventTallied(&types.EventTallied{
		Tally:         t.Index,
		Status:        t.Status,
		DelegatedYays: t.DelegatedYays,
		CitizenYays:   t.CitizenYays,
		CitizenNays:   t.CitizenNays,
		CitizenCount:  t.CitizenCount,
	}))
}

// Enact runs the next step of an approved tally's proposal as the assembly.
// The tally becomes Enacted and the caller is rewarded once the last step
// has run.
func (s *State) Enact(caller common.Address, idx uint64) error {
	t, err := s.mustTally(idx)
	if err != nil {
		return err
	}
	if t.Status != types.TallyApproved {
		return ErrNotApproved
	}
	roles, err := s.Roles()
	if err != nil {
		return err
	}
	if err = s.ExecuteProposal(roles.Assembly, t.Proposal); err != nil {
		return err
	}
	p, err := s.Proposal(t.Proposal)
	if err != nil {
		return err
	}
	if p.Status != types.ProposalFullyExecuted {
		return nil
	}
	params, err := s.Params()
	if err != nil {
		return err
	}
	reward := executionReward(params, s.Now()-t.VotingEnd)
	if err = s.creditReward(caller, reward, types.RewardKindExecution); err != nil {
		return err
	}
	t.Status = types.TallyEnacted
	if err = s.setTally(t); err != nil {
		return err
	}
	s.emit(types.EncodeEventEnacted(&types.EventEnacted{
		Tally:    idx,
		Proposal: t.Proposal,
		Executor: caller.Hex(),
	}))
	return nil
}

// Execute is TallyUp followed by Enact.
func (s *State) Execute(caller common.Address, idx uint64) error {
	if _, err := s.TallyUp(caller, idx); err != nil {
		return err
	}
	return s.Enact(caller, idx)
}

// TallyView is the read model of a tally with its phase at the block time.
func (s *State) TallyView(idx uint64) (*types.TallyView, error) {
	t, err := s.mustTally(idx)
	if err != nil {
		return nil, err
	}
	now := s.Now()
	return &types.TallyView{Tally: *t, Phase: t.PhaseAt(now), Now: now}, nil
}
