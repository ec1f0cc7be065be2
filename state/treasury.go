package state

import (
	"fmt"
	"math/big"

	"github.com/calehh/assembly-app/tx"
	"github.com/calehh/assembly-app/types"
	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrProposalSubmitted     = types.NewError(types.InvalidState, "proposal already submitted")
	ErrPriorStepsEmpty       = types.NewError(types.PreconditionUnmet, "fill prior steps first")
	ErrStepClosed            = types.NewError(types.InvalidParameter, "step is closed")
	ErrEmptyProposal         = types.NewError(types.PreconditionUnmet, "proposal has no transactions")
	ErrProposalNotExecutable = types.NewError(types.InvalidState, "proposal is not executable")
	ErrInvalidCall           = types.NewError(types.InvalidParameter, "invalid call data")
	ErrInnerCallForbidden    = types.NewError(types.InvalidParameter, "call type not allowed inside a proposal")
)

func (s *State) Proposal(idx uint64) (*types.Proposal, error) {
	p := new(types.Proposal)
	found, err := s.getJSON(fmt.Sprintf(KeyProposal, idx), p)
	if err != nil || !found {
		return nil, err
	}
	return p, nil
}

func (s *State) setProposal(p *types.Proposal) error {
	return s.setJSON(fmt.Sprintf(KeyProposal, p.Index), p)
}

func (s *State) mustProposal(idx uint64) (*types.Proposal, error) {
	p, err := s.Proposal(idx)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrUnknownProposal
	}
	return p, nil
}

func (s *State) Transaction(idx uint64) (*types.Transaction, error) {
	t := new(types.Transaction)
	found, err := s.getJSON(fmt.Sprintf(KeyTransaction, idx), t)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNotFound
	}
	return t, nil
}

func (s *State) setTransaction(t *types.Transaction) error {
	return s.setJSON(fmt.Sprintf(KeyTransaction, t.Index), t)
}

func (s *State) ProposalView(idx uint64) (*types.ProposalView, error) {
	p, err := s.mustProposal(idx)
	if err != nil {
		return nil, err
	}
	view := &types.ProposalView{Proposal: *p, Transactions: make([][]types.Transaction, len(p.Steps))}
	for i, step := range p.Steps {
		view.Transactions[i] = make([]types.Transaction, 0, len(step))
		for _, id := range step {
			t, err := s.Transaction(id)
			if err != nil {
				return nil, err
			}
			view.Transactions[i] = append(view.Transactions[i], *t)
		}
	}
	return view, nil
}

func (s *State) emitProposal(p *types.Proposal) {
	s.emit(types.EncodeEventProposal(&types.EventProposal{
		Proposal:  p.Index,
		Status:    p.Status,
		StepCount: p.StepCount,
	}))
}

func (s *State) CreateProposal(caller common.Address) (idx uint64, err error) {
	if err = s.requireCreator(caller); err != nil {
		return
	}
	idx, err = s.getUint(KeyProposalIdx)
	if err != nil {
		return
	}
	p := &types.Proposal{
		Index:  idx,
		Status: types.ProposalCreated,
		Steps:  [][]uint64{},
	}
	if err = s.setProposal(p); err != nil {
		return
	}
	if err = s.setUint(KeyProposalIdx, idx+1); err != nil {
		return
	}
	s.emitProposal(p)
	return idx, nil
}

// checkCall rejects call data that could not run when the step executes.
func checkCall(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	call, err := tx.DecodeCall(data)
	if err != nil {
		return ErrInvalidCall.Wrap(err)
	}
	if !call.Type.Inner() {
		return ErrInnerCallForbidden
	}
	return nil
}

// SubmitTransaction appends a transaction to step of a proposal still
// being written. Only the last step or a new one right after it is open.
func (s *State) SubmitTransaction(caller common.Address, proposal, step uint64, dest common.Address, value *big.Int, data []byte) (idx uint64, err error) {
	if err = s.requireCreator(caller); err != nil {
		return
	}
	p, err := s.mustProposal(proposal)
	if err != nil {
		return
	}
	if p.Status != types.ProposalCreated {
		return 0, ErrProposalSubmitted
	}
	n := uint64(len(p.Steps))
	if step > n {
		return 0, ErrPriorStepsEmpty
	}
	if n > 0 && step < n-1 {
		return 0, ErrStepClosed
	}
	if value == nil {
		value = new(big.Int)
	}
	if value.Sign() < 0 {
		return 0, ErrNegativeAmount
	}
	if err = checkCall(data); err != nil {
		return
	}
	idx, err = s.getUint(KeyTxIndex)
	if err != nil {
		return
	}
	t := &types.Transaction{
		Index:       idx,
		Proposal:    proposal,
		Step:        step,
		Destination: dest,
		Value:       new(big.Int).Set(value),
		Data:        common.CopyBytes(data),
	}
	if err = s.setTransaction(t); err != nil {
		return
	}
	if err = s.setUint(KeyTxIndex, idx+1); err != nil {
		return
	}
	if step == n {
		p.Steps = append(p.Steps, []uint64{})
	}
	p.Steps[step] = append(p.Steps[step], idx)
	if err = s.setProposal(p); err != nil {
		return
	}
	s.emit(types.EncodeEventTransaction(&types.EventTransaction{
		Proposal:    proposal,
		Step:        step,
		Transaction: idx,
		Destination: dest.Hex(),
		Value:       t.Value.String(),
		Data:        t.Data,
	}))
	return idx, nil
}

// SubmitProposal freezes the transaction set.
func (s *State) SubmitProposal(caller common.Address, proposal uint64) error {
	if err := s.requireCreator(caller); err != nil {
		return err
	}
	p, err := s.mustProposal(proposal)
	if err != nil {
		return err
	}
	if p.Status != types.ProposalCreated {
		return ErrProposalSubmitted
	}
	if p.TxCount() == 0 {
		return ErrEmptyProposal
	}
	p.Status = types.ProposalSubmitted
	p.StepCount = uint64(len(p.Steps))
	if err = s.setProposal(p); err != nil {
		return err
	}
	s.emitProposal(p)
	return nil
}

// ExecuteProposal runs the next step of a proposal. Either every
// transaction of the step succeeds or nothing of it is kept.
func (s *State) ExecuteProposal(caller common.Address, proposal uint64) error {
	if err := s.requireAuthority(caller); err != nil {
		return err
	}
	p, err := s.mustProposal(proposal)
	if err != nil {
		return err
	}
	if p.Status != types.ProposalSubmitted && p.Status != types.ProposalPartiallyExecuted {
		return ErrProposalNotExecutable
	}
	roles, err := s.Roles()
	if err != nil {
		return err
	}
	step := p.ExecutedSteps
	branch := s.Branch()
	for _, id := range p.Steps[step] {
		if err = branch.runTransaction(roles, id); err != nil {
			s.logger.Info("proposal step failed", "proposal", proposal, "step", step, "tx", id, "err", err)
			return ErrStepNotExecuted.Wrap(err)
		}
	}
	p.ExecutedSteps++
	if p.ExecutedSteps == p.StepCount {
		p.Status = types.ProposalFullyExecuted
	} else {
		p.Status = types.ProposalPartiallyExecuted
	}
	if err = branch.setProposal(p); err != nil {
		return err
	}
	branch.emit(types.EncodeEventStep(&types.EventStep{
		Proposal:      proposal,
		Step:          step,
		ExecutedSteps: p.ExecutedSteps,
		Status:        p.Status,
	}))
	return branch.Write()
}

// runTransaction pays the value out of the treasury and dispatches the
// call data with the treasury as sender.
func (s *State) runTransaction(roles *types.Roles, id uint64) error {
	t, err := s.Transaction(id)
	if err != nil {
		return err
	}
	if t.Value != nil && t.Value.Sign() > 0 {
		l, err := s.Ledger()
		if err != nil {
			return err
		}
		ev, err := l.Send(roles.Treasury, t.Destination, t.Value)
		if err != nil {
			return err
		}
		s.emit(types.EncodeEventTransfer(ev))
	}
	if len(t.Data) > 0 {
		call, err := tx.DecodeCall(t.Data)
		if err != nil {
			return ErrInvalidCall.Wrap(err)
		}
		if !call.Type.Inner() {
			return ErrInnerCallForbidden
		}
		if s.dispatcher == nil {
			return ErrNoDispatcher
		}
		if err = s.dispatcher.Dispatch(s, roles.Treasury, call); err != nil {
			return err
		}
	}
	t.Executed = true
	return s.setTransaction(t)
}
