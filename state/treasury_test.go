package state

import (
	"errors"
	"math/big"
	"testing"

	"github.com/calehh/assembly-app/tx"
	"github.com/calehh/assembly-app/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// approvedTally puts proposal pid through a tally the creator finalizes
// as Approved, and leaves the clock at voting end.
func approvedTally(t *testing.T, st *State, pid uint64) uint64 {
	makeCitizens(t, st, c1)
	makeDelegates(t, st, d1)
	appoint(t, st, d1, c1)
	require.NoError(t, st.ClaimSeat(d1, 0))
	id, err := st.CreateTally(d1, pid)
	require.NoError(t, err)
	require.NoError(t, st.CastDelegateVote(d1, id, true))
	st.advance(1000)
	status, err := st.TallyUp(creator, id)
	require.NoError(t, err)
	require.Equal(t, types.TallyApproved, status)
	return id
}

func TestSubmitTransactionStepRules(t *testing.T) {
	st := newTestState(t, testGenesis())
	pid, err := st.CreateProposal(creator)
	require.NoError(t, err)
	dest := addr(0x77)
	one := big.NewInt(1)

	_, err = st.SubmitTransaction(creator, pid, 1, dest, one, nil)
	assert.ErrorIs(t, err, ErrPriorStepsEmpty)
	_, err = st.SubmitTransaction(c1, pid, 0, dest, one, nil)
	assert.ErrorIs(t, err, types.ErrNotCreator)

	for _, step := range []uint64{0, 0, 1, 1, 2} {
		_, err = st.SubmitTransaction(creator, pid, step, dest, one, nil)
		require.NoError(t, err)
	}
	_, err = st.SubmitTransaction(creator, pid, 1, dest, one, nil)
	assert.ErrorIs(t, err, ErrStepClosed)
	assert.Equal(t, types.InvalidParameter, types.KindOf(err))
	_, err = st.SubmitTransaction(creator, pid, 4, dest, one, nil)
	assert.ErrorIs(t, err, ErrPriorStepsEmpty)
	_, err = st.SubmitTransaction(creator, pid, 2, dest, big.NewInt(-1), nil)
	assert.ErrorIs(t, err, ErrNegativeAmount)

	forbidden, err := tx.EncodeCall(tx.TxTypeEnact, &tx.TallyRefTx{Tally: 0})
	require.NoError(t, err)
	_, err = st.SubmitTransaction(creator, pid, 2, dest, one, forbidden)
	assert.ErrorIs(t, err, ErrInnerCallForbidden)
	_, err = st.SubmitTransaction(creator, pid, 2, dest, one, []byte("garbage"))
	assert.Equal(t, types.InvalidParameter, types.KindOf(err))

	require.NoError(t, st.SubmitProposal(creator, pid))
	assert.ErrorIs(t, st.SubmitProposal(creator, pid), ErrProposalSubmitted)
	_, err = st.SubmitTransaction(creator, pid, 2, dest, one, nil)
	assert.ErrorIs(t, err, ErrProposalSubmitted)

	view, err := st.ProposalView(pid)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), view.StepCount)
	assert.Len(t, view.Transactions[0], 2)
	assert.Len(t, view.Transactions[1], 2)
	assert.Len(t, view.Transactions[2], 1)
}

func TestSubmitEmptyProposal(t *testing.T) {
	st := newTestState(t, testGenesis())
	pid, err := st.CreateProposal(creator)
	require.NoError(t, err)
	assert.ErrorIs(t, st.SubmitProposal(creator, pid), ErrEmptyProposal)
	assert.ErrorIs(t, st.SubmitProposal(creator, pid+1), ErrUnknownProposal)
}

func TestExecuteProposalNeedsAuthority(t *testing.T) {
	st := newTestState(t, testGenesis())
	pid := submittedProposal(t, st, 0, 1)
	assert.ErrorIs(t, st.ExecuteProposal(creator, pid), types.ErrNotAuthority)

	created, err := st.CreateProposal(creator)
	require.NoError(t, err)
	assert.ErrorIs(t, st.ExecuteProposal(types.AssemblyAddress, created), ErrProposalNotExecutable)

	require.NoError(t, st.ExecuteProposal(types.AssemblyAddress, pid))
	assert.ErrorIs(t, st.ExecuteProposal(types.AssemblyAddress, pid), ErrProposalNotExecutable)
}

// Three steps of four transfers of 10 with only 100 in the treasury: the
// last step fails as a whole until the treasury is topped up.
func TestStepAtomicity(t *testing.T) {
	st := newTestState(t, testGenesis())
	fund(t, st, types.TreasuryAddress, 100)
	pid := submittedProposal(t, st, 10, 4, 4, 4)
	id := approvedTally(t, st, pid)

	require.NoError(t, st.Enact(c1, id))
	require.NoError(t, st.Enact(c1, id))
	p, err := st.Proposal(pid)
	require.NoError(t, err)
	assert.Equal(t, types.ProposalPartiallyExecuted, p.Status)
	assert.Equal(t, uint64(2), p.ExecutedSteps)
	assert.Equal(t, int64(20), balanceOf(t, st, types.TreasuryAddress))

	for i := 0; i < 2; i++ {
		err = st.Enact(c1, id)
		assert.ErrorIs(t, err, ErrStepNotExecuted)
		assert.Equal(t, types.ExecutionFailure, types.KindOf(err))
	}
	// the first two transfers of the step would have fit but are not kept
	assert.Equal(t, int64(20), balanceOf(t, st, types.TreasuryAddress))
	view, err := st.ProposalView(pid)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), view.ExecutedSteps)
	for _, tr := range view.Transactions[2] {
		assert.False(t, tr.Executed)
		assert.Equal(t, int64(0), balanceOf(t, st, tr.Destination))
	}
	assert.Equal(t, types.TallyApproved, mustTally(t, st, id).Status)

	fund(t, st, types.TreasuryAddress, 20)
	require.NoError(t, st.Enact(c1, id))
	view, err = st.ProposalView(pid)
	require.NoError(t, err)
	assert.Equal(t, types.ProposalFullyExecuted, view.Status)
	for _, step := range view.Transactions {
		for _, tr := range step {
			assert.True(t, tr.Executed)
			assert.Equal(t, int64(10), balanceOf(t, st, tr.Destination))
		}
	}
	assert.Equal(t, types.TallyEnacted, mustTally(t, st, id).Status)
	assert.ErrorIs(t, st.Enact(c1, id), ErrNotApproved)
}

func TestExecutionRewardIsCapped(t *testing.T) {
	g := testGenesis()
	g.Params.ExecRewardExponentMax = 10
	st := newTestState(t, g)
	pid := submittedProposal(t, st, 0, 1)
	id := approvedTally(t, st, pid)

	st.advance(11)
	executor := addr(0xee)
	require.NoError(t, st.Execute(executor, id))
	reward, err := st.Rewards(executor)
	require.NoError(t, err)
	assert.Equal(t, int64(1024), reward.Int64())
}

func TestExecutionRewardAtVotingEnd(t *testing.T) {
	st := newTestState(t, testGenesis())
	pid := submittedProposal(t, st, 0, 1)
	id := approvedTally(t, st, pid)

	executor := addr(0xee)
	require.NoError(t, st.Enact(executor, id))
	reward, err := st.Rewards(executor)
	require.NoError(t, err)
	// base^0
	assert.Equal(t, int64(1), reward.Int64())

	params, err := st.Params()
	require.NoError(t, err)
	assert.Equal(t, int64(1), executionReward(params, -50).Int64())
	assert.Equal(t, int64(8), executionReward(params, 3).Int64())
}

func TestInnerCallsRunWithTreasurySender(t *testing.T) {
	st := newTestState(t, testGenesis())
	d := &recordingDispatcher{}
	st.SetDispatcher(d)

	data, err := tx.EncodeCall(tx.TxTypeSetParam, &tx.SetParamTx{Param: types.ParamQuorum, Value: big.NewInt(1)})
	require.NoError(t, err)
	pid, err := st.CreateProposal(creator)
	require.NoError(t, err)
	_, err = st.SubmitTransaction(creator, pid, 0, common.Address{}, nil, data)
	require.NoError(t, err)
	require.NoError(t, st.SubmitProposal(creator, pid))
	id := approvedTally(t, st, pid)

	d.err = errors.New("reverted")
	assert.ErrorIs(t, st.Enact(c1, id), ErrStepNotExecuted)
	assert.Empty(t, d.calls)

	d.err = nil
	require.NoError(t, st.Enact(c1, id))
	require.Len(t, d.calls, 1)
	assert.Equal(t, tx.TxTypeSetParam, d.calls[0].Type)
}
