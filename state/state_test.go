package state

import (
	"math/big"
	"testing"

	"github.com/calehh/assembly-app/tx"
	"github.com/calehh/assembly-app/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const genesisTime = int64(1_700_000_000)

var (
	creator = addr(0xc0)
	owner   = addr(0x0a)
	funder  = addr(0xf0)
	zero    common.Address
)

func addr(i int64) common.Address {
	return common.BigToAddress(big.NewInt(i))
}

func testGenesis() *types.AppGenesis {
	g := types.DefaultAppGenesis(creator)
	g.Roles.Owner = owner
	g.Params.SeatCount = 2
	g.Params.TallyDuration = 1000
	g.Params.DelegationRewardRate = "0"
	g.Params.ReferredAmount = "0"
	g.Params.ReferrerAmount = "0"
	g.Balances = []types.GenesisBalance{{Address: funder, Amount: "1"}}
	return g
}

// newTestState opens a block state over an in-memory tree with genesis
// applied at genesisTime.
func newTestState(t *testing.T, g *types.AppGenesis) *State {
	db, err := NewMemStateDB(cmtlog.NewNopLogger())
	require.NoError(t, err)
	st := db.NewState()
	st.SetChainId("assembly-test")
	st.SetTime(genesisTime)
	require.NoError(t, st.InitGenesis(g))
	return st
}

// run executes fn the way a transaction does: on a branch that is only
// written back when fn succeeds.
func run(st *State, fn func(b *State) error) error {
	b := st.Branch()
	if err := fn(b); err != nil {
		return err
	}
	return b.Write()
}

func (s *State) advance(seconds int64) {
	s.SetTime(s.Now() + seconds)
}

func fund(t *testing.T, st *State, to common.Address, amount int64) {
	l, err := st.Ledger()
	require.NoError(t, err)
	_, err = l.Send(funder, to, big.NewInt(amount))
	require.NoError(t, err)
}

func balanceOf(t *testing.T, st *State, a common.Address) int64 {
	l, err := st.Ledger()
	require.NoError(t, err)
	bal, err := l.BalanceOf(a)
	require.NoError(t, err)
	return bal.Int64()
}

func makeHumans(t *testing.T, st *State, addrs ...common.Address) {
	require.NoError(t, st.RegisterHumans(creator, addrs))
}

func makeCitizens(t *testing.T, st *State, addrs ...common.Address) {
	makeHumans(t, st, addrs...)
	for _, a := range addrs {
		require.NoError(t, st.ApplyForCitizenship(a))
	}
}

func makeDelegates(t *testing.T, st *State, addrs ...common.Address) {
	makeHumans(t, st, addrs...)
	for _, a := range addrs {
		require.NoError(t, st.ApplyForDelegation(a))
	}
}

func appoint(t *testing.T, st *State, delegate common.Address, citizens ...common.Address) {
	for _, c := range citizens {
		require.NoError(t, st.AppointDelegate(c, delegate))
	}
}

// submittedProposal creates a proposal with steps[i] transactions of value
// each in step i and submits it.
func submittedProposal(t *testing.T, st *State, value int64, steps ...int) uint64 {
	id, err := st.CreateProposal(creator)
	require.NoError(t, err)
	for step, n := range steps {
		for i := 0; i < n; i++ {
			_, err = st.SubmitTransaction(creator, id, uint64(step), addr(int64(0x1000+step*16+i)), big.NewInt(value), nil)
			require.NoError(t, err)
		}
	}
	require.NoError(t, st.SubmitProposal(creator, id))
	return id
}

func mustTally(t *testing.T, st *State, id uint64) *types.Tally {
	tally, err := st.Tally(id)
	require.NoError(t, err)
	require.NotNil(t, tally)
	return tally
}

func TestGenesisDefaults(t *testing.T) {
	g := testGenesis()
	g.Humans = []common.Address{addr(1), addr(2)}
	st := newTestState(t, g)

	roles, err := st.Roles()
	require.NoError(t, err)
	assert.Equal(t, types.TreasuryAddress, roles.Treasury)
	assert.Equal(t, types.TreasuryAddress, roles.RewardPool)
	assert.Equal(t, types.AssemblyAddress, roles.Assembly)
	assert.Equal(t, creator, roles.OracleUpdater)

	info, err := st.OracleInfo()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), info.HumanCount)

	v, err := st.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, uint64(CurrentSchemaVersion), v)

	assert.Equal(t, int64(1_000_000_000_000_000_000), balanceOf(t, st, funder))
	assert.ErrorIs(t, st.InitGenesis(g), ErrGenesisApplied)
}

func TestBranchDiscard(t *testing.T) {
	st := newTestState(t, testGenesis())
	before, err := st.WorkingHash()
	require.NoError(t, err)

	// fails after writing the human flags and the population record
	err = run(st, func(b *State) error {
		if err := b.RegisterHumans(creator, []common.Address{addr(1)}); err != nil {
			return err
		}
		if err := b.ApplyForCitizenship(addr(1)); err != nil {
			return err
		}
		return b.ApplyForCitizenship(addr(1))
	})
	assert.ErrorIs(t, err, ErrAlreadyMember)
	assert.Empty(t, st.Events())

	after, err := st.WorkingHash()
	require.NoError(t, err)
	assert.Equal(t, before, after)

	require.NoError(t, run(st, func(b *State) error {
		return b.RegisterHumans(creator, []common.Address{addr(1)})
	}))
	assert.Len(t, st.Events(), 1)
	changed, err := st.WorkingHash()
	require.NoError(t, err)
	assert.NotEqual(t, before, changed)
}

func TestCommitAndSnapshot(t *testing.T) {
	db, err := NewMemStateDB(cmtlog.NewNopLogger())
	require.NoError(t, err)
	st := db.NewState()
	st.SetTime(genesisTime)
	require.NoError(t, st.InitGenesis(testGenesis()))
	h1, err := st.Update()
	require.NoError(t, err)
	h2, err := db.SetState(st)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
	assert.Equal(t, h2, db.State().Hash())

	next := db.NewState()
	assert.Equal(t, uint64(1), next.Header().Height)
	require.NoError(t, next.RegisterHumans(creator, []common.Address{addr(7)}))

	// uncommitted writes are invisible to the snapshot
	snap, err := db.Snapshot()
	require.NoError(t, err)
	human, err := snap.IsHuman(addr(7))
	require.NoError(t, err)
	assert.False(t, human)
	roles, err := snap.Roles()
	require.NoError(t, err)
	assert.Equal(t, creator, roles.Creator)
	require.NoError(t, snap.Branch().Write())
}

func TestNonce(t *testing.T) {
	st := newTestState(t, testGenesis())
	n, err := st.Nonce(creator)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), n)
	require.NoError(t, st.IncNonce(creator))
	require.NoError(t, st.IncNonce(creator))
	n, err = st.Nonce(creator)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), n)
}

type recordingDispatcher struct {
	calls []*tx.Call
	err   error
}

func (d *recordingDispatcher) Dispatch(st *State, sender common.Address, call *tx.Call) error {
	if d.err != nil {
		return d.err
	}
	d.calls = append(d.calls, call)
	return nil
}
