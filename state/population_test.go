package state

import (
	"testing"

	"github.com/calehh/assembly-app/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustMember(t *testing.T, st *State, a common.Address) *types.Member {
	m, err := st.Member(a)
	require.NoError(t, err)
	require.NotNil(t, m)
	return m
}

func mustSeat(t *testing.T, st *State, idx uint64) *types.Seat {
	seat, err := st.Seat(idx)
	require.NoError(t, err)
	return seat
}

func TestApplyRules(t *testing.T) {
	st := newTestState(t, testGenesis())
	c, d := addr(1), addr(2)

	assert.ErrorIs(t, st.ApplyForCitizenship(c), ErrNotHuman)
	makeCitizens(t, st, c)
	makeDelegates(t, st, d)

	// the roles are exclusive
	assert.ErrorIs(t, st.ApplyForDelegation(c), ErrAlreadyMember)
	assert.ErrorIs(t, st.ApplyForCitizenship(d), ErrAlreadyMember)
	assert.Equal(t, types.PreconditionUnmet, types.KindOf(ErrNotHuman))

	pop, err := st.Population()
	require.NoError(t, err)
	assert.Equal(t, &types.Population{Citizens: 1, Delegates: 1, NextSeq: 2}, pop)
	assert.Equal(t, uint64(0), mustMember(t, st, c).Seq)
	assert.Equal(t, uint64(1), mustMember(t, st, d).Seq)
}

func TestAppointMovesWeight(t *testing.T) {
	st := newTestState(t, testGenesis())
	c, d1, d2 := addr(1), addr(2), addr(3)
	makeCitizens(t, st, c)
	makeDelegates(t, st, d1, d2)

	assert.ErrorIs(t, st.AppointDelegate(d1, d2), ErrNotCitizen)
	assert.ErrorIs(t, st.AppointDelegate(c, addr(9)), ErrNotDelegate)

	appoint(t, st, d1, c)
	assert.ErrorIs(t, st.AppointDelegate(c, d1), ErrAlreadyAppointed)
	assert.Equal(t, uint64(1), mustMember(t, st, d1).AppointCount())

	appoint(t, st, d2, c)
	assert.Equal(t, uint64(0), mustMember(t, st, d1).AppointCount())
	assert.Equal(t, uint64(1), mustMember(t, st, d2).AppointCount())
	assert.Equal(t, d2, mustMember(t, st, c).Appointee)
}

func TestClaimSeat(t *testing.T) {
	st := newTestState(t, testGenesis())
	c1, c2, c3 := addr(1), addr(2), addr(3)
	d1, d2 := addr(11), addr(12)
	makeCitizens(t, st, c1, c2, c3)
	makeDelegates(t, st, d1, d2)

	assert.ErrorIs(t, st.ClaimSeat(d1, 2), ErrUnknownSeat)
	assert.ErrorIs(t, st.ClaimSeat(c1, 0), ErrCallerNotDelegate)
	// a never claimed seat still needs support
	assert.ErrorIs(t, st.ClaimSeat(d1, 0), ErrInsufficientSupport)

	appoint(t, st, d1, c1)
	require.NoError(t, st.ClaimSeat(d1, 0))
	assert.ErrorIs(t, st.ClaimSeat(d1, 1), ErrAlreadySeated)
	assert.Equal(t, d1, mustSeat(t, st, 0).Delegate)

	// a tie does not displace the occupant
	appoint(t, st, d2, c2)
	assert.ErrorIs(t, st.ClaimSeat(d2, 0), ErrInsufficientSupport)

	appoint(t, st, d2, c3)
	require.NoError(t, st.ClaimSeat(d2, 0))
	assert.Equal(t, d2, mustSeat(t, st, 0).Delegate)
	assert.False(t, mustMember(t, st, d1).Seated)
	m := mustMember(t, st, d2)
	assert.True(t, m.Seated)
	assert.Equal(t, uint64(0), m.Seat)

	// the displaced delegate may take the free seat with its remaining support
	require.NoError(t, st.ClaimSeat(d1, 1))
}

func TestDistrustAndExpelCitizen(t *testing.T) {
	st := newTestState(t, testGenesis())
	c, d := addr(1), addr(11)
	makeCitizens(t, st, c)
	makeDelegates(t, st, d)
	appoint(t, st, d, c)

	assert.ErrorIs(t, st.Distrust(c, d), types.ErrNotOwner)
	assert.ErrorIs(t, st.Distrust(owner, addr(9)), ErrUnknownMember)
	assert.ErrorIs(t, st.Expel(owner, c), ErrCannotExpel)

	require.NoError(t, st.Distrust(owner, c))
	assert.ErrorIs(t, st.Distrust(owner, c), ErrAlreadyDistrusted)
	require.NoError(t, st.Expel(owner, c))

	m := mustMember(t, st, c)
	assert.Equal(t, types.RoleNone, m.Role)
	assert.Equal(t, common.Address{}, m.Appointee)
	assert.Equal(t, uint64(0), mustMember(t, st, d).AppointCount())
	pop, err := st.Population()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), pop.Citizens)

	assert.ErrorIs(t, st.Expel(owner, c), ErrUnknownMember)
	// an expelled human may apply again
	require.NoError(t, st.ApplyForCitizenship(c))
	assert.Equal(t, uint64(2), mustMember(t, st, c).Seq)
}

func TestExpelDelegateVacatesSeat(t *testing.T) {
	st := newTestState(t, testGenesis())
	c1, c2 := addr(1), addr(2)
	d1, d2 := addr(11), addr(12)
	makeCitizens(t, st, c1, c2)
	makeDelegates(t, st, d1, d2)
	appoint(t, st, d1, c1, c2)
	require.NoError(t, st.ClaimSeat(d1, 0))

	// losing the human flag is enough
	require.NoError(t, st.DeregisterHumans(creator, []common.Address{d1}))
	before := len(st.Events())
	require.NoError(t, st.Expel(owner, d1))

	// every citizen that lost its appointment is reported
	var cleared []string
	for _, ev := range st.Events()[before:] {
		if ev.Type != types.EventAppointType {
			continue
		}
		app := types.DecodeEventAppoint(ev)
		assert.Equal(t, "", app.Delegate)
		assert.Equal(t, d1.Hex(), app.Previous)
		cleared = append(cleared, app.Citizen)
	}
	assert.ElementsMatch(t, []string{c1.Hex(), c2.Hex()}, cleared)

	seat := mustSeat(t, st, 0)
	assert.True(t, seat.Vacant)
	assert.Equal(t, d1, seat.Delegate)
	assert.Equal(t, common.Address{}, mustMember(t, st, c1).Appointee)
	assert.Equal(t, common.Address{}, mustMember(t, st, c2).Appointee)

	// a vacant seat is free for any delegate
	assert.Equal(t, uint64(0), mustMember(t, st, d2).AppointCount())
	require.NoError(t, st.ClaimSeat(d2, 0))
	seat = mustSeat(t, st, 0)
	assert.False(t, seat.Vacant)
	assert.Equal(t, d2, seat.Delegate)
}
