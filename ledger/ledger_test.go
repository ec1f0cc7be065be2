package ledger

import (
	"math/big"
	"testing"

	"github.com/calehh/assembly-app/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapStore map[string][]byte

func (m mapStore) Get(key []byte) ([]byte, error) { return m[string(key)], nil }

func (m mapStore) Set(key, value []byte) error {
	m[string(key)] = value
	return nil
}

func (m mapStore) Delete(key []byte) error {
	delete(m, string(key))
	return nil
}

var (
	governor = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	alice    = common.HexToAddress("0x0000000000000000000000000000000000000001")
	bob      = common.HexToAddress("0x0000000000000000000000000000000000000002")
)

func newTestLedger(t *testing.T) *Ledger {
	l := New(mapStore{}, governor)
	require.NoError(t, l.Mint(alice, big.NewInt(100)))
	return l
}

func balance(t *testing.T, l *Ledger, addr common.Address) int64 {
	bal, err := l.BalanceOf(addr)
	require.NoError(t, err)
	return bal.Int64()
}

func TestSend(t *testing.T) {
	l := newTestLedger(t)

	ev, err := l.Send(alice, bob, big.NewInt(40))
	require.NoError(t, err)
	assert.Equal(t, "40", ev.Amount)
	assert.Equal(t, int64(60), balance(t, l, alice))
	assert.Equal(t, int64(40), balance(t, l, bob))

	_, err = l.Send(alice, bob, big.NewInt(61))
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Equal(t, int64(60), balance(t, l, alice))
}

func TestBlockPolicy(t *testing.T) {
	l := newTestLedger(t)

	_, err := l.Block(alice, bob)
	assert.ErrorIs(t, err, types.ErrNotGovernor)

	_, err = l.Block(governor, alice)
	require.NoError(t, err)
	_, err = l.Block(governor, alice)
	assert.ErrorIs(t, err, ErrAlreadyBlocked)

	_, err = l.Send(alice, bob, big.NewInt(1))
	assert.ErrorIs(t, err, ErrSenderBlocked)

	// the governor can still move funds of blocked addresses
	_, err = l.GovernorSend(governor, alice, bob, big.NewInt(10))
	require.NoError(t, err)
	_, err = l.Send(bob, alice, big.NewInt(1))
	assert.ErrorIs(t, err, ErrRecipientBlocked)

	_, err = l.Unblock(governor, alice)
	require.NoError(t, err)
	_, err = l.Unblock(governor, alice)
	assert.ErrorIs(t, err, ErrNotBlocked)
	_, err = l.Send(bob, alice, big.NewInt(1))
	require.NoError(t, err)
	assert.Equal(t, int64(91), balance(t, l, alice))
}

func TestGovernorSendRequiresGovernor(t *testing.T) {
	l := newTestLedger(t)
	_, err := l.GovernorSend(bob, alice, bob, big.NewInt(1))
	assert.Equal(t, types.Authorization, types.KindOf(err))
}

func TestParseAmount(t *testing.T) {
	v, err := ParseAmount("1.5")
	require.NoError(t, err)
	assert.Equal(t, "1500000000000000000", v.String())
	assert.Equal(t, "1.5", FormatAmount(v))

	_, err = ParseAmount("-1")
	assert.Error(t, err)
	_, err = ParseAmount("0.0000000000000000001")
	assert.Error(t, err)
}
