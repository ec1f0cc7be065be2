package main

import (
	"math/big"
	"testing"

	"github.com/calehh/assembly-app/tx"
	"github.com/calehh/assembly-app/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	alice = "0x00000000000000000000000000000000000000A1"
	bob   = "0x00000000000000000000000000000000000000B0"
)

func tokens(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
}

func TestSetParamBody(t *testing.T) {
	body, err := setParamBody([]string{types.ParamSeatCount, "12"})
	require.NoError(t, err)
	p := body.(*tx.SetParamTx)
	assert.Equal(t, types.ParamSeatCount, p.Param)
	assert.Equal(t, "12", p.Value.String())
	assert.Nil(t, p.Extra)

	body, err = setParamBody([]string{types.ParamReferralReward, "2", "1.5"})
	require.NoError(t, err)
	p = body.(*tx.SetParamTx)
	assert.Equal(t, 0, tokens(2).Cmp(p.Value))
	assert.Equal(t, "1500000000000000000", p.Extra.String())

	body, err = setParamBody([]string{types.ParamOwner, alice})
	require.NoError(t, err)
	p = body.(*tx.SetParamTx)
	assert.Equal(t, common.HexToAddress(alice), p.Address)
	assert.Nil(t, p.Value)

	_, err = setParamBody([]string{types.ParamOwner, "nope"})
	assert.Error(t, err)
	_, err = setParamBody([]string{types.ParamQuorum, "-1"})
	assert.Error(t, err)
	_, err = setParamBody([]string{types.ParamDelegationRewardRate, "-1"})
	assert.Error(t, err)
}

func TestAddTxBody(t *testing.T) {
	defer func() { addTxArgs = addTxArguments{} }()

	addTxArgs = addTxArguments{}
	body, err := addTxBody([]string{"3", "0", bob, "1"})
	require.NoError(t, err)
	st := body.(*tx.SubmitTransactionTx)
	assert.Equal(t, uint64(3), st.Proposal)
	assert.Equal(t, uint64(0), st.Step)
	assert.Equal(t, common.HexToAddress(bob), st.Destination)
	assert.Equal(t, 0, tokens(1).Cmp(st.Value))
	assert.Empty(t, st.Data)

	addTxArgs = addTxArguments{Data: "0x0102"}
	body, err = addTxBody([]string{"3", "1", bob, "0"})
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2}, body.(*tx.SubmitTransactionTx).Data)

	addTxArgs = addTxArguments{CallType: "setParam", Call: `{"param":"quorum","value":4}`}
	body, err = addTxBody([]string{"3", "1", bob, "0"})
	require.NoError(t, err)
	call, err := tx.DecodeCall(body.(*tx.SubmitTransactionTx).Data)
	require.NoError(t, err)
	assert.Equal(t, tx.TxTypeSetParam, call.Type)
	sp := call.Tx.(*tx.SetParamTx)
	assert.Equal(t, types.ParamQuorum, sp.Param)
	assert.Equal(t, "4", sp.Value.String())

	// tally driving calls can not be nested in a proposal
	addTxArgs = addTxArguments{CallType: "enact", Call: `{"tally":0}`}
	_, err = addTxBody([]string{"3", "1", bob, "0"})
	assert.Error(t, err)

	addTxArgs = addTxArguments{CallType: "noSuchCall"}
	_, err = addTxBody([]string{"3", "1", bob, "0"})
	assert.Error(t, err)

	addTxArgs = addTxArguments{Data: "0x01", CallType: "setParam"}
	_, err = addTxBody([]string{"3", "1", bob, "0"})
	assert.Error(t, err)

	addTxArgs = addTxArguments{}
	_, err = addTxBody([]string{"3", "1", "bob", "0"})
	assert.Error(t, err)
}

func TestVoteBody(t *testing.T) {
	body, err := voteBody([]string{"7", "yay"})
	require.NoError(t, err)
	assert.Equal(t, &tx.VoteTx{Tally: 7, Yay: true}, body)

	body, err = voteBody([]string{"7", "NAY"})
	require.NoError(t, err)
	assert.Equal(t, &tx.VoteTx{Tally: 7, Yay: false}, body)

	_, err = voteBody([]string{"7", "maybe"})
	assert.Error(t, err)
	_, err = voteBody([]string{"x", "yay"})
	assert.Error(t, err)
}

func TestTransferBody(t *testing.T) {
	defer func() { governorFrom = "" }()

	body, err := transferBody([]string{bob, "0.5"})
	require.NoError(t, err)
	tr := body.(*tx.TransferTx)
	assert.Equal(t, common.Address{}, tr.From)
	assert.Equal(t, common.HexToAddress(bob), tr.To)
	assert.Equal(t, "500000000000000000", tr.Amount.String())

	governorFrom = alice
	body, err = transferBody([]string{bob, "3"})
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(alice), body.(*tx.TransferTx).From)

	governorFrom = ""
	_, err = transferBody([]string{bob, "abc"})
	assert.Error(t, err)
}

func TestAddressesBody(t *testing.T) {
	body, err := addressesBody([]string{alice, bob})
	require.NoError(t, err)
	assert.Equal(t, []common.Address{common.HexToAddress(alice), common.HexToAddress(bob)},
		body.(*tx.HumansTx).Addresses)

	_, err = addressesBody([]string{alice, "0x12"})
	assert.Error(t, err)
}

func TestCurrentVersion(t *testing.T) {
	assert.Equal(t, "0.1.0", VersionWithCommit(""))
	assert.Equal(t, "0.1.0-0123abcd", VersionWithCommit("0123abcdef99"))

	v := currentVersion()
	assert.Equal(t, tx.TxVersion1, v.Tx)
	assert.Equal(t, uint64(2), v.Schema)
	assert.NotEmpty(t, v.CometBFT)
	assert.NotZero(t, v.Block)
}
