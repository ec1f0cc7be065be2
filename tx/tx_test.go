package tx

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndVerify(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	btx := &AssemblyTx{
		Version: TxVersion1,
		Type:    TxTypeCitizenVote,
		Nonce:   3,
		Tx:      &VoteTx{Tally: 1, Yay: true},
	}
	require.NoError(t, btx.Sign("assembly-test", key))
	assert.Equal(t, crypto.PubkeyToAddress(key.PublicKey), btx.Sender)
	require.NoError(t, btx.VerifySender("assembly-test"))

	dat, err := MarshalAssemblyTx(btx)
	require.NoError(t, err)
	decoded, err := UnmarshalAssemblyTx(dat)
	require.NoError(t, err)
	require.NoError(t, decoded.VerifySender("assembly-test"))
	vote, ok := decoded.Tx.(*VoteTx)
	require.True(t, ok)
	assert.Equal(t, uint64(1), vote.Tally)
	assert.True(t, vote.Yay)

	// a signature for another chain does not verify
	assert.Error(t, decoded.VerifySender("other-chain"))

	decoded.Sender = common.HexToAddress("0x01")
	assert.ErrorIs(t, decoded.VerifySender("assembly-test"), ErrTxSenderMismatch)
}

func TestUnmarshalRejectsUnknown(t *testing.T) {
	_, err := UnmarshalAssemblyTx([]byte(`{"version":1,"type":99,"tx":{}}`))
	assert.ErrorIs(t, err, ErrUnsupportedTxType)

	_, err = UnmarshalAssemblyTx([]byte(`{"version":7,"type":1,"tx":{}}`))
	assert.ErrorIs(t, err, ErrUnsupportedTxVersion)

	_, err = UnmarshalAssemblyTx([]byte(`not json`))
	assert.Error(t, err)
}

func TestCallCodec(t *testing.T) {
	dat, err := EncodeCall(TxTypeSetParam, &SetParamTx{Param: "seatCount", Value: big.NewInt(9)})
	require.NoError(t, err)

	call, err := DecodeCall(dat)
	require.NoError(t, err)
	assert.Equal(t, TxTypeSetParam, call.Type)
	body, ok := call.Tx.(*SetParamTx)
	require.True(t, ok)
	assert.Equal(t, "seatCount", body.Param)
	assert.Equal(t, int64(9), body.Value.Int64())

	_, err = DecodeCall([]byte{0x01})
	assert.ErrorIs(t, err, ErrInvalidTx)
}

func TestEmptyBody(t *testing.T) {
	body, err := DecodeBody(TxTypeApplyCitizenship, nil)
	require.NoError(t, err)
	_, ok := body.(*EmptyTx)
	assert.True(t, ok)
}

func TestParseTxType(t *testing.T) {
	tp, ok := ParseTxType("registerHumans")
	assert.True(t, ok)
	assert.Equal(t, TxTypeRegisterHumans, tp)
	_, ok = ParseTxType("unknown")
	assert.False(t, ok)
}
