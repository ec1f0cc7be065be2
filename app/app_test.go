package app

import (
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"testing"
	"time"

	"github.com/calehh/assembly-app/config"
	"github.com/calehh/assembly-app/state"
	"github.com/calehh/assembly-app/tx"
	"github.com/calehh/assembly-app/types"
	abcitypes "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chainId = "assembly-test"

var genesisTime = time.Unix(1_700_000_000, 0)

type testChain struct {
	t       *testing.T
	app     *AssemblyApp
	height  int64
	creator *ecdsa.PrivateKey
	citizen *ecdsa.PrivateKey
}

func newTestChain(t *testing.T) *testChain {
	creator, err := crypto.GenerateKey()
	require.NoError(t, err)
	citizen, err := crypto.GenerateKey()
	require.NoError(t, err)

	db, err := state.NewMemStateDB(cmtlog.NewNopLogger())
	require.NoError(t, err)
	app := NewAssemblyAppWithDB(config.DefaultAppConfig(t.TempDir()), db, cmtlog.NewNopLogger())

	g := types.DefaultAppGenesis(crypto.PubkeyToAddress(creator.PublicKey))
	g.Humans = []common.Address{crypto.PubkeyToAddress(citizen.PublicKey)}
	appState, err := json.Marshal(g)
	require.NoError(t, err)
	res, err := app.InitChain(context.Background(), &abcitypes.RequestInitChain{
		ChainId:       chainId,
		Time:          genesisTime,
		AppStateBytes: appState,
	})
	require.NoError(t, err)
	require.Len(t, res.AppHash, 32)
	return &testChain{t: t, app: app, creator: creator, citizen: citizen}
}

func (c *testChain) sign(key *ecdsa.PrivateKey, nonce uint64, tp tx.TxType, body any) []byte {
	btx := &tx.AssemblyTx{Version: tx.TxVersion1, Type: tp, Nonce: nonce, Tx: body}
	require.NoError(c.t, btx.Sign(chainId, key))
	dat, err := tx.MarshalAssemblyTx(btx)
	require.NoError(c.t, err)
	return dat
}

func (c *testChain) block(txs ...[]byte) *abcitypes.ResponseFinalizeBlock {
	ctx := context.Background()
	c.height++
	res, err := c.app.FinalizeBlock(ctx, &abcitypes.RequestFinalizeBlock{
		Height: c.height,
		Time:   genesisTime.Add(time.Duration(c.height) * time.Second),
		Txs:    txs,
	})
	require.NoError(c.t, err)
	_, err = c.app.Commit(ctx, &abcitypes.RequestCommit{})
	require.NoError(c.t, err)
	return res
}

func (c *testChain) query(path string) *abcitypes.ResponseQuery {
	res, err := c.app.Query(context.Background(), &abcitypes.RequestQuery{Path: path})
	require.NoError(c.t, err)
	return res
}

func TestBlockLifecycle(t *testing.T) {
	c := newTestChain(t)
	citizen := crypto.PubkeyToAddress(c.citizen.PublicKey)

	apply := c.sign(c.citizen, 0, tx.TxTypeApplyCitizenship, &tx.EmptyTx{})
	replay := c.sign(c.citizen, 0, tx.TxTypeApplyCitizenship, &tx.EmptyTx{})
	forged := c.sign(c.citizen, 1, tx.TxTypeApplyCitizenship, &tx.EmptyTx{})
	forged[len(forged)-3] ^= 0x01
	res := c.block(apply, replay, forged, []byte("not a tx"))
	require.Len(t, res.TxResults, 4)
	assert.Equal(t, uint32(0), res.TxResults[0].Code)
	assert.NotEmpty(t, res.TxResults[0].Events)
	for _, r := range res.TxResults[1:] {
		assert.Equal(t, types.CodeInvalidEnvelope, r.Code)
	}

	q := c.query("/member/" + citizen.Hex())
	require.Equal(t, uint32(0), q.Code)
	var m types.Member
	require.NoError(t, json.Unmarshal(q.Value, &m))
	assert.Equal(t, types.RoleCitizen, m.Role)
	assert.Equal(t, genesisTime.Unix()+1, m.Joined)

	// a rejected operation still consumes the nonce
	res = c.block(c.sign(c.citizen, 1, tx.TxTypeApplyCitizenship, &tx.EmptyTx{}))
	assert.Equal(t, uint32(types.InvalidState), res.TxResults[0].Code)
	assert.Equal(t, types.Codespace, res.TxResults[0].Codespace)
	q = c.query("/nonce/" + citizen.Hex())
	assert.Equal(t, "2", string(q.Value))

	info, err := c.app.Info(context.Background(), &abcitypes.RequestInfo{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), info.LastBlockHeight)
	assert.Equal(t, res.AppHash, info.LastBlockAppHash)
}

func TestCheckTx(t *testing.T) {
	c := newTestChain(t)
	ctx := context.Background()

	// nonce gaps are allowed in the mempool
	res, err := c.app.CheckTx(ctx, &abcitypes.RequestCheckTx{Tx: c.sign(c.citizen, 3, tx.TxTypeApplyCitizenship, &tx.EmptyTx{})})
	require.NoError(t, err)
	assert.Equal(t, uint32(0), res.Code)

	res, err = c.app.CheckTx(ctx, &abcitypes.RequestCheckTx{Tx: c.sign(c.citizen, 0, tx.TxTypeCreateProposal, &tx.EmptyTx{})})
	require.NoError(t, err)
	assert.Equal(t, uint32(types.Authorization), res.Code)

	// checking does not touch the chain state
	q := c.query("/population/")
	var pop types.Population
	require.NoError(t, json.Unmarshal(q.Value, &pop))
	assert.Equal(t, uint64(0), pop.Citizens)
}

func TestProcessProposalRejectsBadEnvelopes(t *testing.T) {
	c := newTestChain(t)
	ctx := context.Background()
	good := c.sign(c.citizen, 0, tx.TxTypeApplyCitizenship, &tx.EmptyTx{})
	again := c.sign(c.citizen, 1, tx.TxTypeApplyCitizenship, &tx.EmptyTx{})

	prep, err := c.app.PrepareProposal(ctx, &abcitypes.RequestPrepareProposal{Height: 1, Txs: [][]byte{again, good, again}})
	require.NoError(t, err)
	assert.Equal(t, [][]byte{good, again}, prep.Txs)

	res, err := c.app.ProcessProposal(ctx, &abcitypes.RequestProcessProposal{Height: 1, Txs: prep.Txs})
	require.NoError(t, err)
	assert.Equal(t, abcitypes.ResponseProcessProposal_ACCEPT, res.Status)

	res, err = c.app.ProcessProposal(ctx, &abcitypes.RequestProcessProposal{Height: 1, Txs: [][]byte{again}})
	require.NoError(t, err)
	assert.Equal(t, abcitypes.ResponseProcessProposal_REJECT, res.Status)
}

func TestQueryRoutes(t *testing.T) {
	c := newTestChain(t)
	assert.Equal(t, CodeUnknownPath, c.query("/nothing/").Code)
	assert.Equal(t, uint32(types.InvalidParameter), c.query("/member/xyz").Code)
	assert.Equal(t, uint32(types.InvalidReference), c.query("/tally/0").Code)

	q := c.query("/roles")
	require.Equal(t, uint32(0), q.Code)
	var roles types.Roles
	require.NoError(t, json.Unmarshal(q.Value, &roles))
	assert.Equal(t, crypto.PubkeyToAddress(c.creator.PublicKey), roles.Creator)

	q = c.query("/human/" + crypto.PubkeyToAddress(c.citizen.PublicKey).Hex())
	assert.Equal(t, "true", string(q.Value))
}

func TestReplayIsDeterministic(t *testing.T) {
	a := newTestChain(t)
	b := &testChain{t: t, creator: a.creator, citizen: a.citizen}
	db, err := state.NewMemStateDB(cmtlog.NewNopLogger())
	require.NoError(t, err)
	b.app = NewAssemblyAppWithDB(config.DefaultAppConfig(t.TempDir()), db, cmtlog.NewNopLogger())
	g := types.DefaultAppGenesis(crypto.PubkeyToAddress(a.creator.PublicKey))
	g.Humans = []common.Address{crypto.PubkeyToAddress(a.citizen.PublicKey)}
	appState, err := json.Marshal(g)
	require.NoError(t, err)
	_, err = b.app.InitChain(context.Background(), &abcitypes.RequestInitChain{ChainId: chainId, Time: genesisTime, AppStateBytes: appState})
	require.NoError(t, err)

	txs := [][]byte{
		a.sign(a.citizen, 0, tx.TxTypeApplyCitizenship, &tx.EmptyTx{}),
		a.sign(a.creator, 0, tx.TxTypeCreateProposal, &tx.EmptyTx{}),
	}
	ra := a.block(txs...)
	rb := b.block(txs...)
	assert.Equal(t, ra.AppHash, rb.AppHash)
}
