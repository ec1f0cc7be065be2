package app

import (
	"context"
	"errors"

	"github.com/calehh/assembly-app/state"
	"github.com/calehh/assembly-app/tx"
	"github.com/calehh/assembly-app/types"
	abcitypes "github.com/cometbft/cometbft/abci/types"
)

var (
	ErrUnexpectedTxProcess = errors.New("unexpected tx process")
	ErrNoBlockState        = errors.New("commit without a finalized block")
)

// parseTx decodes the envelope and checks signature and nonce against st.
func (app *AssemblyApp) parseTx(st *state.State, txDat []byte, allowNonceGap bool) (btx *tx.AssemblyTx, err error) {
	btx, err = tx.UnmarshalAssemblyTx(txDat)
	if err != nil {
		return
	}
	err = st.Verify(btx, allowNonceGap)
	return
}

func envelopeFailure(err error) *abcitypes.ExecTxResult {
	return &abcitypes.ExecTxResult{
		Code:      types.CodeInvalidEnvelope,
		Codespace: types.Codespace,
		Log:       err.Error(),
	}
}

func (app *AssemblyApp) CheckTx(ctx context.Context, check *abcitypes.RequestCheckTx) (res *abcitypes.ResponseCheckTx, err error) {
	res = &abcitypes.ResponseCheckTx{Code: 0}
	st, err := app.db.Snapshot()
	if err != nil {
		app.logger.Error("CheckTx snapshot fail", "err", err)
		return nil, err
	}
	btx, err := app.parseTx(st, check.Tx, true)
	if err != nil {
		app.logger.Info("parse tx fail", "err", err)
		res.Code = types.CodeInvalidEnvelope
		res.Codespace = types.Codespace
		res.Log = err.Error()
		return res, nil
	}
	h, ok := app.txHdlrs[btx.Type]
	if !ok {
		app.logger.Error("unsupported tx", "type", btx.Type)
		res.Code = types.CodeInvalidEnvelope
		res.Codespace = types.Codespace
		res.Log = tx.ErrUnsupportedTxType.Error()
		return res, nil
	}
	return h.Check(ctx, st, btx)
}

// filterTxs keeps, in order, the txs whose envelope verifies against the
// nonces as they advance through the block. Rejected operations stay in:
// they fail deterministically and still consume the nonce.
func (app *AssemblyApp) filterTxs(st *state.State, txs [][]byte, maxBytes int64) (valid [][]byte, rejected int) {
	var size int64
	for _, stx := range txs {
		btx, err := app.parseTx(st, stx, false)
		if err != nil {
			app.logger.Info("drop tx", "err", err)
			rejected++
			continue
		}
		if maxBytes > 0 && size+int64(len(stx)) > maxBytes {
			break
		}
		if err = st.IncNonce(btx.Sender); err != nil {
			app.logger.Error("inc nonce fail", "err", err)
			rejected++
			continue
		}
		size += int64(len(stx))
		valid = append(valid, stx)
	}
	return
}

func (app *AssemblyApp) PrepareProposal(ctx context.Context, proposal *abcitypes.RequestPrepareProposal) (res *abcitypes.ResponsePrepareProposal, err error) {
	st := app.db.NewState()
	txs, dropped := app.filterTxs(st, proposal.Txs, proposal.MaxTxBytes)
	app.logger.Info("PrepareProposal", "height", proposal.Height, "txs", len(txs), "dropped", dropped)
	return &abcitypes.ResponsePrepareProposal{Txs: txs}, nil
}

func (app *AssemblyApp) ProcessProposal(ctx context.Context, proposal *abcitypes.RequestProcessProposal) (res *abcitypes.ResponseProcessProposal, err error) {
	res = &abcitypes.ResponseProcessProposal{Status: abcitypes.ResponseProcessProposal_REJECT}
	st := app.db.NewState()
	_, rejected := app.filterTxs(st, proposal.Txs, 0)
	if rejected > 0 {
		app.logger.Error("proposal rejected", "height", proposal.Height, "invalid", rejected)
		return res, nil
	}
	res.Status = abcitypes.ResponseProcessProposal_ACCEPT
	return res, nil
}

// deliverTx runs one tx of a finalized block. The nonce is consumed as
// soon as the envelope verifies, whatever the operation's outcome.
func (app *AssemblyApp) deliverTx(ctx context.Context, st *state.State, stx []byte) (*abcitypes.ExecTxResult, error) {
	btx, err := app.parseTx(st, stx, false)
	if err != nil {
		app.logger.Info("deliver tx envelope fail", "err", err)
		return envelopeFailure(err), nil
	}
	if err = st.IncNonce(btx.Sender); err != nil {
		return nil, err
	}
	h, ok := app.txHdlrs[btx.Type]
	if !ok {
		return envelopeFailure(tx.ErrUnsupportedTxType), nil
	}
	result, err := h.Process(ctx, st, btx)
	if err != nil {
		app.logger.Error("unexpected process tx fail", "type", btx.Type, "err", err)
		return nil, ErrUnexpectedTxProcess
	}
	return result, nil
}

func (app *AssemblyApp) FinalizeBlock(ctx context.Context, req *abcitypes.RequestFinalizeBlock) (*abcitypes.ResponseFinalizeBlock, error) {
	st := app.db.NewState()
	st.SetTime(req.Time.Unix())
	res := make([]*abcitypes.ExecTxResult, len(req.Txs))
	for i, stx := range req.Txs {
		result, err := app.deliverTx(ctx, st, stx)
		if err != nil {
			return nil, err
		}
		res[i] = result
	}
	h, err := st.Update()
	if err != nil {
		app.logger.Error("state update hash fail", "err", err)
		return nil, err
	}
	app.st = st
	app.logger.Info("FinalizeBlock", "height", req.Height, "txs", len(req.Txs), "appHash", h)
	return &abcitypes.ResponseFinalizeBlock{
		TxResults: res,
		AppHash:   h.Bytes(),
	}, nil
}

func (app *AssemblyApp) Commit(ctx context.Context, commit *abcitypes.RequestCommit) (*abcitypes.ResponseCommit, error) {
	if app.st == nil {
		return nil, ErrNoBlockState
	}
	_, err := app.db.SetState(app.st)
	if err != nil {
		return nil, err
	}
	app.st = nil
	return &abcitypes.ResponseCommit{}, nil
}
