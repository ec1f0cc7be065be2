package handler

import (
	"context"
	"errors"

	"github.com/calehh/assembly-app/state"
	"github.com/calehh/assembly-app/tx"
	"github.com/calehh/assembly-app/types"
	abcitypes "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/ethereum/go-ethereum/common"
)

var ErrBodyMismatch = errors.New("tx body does not match tx type")

type TxHandler interface {
	Check(ctx context.Context, st *state.State, btx *tx.AssemblyTx) (res *abcitypes.ResponseCheckTx, err error)
	Process(ctx context.Context, st *state.State, btx *tx.AssemblyTx) (res *abcitypes.ExecTxResult, err error)
	// Exec runs the operation directly on st, without branching.
	Exec(st *state.State, sender common.Address, body any) error
}

// txHandler adapts one state operation taking a body of type T.
type txHandler[T any] struct {
	logger cmtlog.Logger
	tp     tx.TxType
	exec   func(st *state.State, sender common.Address, body *T) error
}

func newTxHandler[T any](logger cmtlog.Logger, tp tx.TxType, exec func(st *state.State, sender common.Address, body *T) error) *txHandler[T] {
	return &txHandler[T]{
		logger: logger.With("module", tp.String()+"Tx"),
		tp:     tp,
		exec:   exec,
	}
}

func (h *txHandler[T]) Exec(st *state.State, sender common.Address, body any) error {
	b, ok := body.(*T)
	if !ok {
		return ErrBodyMismatch
	}
	return h.exec(st, sender, b)
}

// Check dry-runs the operation on a branch that is always dropped.
func (h *txHandler[T]) Check(ctx context.Context, st *state.State, btx *tx.AssemblyTx) (res *abcitypes.ResponseCheckTx, err error) {
	res = &abcitypes.ResponseCheckTx{Code: 0}
	if err1 := h.Exec(st.Branch(), btx.Sender, btx.Tx); err1 != nil {
		h.logger.Info("CheckTx fail", "sender", btx.Sender, "err", err1)
		res.Code = types.Code(err1)
		res.Codespace = types.Codespace
		res.Log = err1.Error()
	}
	return
}

// Process runs the operation on a branch of st and merges it only on
// success. A rejected operation is a failed result, not an error; err is
// reserved for store failures that must halt the block.
func (h *txHandler[T]) Process(ctx context.Context, st *state.State, btx *tx.AssemblyTx) (res *abcitypes.ExecTxResult, err error) {
	branch := st.Branch()
	if err1 := h.Exec(branch, btx.Sender, btx.Tx); err1 != nil {
		h.logger.Info("tx rejected", "sender", btx.Sender, "nonce", btx.Nonce, "err", err1)
		return &abcitypes.ExecTxResult{
			Code:      types.Code(err1),
			Codespace: types.Codespace,
			Log:       err1.Error(),
		}, nil
	}
	events := branch.Events()
	if err = branch.Write(); err != nil {
		return nil, err
	}
	return &abcitypes.ExecTxResult{Events: events}, nil
}
