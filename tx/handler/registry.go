package handler

import (
	"github.com/calehh/assembly-app/state"
	"github.com/calehh/assembly-app/tx"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/ethereum/go-ethereum/common"
)

var _ state.Dispatcher = &Dispatcher{}

func NewTxHandlers(logger cmtlog.Logger) map[tx.TxType]TxHandler {
	return map[tx.TxType]TxHandler{
		tx.TxTypeApplyCitizenship: newTxHandler(logger, tx.TxTypeApplyCitizenship, applyCitizenship),
		tx.TxTypeApplyDelegation:  newTxHandler(logger, tx.TxTypeApplyDelegation, applyDelegation),
		tx.TxTypeAppointDelegate:  newTxHandler(logger, tx.TxTypeAppointDelegate, appointDelegate),
		tx.TxTypeClaimSeat:        newTxHandler(logger, tx.TxTypeClaimSeat, claimSeat),
		tx.TxTypeDistrust:         newTxHandler(logger, tx.TxTypeDistrust, distrust),
		tx.TxTypeExpel:            newTxHandler(logger, tx.TxTypeExpel, expel),

		tx.TxTypeCreateTally:  newTxHandler(logger, tx.TxTypeCreateTally, createTally),
		tx.TxTypeDelegateVote: newTxHandler(logger, tx.TxTypeDelegateVote, castDelegateVote),
		tx.TxTypeCitizenVote:  newTxHandler(logger, tx.TxTypeCitizenVote, castCitizenVote),
		tx.TxTypeTallyUp:      newTxHandler(logger, tx.TxTypeTallyUp, tallyUp),
		tx.TxTypeEnact:        newTxHandler(logger, tx.TxTypeEnact, enact),
		tx.TxTypeExecute:      newTxHandler(logger, tx.TxTypeExecute, execute),

		tx.TxTypeCreateProposal:    newTxHandler(logger, tx.TxTypeCreateProposal, createProposal),
		tx.TxTypeSubmitTransaction: newTxHandler(logger, tx.TxTypeSubmitTransaction, submitTransaction),
		tx.TxTypeSubmitProposal:    newTxHandler(logger, tx.TxTypeSubmitProposal, submitProposal),

		tx.TxTypeDistributeReward: newTxHandler(logger, tx.TxTypeDistributeReward, distributeReward),
		tx.TxTypeClaimRewards:     newTxHandler(logger, tx.TxTypeClaimRewards, claimRewards),
		tx.TxTypeClaimReferral:    newTxHandler(logger, tx.TxTypeClaimReferral, claimReferral),

		tx.TxTypeSetParam: newTxHandler(logger, tx.TxTypeSetParam, setParam),
		tx.TxTypeMigrate:  newTxHandler(logger, tx.TxTypeMigrate, migrate),

		tx.TxTypeRegisterHumans:       newTxHandler(logger, tx.TxTypeRegisterHumans, registerHumans),
		tx.TxTypeDeregisterHumans:     newTxHandler(logger, tx.TxTypeDeregisterHumans, deregisterHumans),
		tx.TxTypeSetSubmissionCounter: newTxHandler(logger, tx.TxTypeSetSubmissionCounter, setSubmissionCounter),

		tx.TxTypeTransfer:     newTxHandler(logger, tx.TxTypeTransfer, transfer),
		tx.TxTypeGovernorSend: newTxHandler(logger, tx.TxTypeGovernorSend, governorSend),
		tx.TxTypeBlock:        newTxHandler(logger, tx.TxTypeBlock, blockAddress),
		tx.TxTypeUnblock:      newTxHandler(logger, tx.TxTypeUnblock, unblockAddress),
	}
}

// Dispatcher runs the calls carried by proposal transactions through the
// same handlers as signed transactions.
type Dispatcher struct {
	logger cmtlog.Logger
	hdlrs  map[tx.TxType]TxHandler
}

func NewDispatcher(logger cmtlog.Logger, hdlrs map[tx.TxType]TxHandler) *Dispatcher {
	return &Dispatcher{
		logger: logger.With("module", "dispatcher"),
		hdlrs:  hdlrs,
	}
}

func (d *Dispatcher) Dispatch(st *state.State, sender common.Address, call *tx.Call) error {
	if !call.Type.Inner() {
		return state.ErrInnerCallForbidden
	}
	h, ok := d.hdlrs[call.Type]
	if !ok {
		return tx.ErrUnsupportedTxType
	}
	d.logger.Debug("inner call", "type", call.Type, "sender", sender)
	return h.Exec(st, sender, call.Tx)
}
