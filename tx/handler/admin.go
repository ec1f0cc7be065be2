package handler

import (
	"github.com/calehh/assembly-app/state"
	"github.com/calehh/assembly-app/tx"
	"github.com/ethereum/go-ethereum/common"
)

func setParam(st *state.State, sender common.Address, body *tx.SetParamTx) error {
	return st.SetParam(sender, body.Param, body.Value, body.Extra, body.Address)
}

func migrate(st *state.State, sender common.Address, body *tx.MigrateTx) error {
	return st.Migrate(sender, body.Version)
}

func registerHumans(st *state.State, sender common.Address, body *tx.HumansTx) error {
	return st.RegisterHumans(sender, body.Addresses)
}

func deregisterHumans(st *state.State, sender common.Address, body *tx.HumansTx) error {
	return st.DeregisterHumans(sender, body.Addresses)
}

func setSubmissionCounter(st *state.State, sender common.Address, body *tx.SubmissionCounterTx) error {
	return st.SetSubmissionCounter(sender, body.Counter)
}

func transfer(st *state.State, sender common.Address, body *tx.TransferTx) error {
	return st.Transfer(sender, body.To, body.Amount)
}

// governorSend defaults From to the sender.
func governorSend(st *state.State, sender common.Address, body *tx.TransferTx) error {
	from := body.From
	if from == (common.Address{}) {
		from = sender
	}
	return st.GovernorSend(sender, from, body.To, body.Amount)
}

func blockAddress(st *state.State, sender common.Address, body *tx.AddressTx) error {
	return st.BlockAddress(sender, body.Address)
}

func unblockAddress(st *state.State, sender common.Address, body *tx.AddressTx) error {
	return st.UnblockAddress(sender, body.Address)
}
