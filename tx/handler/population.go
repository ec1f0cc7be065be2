package handler

import (
	"github.com/calehh/assembly-app/state"
	"github.com/calehh/assembly-app/tx"
	"github.com/ethereum/go-ethereum/common"
)

func applyCitizenship(st *state.State, sender common.Address, _ *tx.EmptyTx) error {
	return st.ApplyForCitizenship(sender)
}

func applyDelegation(st *state.State, sender common.Address, _ *tx.EmptyTx) error {
	return st.ApplyForDelegation(sender)
}

func appointDelegate(st *state.State, sender common.Address, body *tx.AppointDelegateTx) error {
	return st.AppointDelegate(sender, body.Delegate)
}

func claimSeat(st *state.State, sender common.Address, body *tx.ClaimSeatTx) error {
	return st.ClaimSeat(sender, body.Seat)
}

func distrust(st *state.State, sender common.Address, body *tx.MemberTx) error {
	return st.Distrust(sender, body.Member)
}

func expel(st *state.State, sender common.Address, body *tx.MemberTx) error {
	return st.Expel(sender, body.Member)
}
