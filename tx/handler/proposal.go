package handler

import (
	"github.com/calehh/assembly-app/state"
	"github.com/calehh/assembly-app/tx"
	"github.com/ethereum/go-ethereum/common"
)

func createProposal(st *state.State, sender common.Address, _ *tx.EmptyTx) error {
	_, err := st.CreateProposal(sender)
	return err
}

func submitTransaction(st *state.State, sender common.Address, body *tx.SubmitTransactionTx) error {
	_, err := st.SubmitTransaction(sender, body.Proposal, body.Step, body.Destination, body.Value, body.Data)
	return err
}

func submitProposal(st *state.State, sender common.Address, body *tx.ProposalRefTx) error {
	return st.SubmitProposal(sender, body.Proposal)
}
