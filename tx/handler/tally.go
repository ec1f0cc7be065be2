package handler

import (
	"github.com/calehh/assembly-app/state"
	"github.com/calehh/assembly-app/tx"
	"github.com/ethereum/go-ethereum/common"
)

func createTally(st *state.State, sender common.Address, body *tx.ProposalRefTx) error {
	_, err := st.CreateTally(sender, body.Proposal)
	return err
}

func castDelegateVote(st *state.State, sender common.Address, body *tx.VoteTx) error {
	return st.CastDelegateVote(sender, body.Tally, body.Yay)
}

func castCitizenVote(st *state.State, sender common.Address, body *tx.VoteTx) error {
	return st.CastCitizenVote(sender, body.Tally, body.Yay)
}

func tallyUp(st *state.State, sender common.Address, body *tx.TallyRefTx) error {
	_, err := st.TallyUp(sender, body.Tally)
	return err
}

func enact(st *state.State, sender common.Address, body *tx.TallyRefTx) error {
	return st.Enact(sender, body.Tally)
}

func execute(st *state.State, sender common.Address, body *tx.TallyRefTx) error {
	return st.Execute(sender, body.Tally)
}
