package handler

import (
	"github.com/calehh/assembly-app/state"
	"github.com/calehh/assembly-app/tx"
	"github.com/ethereum/go-ethereum/common"
)

func distributeReward(st *state.State, sender common.Address, _ *tx.EmptyTx) error {
	return st.DistributeDelegationReward(sender)
}

func claimRewards(st *state.State, sender common.Address, _ *tx.EmptyTx) error {
	_, err := st.ClaimRewards(sender)
	return err
}

func claimReferral(st *state.State, sender common.Address, body *tx.ClaimReferralTx) error {
	return st.ClaimReferralReward(sender, body.Referrer)
}
