package main

import (
	"github.com/calehh/assembly-app/tx"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

var rewardCmd = &cobra.Command{
	Use:   "reward",
	Short: "Reward transactions",
}

func init() {
	rewardCmd.AddCommand(newTxCmd("distribute", "Settle the delegation reward of the seated delegates",
		tx.TxTypeDistributeReward, cobra.ExactArgs(0), emptyBody))
	rewardCmd.AddCommand(newTxCmd("claim", "Pay out the sender's reward balance",
		tx.TxTypeClaimRewards, cobra.ExactArgs(0), emptyBody))
	rewardCmd.AddCommand(newTxCmd("referral <referrer>", "Claim the referral reward naming a referrer",
		tx.TxTypeClaimReferral, cobra.ExactArgs(1), addressBody(func(a common.Address) any {
			return &tx.ClaimReferralTx{Referrer: a}
		})))
}
