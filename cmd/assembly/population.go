package main

import (
	"github.com/calehh/assembly-app/tx"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

var citizenCmd = &cobra.Command{
	Use:   "citizen",
	Short: "Citizen transactions",
}

var delegateCmd = &cobra.Command{
	Use:   "delegate",
	Short: "Delegate and seat transactions",
}

var memberCmd = &cobra.Command{
	Use:   "member",
	Short: "Owner actions on members",
}

func init() {
	citizenCmd.AddCommand(newTxCmd("apply", "Apply for citizenship",
		tx.TxTypeApplyCitizenship, cobra.ExactArgs(0), emptyBody))

	delegateCmd.AddCommand(newTxCmd("apply", "Apply for delegation",
		tx.TxTypeApplyDelegation, cobra.ExactArgs(0), emptyBody))
	delegateCmd.AddCommand(newTxCmd("appoint <delegate>", "Appoint a delegate as a citizen",
		tx.TxTypeAppointDelegate, cobra.ExactArgs(1), addressBody(func(a common.Address) any {
			return &tx.AppointDelegateTx{Delegate: a}
		})))
	delegateCmd.AddCommand(newTxCmd("claim-seat <seat>", "Claim a seat for the sending delegate",
		tx.TxTypeClaimSeat, cobra.ExactArgs(1), uintBody(func(n uint64) any {
			return &tx.ClaimSeatTx{Seat: n}
		})))

	memberCmd.AddCommand(newTxCmd("distrust <member>", "Mark a member as distrusted",
		tx.TxTypeDistrust, cobra.ExactArgs(1), addressBody(func(a common.Address) any {
			return &tx.MemberTx{Member: a}
		})))
	memberCmd.AddCommand(newTxCmd("expel <member>", "Expel a member who is no longer human or is distrusted",
		tx.TxTypeExpel, cobra.ExactArgs(1), addressBody(func(a common.Address) any {
			return &tx.MemberTx{Member: a}
		})))
}
