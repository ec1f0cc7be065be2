package main

import (
	"fmt"
	"strings"

	"github.com/calehh/assembly-app/tx"
	"github.com/spf13/cobra"
)

var tallyCmd = &cobra.Command{
	Use:   "tally",
	Short: "Tally transactions",
}

func tallyRef(n uint64) any {
	return &tx.TallyRefTx{Tally: n}
}

// voteBody reads "<tally> yay|nay".
func voteBody(args []string) (any, error) {
	n, err := parseUint(args[0])
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(args[1]) {
	case "yay", "yes", "true":
		return &tx.VoteTx{Tally: n, Yay: true}, nil
	case "nay", "no", "false":
		return &tx.VoteTx{Tally: n, Yay: false}, nil
	}
	return nil, fmt.Errorf("vote must be yay or nay, got %q", args[1])
}

func init() {
	tallyCmd.AddCommand(newTxCmd("create <proposal>", "Open a tally on a submitted proposal",
		tx.TxTypeCreateTally, cobra.ExactArgs(1), uintBody(func(n uint64) any {
			return &tx.ProposalRefTx{Proposal: n}
		})))
	tallyCmd.AddCommand(newTxCmd("delegate-vote <tally> <yay|nay>", "Cast a seated delegate's vote",
		tx.TxTypeDelegateVote, cobra.ExactArgs(2), voteBody))
	tallyCmd.AddCommand(newTxCmd("vote <tally> <yay|nay>", "Cast a citizen's vote",
		tx.TxTypeCitizenVote, cobra.ExactArgs(2), voteBody))
	tallyCmd.AddCommand(newTxCmd("tally-up <tally>", "Recount a tally and finalize it after voting ends",
		tx.TxTypeTallyUp, cobra.ExactArgs(1), uintBody(tallyRef)))
	tallyCmd.AddCommand(newTxCmd("enact <tally>", "Execute the next step of an approved tally's proposal",
		tx.TxTypeEnact, cobra.ExactArgs(1), uintBody(tallyRef)))
	tallyCmd.AddCommand(newTxCmd("execute <tally>", "Tally up and enact in one transaction",
		tx.TxTypeExecute, cobra.ExactArgs(1), uintBody(tallyRef)))
}
