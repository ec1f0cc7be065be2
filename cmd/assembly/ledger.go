package main

import (
	"github.com/calehh/assembly-app/ledger"
	"github.com/calehh/assembly-app/tx"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Token ledger transactions",
}

var governorFrom string

// transferBody reads "<to> <amount>", amount in tokens.
func transferBody(args []string) (any, error) {
	to, err := parseAddress(args[0])
	if err != nil {
		return nil, err
	}
	amount, err := ledger.ParseAmount(args[1])
	if err != nil {
		return nil, err
	}
	body := &tx.TransferTx{To: to, Amount: amount}
	if governorFrom != "" {
		if body.From, err = parseAddress(governorFrom); err != nil {
			return nil, err
		}
	}
	return body, nil
}

func init() {
	ledgerCmd.AddCommand(newTxCmd("transfer <to> <amount>", "Transfer tokens from the sender",
		tx.TxTypeTransfer, cobra.ExactArgs(2), transferBody))

	governorSendCmd := newTxCmd("governor-send <to> <amount>", "Move tokens between any accounts as the owner",
		tx.TxTypeGovernorSend, cobra.ExactArgs(2), transferBody)
	governorSendCmd.Flags().StringVar(&governorFrom, "from", "", "source account, the sender when not set")
	ledgerCmd.AddCommand(governorSendCmd)

	ledgerCmd.AddCommand(newTxCmd("block <address>", "Block an address from transfers",
		tx.TxTypeBlock, cobra.ExactArgs(1), addressBody(func(a common.Address) any {
			return &tx.AddressTx{Address: a}
		})))
	ledgerCmd.AddCommand(newTxCmd("unblock <address>", "Lift a transfer block",
		tx.TxTypeUnblock, cobra.ExactArgs(1), addressBody(func(a common.Address) any {
			return &tx.AddressTx{Address: a}
		})))
}
