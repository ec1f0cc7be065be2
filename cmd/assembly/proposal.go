package main

import (
	"encoding/json"
	"fmt"

	"github.com/calehh/assembly-app/ledger"
	"github.com/calehh/assembly-app/tx"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"
)

var proposalCmd = &cobra.Command{
	Use:   "proposal",
	Short: "Treasury proposal transactions",
}

type addTxArguments struct {
	Data     string
	CallType string
	Call     string
}

var addTxArgs addTxArguments

// callData returns the data of a proposal transaction: raw hex, or an inner
// call built from its operation name and JSON body.
func callData() ([]byte, error) {
	if addTxArgs.Data != "" && addTxArgs.CallType != "" {
		return nil, fmt.Errorf("--data and --call-type are exclusive")
	}
	if addTxArgs.Data != "" {
		return hexutil.Decode(addTxArgs.Data)
	}
	if addTxArgs.CallType == "" {
		return nil, nil
	}
	tp, ok := tx.ParseTxType(addTxArgs.CallType)
	if !ok || !tp.Inner() {
		return nil, fmt.Errorf("%q can not be called from a proposal", addTxArgs.CallType)
	}
	raw := addTxArgs.Call
	if raw == "" {
		raw = "{}"
	}
	body, err := tx.DecodeBody(tp, json.RawMessage(raw))
	if err != nil {
		return nil, fmt.Errorf("--call: %w", err)
	}
	return tx.EncodeCall(tp, body)
}

// addTxBody reads "<proposal> <step> <destination> <value>", value in tokens.
func addTxBody(args []string) (any, error) {
	proposal, err := parseUint(args[0])
	if err != nil {
		return nil, err
	}
	step, err := parseUint(args[1])
	if err != nil {
		return nil, err
	}
	dest, err := parseAddress(args[2])
	if err != nil {
		return nil, err
	}
	value, err := ledger.ParseAmount(args[3])
	if err != nil {
		return nil, err
	}
	data, err := callData()
	if err != nil {
		return nil, err
	}
	return &tx.SubmitTransactionTx{
		Proposal:    proposal,
		Step:        step,
		Destination: dest,
		Value:       value,
		Data:        data,
	}, nil
}

func init() {
	proposalCmd.AddCommand(newTxCmd("create", "Create an empty proposal",
		tx.TxTypeCreateProposal, cobra.ExactArgs(0), emptyBody))

	addTxCmd := newTxCmd("add-tx <proposal> <step> <destination> <value>", "Add a transaction to a step of a proposal",
		tx.TxTypeSubmitTransaction, cobra.ExactArgs(4), addTxBody)
	addTxCmd.Flags().StringVar(&addTxArgs.Data, "data", "", "hex call data")
	addTxCmd.Flags().StringVar(&addTxArgs.CallType, "call-type", "", "operation run by the step, e.g. setParam")
	addTxCmd.Flags().StringVar(&addTxArgs.Call, "call", "", "JSON body of the operation")
	proposalCmd.AddCommand(addTxCmd)

	proposalCmd.AddCommand(newTxCmd("submit <proposal>", "Submit a proposal so a tally can be opened on it",
		tx.TxTypeSubmitProposal, cobra.ExactArgs(1), uintBody(func(n uint64) any {
			return &tx.ProposalRefTx{Proposal: n}
		})))
}
