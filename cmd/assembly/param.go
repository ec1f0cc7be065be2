package main

import (
	"math/big"

	"github.com/calehh/assembly-app/ledger"
	"github.com/calehh/assembly-app/tx"
	"github.com/calehh/assembly-app/types"
	"github.com/spf13/cobra"
)

var paramCmd = &cobra.Command{
	Use:   "param",
	Short: "Governance parameters",
}

func isRoleParam(name string) bool {
	switch name {
	case types.ParamOracleUpdater, types.ParamCreator, types.ParamOwner, types.ParamRewardPool:
		return true
	}
	return false
}

// paramValue reads token amounts for the reward params and plain integers
// for the rest.
func paramValue(name, s string) (*big.Int, error) {
	switch name {
	case types.ParamDelegationRewardRate, types.ParamReferralReward:
		return ledger.ParseAmount(s)
	}
	n, err := parseUint(s)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetUint64(n), nil
}

// setParamBody reads "<name> <value> [extra]"; role params take an address
// as value.
func setParamBody(args []string) (any, error) {
	name := args[0]
	body := &tx.SetParamTx{Param: name}
	var err error
	if isRoleParam(name) {
		body.Address, err = parseAddress(args[1])
		return body, err
	}
	if body.Value, err = paramValue(name, args[1]); err != nil {
		return nil, err
	}
	if len(args) == 3 {
		if body.Extra, err = paramValue(name, args[2]); err != nil {
			return nil, err
		}
	}
	return body, nil
}

func init() {
	paramCmd.AddCommand(newTxCmd("set <name> <value> [extra]", "Set a parameter or role",
		tx.TxTypeSetParam, cobra.RangeArgs(2, 3), setParamBody))
}
