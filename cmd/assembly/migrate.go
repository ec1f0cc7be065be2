package main

import (
	"github.com/calehh/assembly-app/tx"
	"github.com/spf13/cobra"
)

var migrateCmd = newTxCmd("migrate <version>", "Migrate the state schema up to version",
	tx.TxTypeMigrate, cobra.ExactArgs(1), uintBody(func(n uint64) any {
		return &tx.MigrateTx{Version: n}
	}))
