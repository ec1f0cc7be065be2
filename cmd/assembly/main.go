package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "assembly",
	Short: "Assembly is a governance chain for a decentralized assembly",
	Long: `A CometBFT chain where citizens appoint delegates, delegates hold seats
and tallies decide which treasury proposals are executed.`,
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(keysCmd)
	rootCmd.AddCommand(citizenCmd)
	rootCmd.AddCommand(delegateCmd)
	rootCmd.AddCommand(memberCmd)
	rootCmd.AddCommand(tallyCmd)
	rootCmd.AddCommand(proposalCmd)
	rootCmd.AddCommand(rewardCmd)
	rootCmd.AddCommand(paramCmd)
	rootCmd.AddCommand(oracleCmd)
	rootCmd.AddCommand(ledgerCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(versionCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
