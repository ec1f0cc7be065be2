package main

import (
	"encoding/hex"
	"fmt"

	"github.com/calehh/assembly-app/crypto"
	"github.com/spf13/cobra"
)

type keysArguments struct {
	Key string
}

var keysArgs keysArguments

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage account keys",
}

var keysNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Generate an account key file",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		k, err := crypto.GenerateKey()
		if err != nil {
			return err
		}
		if err = k.Save(keysArgs.Key); err != nil {
			return fmt.Errorf("save %s: %w", keysArgs.Key, err)
		}
		fmt.Println("address:", k.Address().Hex())
		return nil
	},
}

var keysShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the address and public key of a key file",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		k, err := crypto.LoadKeyFile(keysArgs.Key)
		if err != nil {
			return err
		}
		fmt.Println("address:", k.Address().Hex())
		fmt.Println("pubkey:", hex.EncodeToString(k.PublicKey()))
		return nil
	},
}

func init() {
	keysCmd.PersistentFlags().StringVarP(&keysArgs.Key, "key", "k", defaultKeyFile(), "account key file")
	keysCmd.AddCommand(keysNewCmd)
	keysCmd.AddCommand(keysShowCmd)
}
