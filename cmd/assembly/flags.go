package main

import (
	"os"
	"path/filepath"

	"github.com/calehh/assembly-app/config"
	"github.com/spf13/cobra"
)

const defaultUrl = "http://127.0.0.1:26657"

func urlFlag(cmd *cobra.Command, url *string) {
	cmd.Flags().StringVarP(url, "url", "u", defaultUrl, "assembly node rpc url")
}

func homeFlag(cmd *cobra.Command, home *string) {
	cmd.Flags().StringVarP(home, "homedir", "d", "", "home directory (default "+config.DefaultHome+")")
}

func defaultKeyFile() string {
	return filepath.Join(os.ExpandEnv(config.DefaultHome), "config", "creator.key")
}

// txArguments are the flags shared by every command that sends a tx.
type txArguments struct {
	Url     string
	Key     string
	Nonce   uint64
	ChainId string
	NoSend  bool
}

func txFlags(cmd *cobra.Command, args *txArguments) {
	urlFlag(cmd, &args.Url)
	cmd.Flags().StringVarP(&args.Key, "key", "k", defaultKeyFile(), "account key file")
	cmd.Flags().Uint64VarP(&args.Nonce, "nonce", "n", 0, "account nonce, queried from the node when not set")
	cmd.Flags().StringVar(&args.ChainId, "chain-id", "", "chain id, read from the node's genesis when not set")
	cmd.Flags().BoolVarP(&args.NoSend, "nosend", "", false, "print the signed transaction instead of sending it")
}
