package main

import (
	"encoding/json"
	"fmt"

	"github.com/calehh/assembly-app/state"
	"github.com/calehh/assembly-app/tx"
	cmtversion "github.com/cometbft/cometbft/version"
	"github.com/spf13/cobra"
)

// GitCommit is set at build time with -ldflags "-X main.GitCommit=...".
var GitCommit string

const (
	VersionMajor = 0
	VersionMinor = 1
	VersionPatch = 0
)

var Version = fmt.Sprintf("%d.%d.%d", VersionMajor, VersionMinor, VersionPatch)

func VersionWithCommit(gitCommit string) string {
	vsn := Version
	if len(gitCommit) >= 8 {
		vsn += "-" + gitCommit[:8]
	}
	return vsn
}

// versionInfo lists what a node built from this binary speaks. Nodes of
// one chain must agree on tx and schema.
type versionInfo struct {
	Assembly string `json:"assembly"`
	Tx       uint8  `json:"tx"`
	Schema   uint64 `json:"schema"`
	CometBFT string `json:"cometbft"`
	Block    uint64 `json:"block_protocol"`
	P2P      uint64 `json:"p2p_protocol"`
}

func currentVersion() versionInfo {
	return versionInfo{
		Assembly: VersionWithCommit(GitCommit),
		Tx:       tx.TxVersion1,
		Schema:   state.CurrentSchemaVersion,
		CometBFT: cmtversion.TMCoreSemVer,
		Block:    cmtversion.BlockProtocol,
		P2P:      cmtversion.P2PProtocol,
	}
}

var versionLong bool

var versionCmd = &cobra.Command{
	Use:     "version",
	Short:   "Print the version",
	Aliases: []string{"V"},
	Args:    cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		v := currentVersion()
		if !versionLong {
			fmt.Println(v.Assembly)
			return nil
		}
		out, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

func init() {
	versionCmd.Flags().BoolVarP(&versionLong, "long", "l", false, "also print the tx, schema and consensus versions as JSON")
}
