package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"time"

	app_config "github.com/calehh/assembly-app/config"
	"github.com/calehh/assembly-app/crypto"
	"github.com/calehh/assembly-app/ledger"
	"github.com/calehh/assembly-app/types"
	cmtos "github.com/cometbft/cometbft/libs/os"
	cmttypes "github.com/cometbft/cometbft/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

const flagFund = "fund"

type printInfo struct {
	ChainID    string          `json:"chain_id"`
	NodeID     string          `json:"node_id"`
	Creator    string          `json:"creator"`
	AppMessage json.RawMessage `json:"app_message"`
}

func displayInfo(info printInfo) error {
	out, err := json.MarshalIndent(info, "", " ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(os.Stderr, "%s\n", out)
	return err
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize private validator, p2p, creator key, genesis, and application configuration files",
	Args:  cobra.ExactArgs(0),
	RunE:  initRun,
}

func init() {
	initCmd.Flags().BoolP(types.FlagOverwrite, "o", false, "overwrite the genesis.json file")
	initCmd.Flags().String(types.FlagChainID, "", "genesis file chain-id, if left blank will be randomly created")
	initCmd.Flags().String(types.FlagHome, "", "home directory (default "+app_config.DefaultHome+")")
	initCmd.Flags().String(flagFund, "", "genesis balance of the creator account, in tokens")
}

// loadOrInitCreator reuses the creator key of an earlier init.
func loadOrInitCreator(cfg *app_config.Config) (common.Address, error) {
	creator, err := app_config.InitializeCreator(cfg)
	if errors.Is(err, crypto.ErrKeyExists) {
		k, err := crypto.LoadKeyFile(cfg.CreatorKeyFile())
		if err != nil {
			return common.Address{}, err
		}
		return k.Address(), nil
	}
	return creator, err
}

func initRun(cmd *cobra.Command, args []string) error {
	home, _ := cmd.Flags().GetString(types.FlagHome)
	chainID, _ := cmd.Flags().GetString(types.FlagChainID)
	overwrite, _ := cmd.Flags().GetBool(types.FlagOverwrite)
	fund, _ := cmd.Flags().GetString(flagFund)

	if chainID == "" {
		chainID = fmt.Sprintf("assembly-%v", rand.Uint64())
	}
	cfg, err := app_config.DefaultConfig(home)
	if err != nil {
		return err
	}
	genFile := cfg.GenesisFile()
	if cmtos.FileExists(genFile) && !overwrite {
		return fmt.Errorf("genesis file %s already exists, use --%s to replace it", genFile, types.FlagOverwrite)
	}

	nodeID, pk, err := app_config.InitializeNodeValidatorFiles(cfg, nil)
	if err != nil {
		return err
	}
	creator, err := loadOrInitCreator(cfg)
	if err != nil {
		return err
	}

	appGenesis := types.DefaultAppGenesis(creator)
	if fund != "" {
		if _, err = ledger.ParseAmount(fund); err != nil {
			return fmt.Errorf("--%s: %w", flagFund, err)
		}
		appGenesis.Balances = append(appGenesis.Balances, types.GenesisBalance{Address: creator, Amount: fund})
	}
	appState, err := json.MarshalIndent(appGenesis, "", "  ")
	if err != nil {
		return err
	}

	genDoc := &types.GenesisDoc{
		GenesisTime:     time.Now(),
		ChainID:         chainID,
		ConsensusParams: cmttypes.DefaultConsensusParams(),
		InitialHeight:   1,
		Validators: []types.GenesisValidator{
			{Address: pk.Address(), PubKey: pk, Power: types.DefaultPower},
		},
		AppState: appState,
	}
	if err = types.ExportGenesisFile(genDoc, genFile); err != nil {
		return fmt.Errorf("failed to export genesis file: %w", err)
	}
	if err = app_config.WriteConfigFile(app_config.ConfigFile(cfg.RootDir), cfg); err != nil {
		return err
	}
	return displayInfo(printInfo{
		ChainID:    chainID,
		NodeID:     nodeID,
		Creator:    creator.Hex(),
		AppMessage: appState,
	})
}
