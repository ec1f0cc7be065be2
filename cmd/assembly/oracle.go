package main

import (
	"context"
	"fmt"
	"os"

	"github.com/calehh/assembly-app/config"
	"github.com/calehh/assembly-app/oraclesync"
	"github.com/calehh/assembly-app/tx"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

var oracleCmd = &cobra.Command{
	Use:   "oracle",
	Short: "Human set and submission counter, kept in line with the identity registry",
}

func addressesBody(args []string) (any, error) {
	body := &tx.HumansTx{Addresses: make([]common.Address, len(args))}
	for i, s := range args {
		a, err := parseAddress(s)
		if err != nil {
			return nil, err
		}
		body.Addresses[i] = a
	}
	return body, nil
}

type planArguments struct {
	Home     string
	Registry string
	Indexer  string
	Batch    int
	Output   string
	NoCache  bool
	Reset    bool
}

var (
	planArgs planArguments
	syncArgs txArguments
)

func planFlags(cmd *cobra.Command) {
	homeFlag(cmd, &planArgs.Home)
	cmd.Flags().StringVar(&planArgs.Registry, "registry", "", "identity registry url, oracle.registry_url when not set")
	cmd.Flags().StringVar(&planArgs.Indexer, "indexer", "", "indexer url, oracle.indexer_url when not set")
	cmd.Flags().IntVar(&planArgs.Batch, "batch", 0, "addresses per transaction, oracle.batch_size when not set")
	cmd.Flags().BoolVar(&planArgs.NoCache, "no-cache", false, "do not keep registry pages on disk")
	cmd.Flags().BoolVar(&planArgs.Reset, "reset-cache", false, "drop cached registry pages first")
}

// oracleConfig reads the node config when there is one and falls back to
// the defaults otherwise, then applies the flags.
func oracleConfig() *config.AppConfig {
	cfg, err := config.LoadConfig(planArgs.Home)
	app := config.DefaultAppConfig(config.ExpandHome(planArgs.Home))
	if err == nil {
		app = cfg.App
	}
	if planArgs.Registry != "" {
		app.Oracle.RegistryURL = planArgs.Registry
	}
	if planArgs.Indexer != "" {
		app.Oracle.IndexerURL = planArgs.Indexer
	}
	if planArgs.Batch > 0 {
		app.Oracle.BatchSize = planArgs.Batch
	}
	return app
}

func buildPlan(ctx context.Context) (*oraclesync.Plan, error) {
	app := oracleConfig()
	if app.Oracle.RegistryURL == "" {
		return nil, fmt.Errorf("no registry url, set --registry or oracle.registry_url")
	}
	logger := cmtlog.NewTMLogger(cmtlog.NewSyncWriter(os.Stderr))

	var cache *oraclesync.PageCache
	if !planArgs.NoCache {
		var err error
		cache, err = oraclesync.OpenPageCache(app.Path(app.Oracle.CacheDir))
		if err != nil {
			return nil, fmt.Errorf("open page cache: %w", err)
		}
		defer cache.Close()
		if planArgs.Reset {
			if err = cache.Clear(); err != nil {
				return nil, err
			}
		}
	}
	registry, err := oraclesync.NewRegistrySource(logger, app.Oracle.RegistryURL, app.Oracle.PageSize, cache)
	if err != nil {
		return nil, err
	}
	chain, err := oraclesync.NewIndexerSource(app.Oracle.IndexerURL, app.Oracle.PageSize)
	if err != nil {
		return nil, err
	}
	plan, err := oraclesync.NewPlanner(logger, registry, chain, app.Oracle.BatchSize).Plan(ctx)
	if err != nil {
		return nil, err
	}
	// a finished plan does not need its pages any more
	if cache != nil {
		if err = cache.Clear(); err != nil {
			return nil, err
		}
	}
	return plan, nil
}

var oraclePlanCmd = &cobra.Command{
	Use:   "plan",
	Short: "Print the register and deregister batches that align the chain with the registry",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		plan, err := buildPlan(cmd.Context())
		if err != nil {
			return err
		}
		out, err := plan.Render(planArgs.Output)
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

var oracleSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Plan and send the register and deregister batches",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		plan, err := buildPlan(cmd.Context())
		if err != nil {
			return err
		}
		if plan.Empty() {
			fmt.Println("human set is up to date")
			return nil
		}
		s, err := newSigner(cmd, &syncArgs)
		if err != nil {
			return err
		}
		for _, batch := range plan.Register {
			if err = s.send(cmd.Context(), tx.TxTypeRegisterHumans, &tx.HumansTx{Addresses: batch}); err != nil {
				return err
			}
		}
		for _, batch := range plan.Deregister {
			if err = s.send(cmd.Context(), tx.TxTypeDeregisterHumans, &tx.HumansTx{Addresses: batch}); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	oracleCmd.AddCommand(newTxCmd("register <address>...", "Add addresses to the human set",
		tx.TxTypeRegisterHumans, cobra.MinimumNArgs(1), addressesBody))
	oracleCmd.AddCommand(newTxCmd("deregister <address>...", "Remove addresses from the human set",
		tx.TxTypeDeregisterHumans, cobra.MinimumNArgs(1), addressesBody))
	oracleCmd.AddCommand(newTxCmd("counter <n>", "Set the registry submission counter",
		tx.TxTypeSetSubmissionCounter, cobra.ExactArgs(1), uintBody(func(n uint64) any {
			return &tx.SubmissionCounterTx{Counter: n}
		})))

	planFlags(oraclePlanCmd)
	oraclePlanCmd.Flags().StringVarP(&planArgs.Output, "output", "o", "yaml", "yaml or json")
	oracleCmd.AddCommand(oraclePlanCmd)

	planFlags(oracleSyncCmd)
	txFlags(oracleSyncCmd, &syncArgs)
	oracleCmd.AddCommand(oracleSyncCmd)
}
