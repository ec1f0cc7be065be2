package main

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/calehh/assembly-app/app"
	app_config "github.com/calehh/assembly-app/config"
	"github.com/calehh/assembly-app/indexer"
	cmtconfig "github.com/cometbft/cometbft/config"
	cmtflags "github.com/cometbft/cometbft/libs/cli/flags"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	nm "github.com/cometbft/cometbft/node"
	"github.com/cometbft/cometbft/p2p"
	"github.com/cometbft/cometbft/privval"
	"github.com/cometbft/cometbft/proxy"
	"github.com/spf13/cobra"
)

var startHome string

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Run the assembly node",
	Args:  cobra.ExactArgs(0),
	Run:   startRun,
}

func init() {
	homeFlag(startCmd, &startHome)
}

func startIndexer(ctx context.Context, cfg *app_config.Config, logger cmtlog.Logger) error {
	rpcUrl, err := url.Parse(cfg.RPC.ListenAddress)
	if err != nil {
		return fmt.Errorf("parse rpc address: %w", err)
	}
	rpcUrl.Scheme = "http"
	ic := cfg.App.Indexer
	idx, err := indexer.NewChainIndexer(logger, cfg.App.Path(ic.DBPath), rpcUrl.String(), ic.PollInterval)
	if err != nil {
		return err
	}
	go func() {
		idx.Start(ctx)
		idx.Close()
	}()
	svc := indexer.NewService(ic.ListenAddr, idx)
	go func() {
		if err := svc.Start(); err != nil {
			logger.Error("indexer service stopped", "err", err)
		}
	}()
	return nil
}

func startRun(cmd *cobra.Command, args []string) {
	cfg, err := app_config.LoadConfig(startHome)
	if err != nil {
		log.Fatal(err)
	}

	pv := privval.LoadFilePV(
		cfg.PrivValidatorKeyFile(),
		cfg.PrivValidatorStateFile(),
	)

	nodeKey, err := p2p.LoadNodeKey(cfg.NodeKeyFile())
	if err != nil {
		log.Fatalf("failed to load node's key: %v", err)
	}

	logger := cmtlog.NewTMLogger(cmtlog.NewSyncWriter(os.Stdout))
	logger, err = cmtflags.ParseLogLevel(cfg.LogLevel, logger, cmtconfig.DefaultLogLevel)
	if err != nil {
		log.Fatalf("failed to parse log level: %v", err)
	}

	assembly, err := app.NewAssemblyApp(cfg.App, logger)
	if err != nil {
		log.Fatalf("new App err:%v", err)
	}

	node, err := nm.NewNode(
		cfg.Config,
		pv,
		nodeKey,
		proxy.NewLocalClientCreator(assembly),
		nm.DefaultGenesisDocProviderFunc(cfg.Config),
		cmtconfig.DefaultDBProvider,
		nm.DefaultMetricsProvider(cfg.Instrumentation),
		logger,
	)
	if err != nil {
		log.Fatalf("Creating node: %v", err)
	}

	if err = node.Start(); err != nil {
		log.Fatalf("start comet node err %s", err.Error())
	}

	ctx, cancel := context.WithCancel(context.Background())
	if cfg.App.Indexer.Enable {
		if err = startIndexer(ctx, cfg, logger); err != nil {
			log.Fatalf("start indexer err %s", err.Error())
		}
	}

	defer func() {
		log.Println("shut down...")
		cancel()
		done := make(chan struct{})
		go func() {
			defer close(done)
			if err := node.Stop(); err != nil {
				log.Printf("stop comet node err %s", err.Error())
			}
			node.Wait()
			assembly.Stop()
		}()
		timer := time.NewTimer(time.Second * 10)
		select {
		case <-timer.C:
			os.Exit(1)
		case <-done:
			return
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
}
