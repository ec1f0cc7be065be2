package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/calehh/assembly-app/config"
	"github.com/calehh/assembly-app/state"
	"github.com/calehh/assembly-app/tx"
	"github.com/calehh/assembly-app/tx/handler"
	"github.com/calehh/assembly-app/types"
	abcitypes "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
)

var ErrNoAppState = errors.New("genesis has no app_state")

var _ abcitypes.Application = &AssemblyApp{}

type AssemblyApp struct {
	cfg    *config.AppConfig
	logger cmtlog.Logger

	db       *state.StateDB
	txHdlrs  map[tx.TxType]handler.TxHandler
	queriers map[string]Querier

	// block state between FinalizeBlock and Commit
	st *state.State
}

func NewAssemblyApp(cfg *config.AppConfig, logger cmtlog.Logger) (app *AssemblyApp, err error) {
	db, err := state.NewStateDB(cfg.Path("data"), logger)
	if err != nil {
		return nil, err
	}
	return NewAssemblyAppWithDB(cfg, db, logger), nil
}

// NewAssemblyAppWithDB runs the app over an already opened store.
func NewAssemblyAppWithDB(cfg *config.AppConfig, db *state.StateDB, logger cmtlog.Logger) *AssemblyApp {
	logger = logger.With("module", "app")
	app := &AssemblyApp{
		cfg:      cfg,
		logger:   logger,
		db:       db,
		queriers: make(map[string]Querier),
	}
	app.registerTxHandler()
	app.registerQuerier()
	return app
}

func (app *AssemblyApp) Stop() {
	err := app.db.Close()
	if err != nil {
		app.logger.Error("close db fail", "err", err)
	}
	app.logger.Info("assembly app stopped")
}

func (app *AssemblyApp) registerTxHandler() {
	app.txHdlrs = handler.NewTxHandlers(app.logger)
	app.db.SetDispatcher(handler.NewDispatcher(app.logger, app.txHdlrs))
}

func (app *AssemblyApp) InitChain(_ context.Context, chain *abcitypes.RequestInitChain) (res *abcitypes.ResponseInitChain, err error) {
	if header := app.db.Header(); header.Hash != nil {
		// genesis was committed before a restart that came ahead of block 1
		app.logger.Info("InitChain genesis already applied", "chainId", header.ChainId)
		return &abcitypes.ResponseInitChain{AppHash: header.Hash}, nil
	}
	if len(chain.AppStateBytes) == 0 {
		return nil, ErrNoAppState
	}
	var g types.AppGenesis
	if err = json.Unmarshal(chain.AppStateBytes, &g); err != nil {
		return nil, fmt.Errorf("decode app_state: %w", err)
	}
	st := app.db.NewState()
	st.SetChainId(chain.ChainId)
	st.SetTime(chain.Time.Unix())
	if err = st.InitGenesis(&g); err != nil {
		app.logger.Error("InitChain genesis fail", "err", err)
		return nil, err
	}
	_, err = st.Update()
	if err != nil {
		app.logger.Error("InitChain update state fail", "err", err)
		return nil, err
	}
	h, err := app.db.SetState(st)
	if err != nil {
		app.logger.Error("InitChain apply state fail", "err", err)
		return nil, err
	}
	app.logger.Info("InitChain", "chainId", chain.ChainId, "humans", len(g.Humans), "appHash", h)
	return &abcitypes.ResponseInitChain{
		AppHash: h.Bytes(),
	}, nil
}

func (app *AssemblyApp) Info(ctx context.Context, info *abcitypes.RequestInfo) (*abcitypes.ResponseInfo, error) {
	header := app.db.Header()
	return &abcitypes.ResponseInfo{
		Data:             types.AppModuleName,
		LastBlockHeight:  int64(header.Height),
		LastBlockAppHash: header.Hash,
	}, nil
}

func (app *AssemblyApp) ExtendVote(_ context.Context, extend *abcitypes.RequestExtendVote) (*abcitypes.ResponseExtendVote, error) {
	return &abcitypes.ResponseExtendVote{}, nil
}

func (app *AssemblyApp) VerifyVoteExtension(_ context.Context, verify *abcitypes.RequestVerifyVoteExtension) (*abcitypes.ResponseVerifyVoteExtension, error) {
	return &abcitypes.ResponseVerifyVoteExtension{Status: abcitypes.ResponseVerifyVoteExtension_ACCEPT}, nil
}

func (app *AssemblyApp) ApplySnapshotChunk(context.Context, *abcitypes.RequestApplySnapshotChunk) (*abcitypes.ResponseApplySnapshotChunk, error) {
	return &abcitypes.ResponseApplySnapshotChunk{}, nil
}

func (app *AssemblyApp) ListSnapshots(context.Context, *abcitypes.RequestListSnapshots) (*abcitypes.ResponseListSnapshots, error) {
	return &abcitypes.ResponseListSnapshots{}, nil
}

func (app *AssemblyApp) LoadSnapshotChunk(context.Context, *abcitypes.RequestLoadSnapshotChunk) (*abcitypes.ResponseLoadSnapshotChunk, error) {
	return &abcitypes.ResponseLoadSnapshotChunk{}, nil
}

func (app *AssemblyApp) OfferSnapshot(context.Context, *abcitypes.RequestOfferSnapshot) (*abcitypes.ResponseOfferSnapshot, error) {
	return &abcitypes.ResponseOfferSnapshot{}, nil
}
