package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/cometbft/cometbft/crypto"
	cmtjson "github.com/cometbft/cometbft/libs/json"
	cmttypes "github.com/cometbft/cometbft/types"
	"github.com/ethereum/go-ethereum/common"
)

type GenesisValidator struct {
	Address crypto.Address `json:"address"`
	PubKey  crypto.PubKey  `json:"pub_key"`
	Power   int64          `json:"power"`
	Name    string         `json:"name"`
}

// GenesisDoc defines the initial conditions for a CometBFT blockchain, in particular its validator set.
type GenesisDoc struct {
	GenesisTime     time.Time                 `json:"genesis_time"`
	ChainID         string                    `json:"chain_id"`
	InitialHeight   int64                     `json:"initial_height"`
	ConsensusParams *cmttypes.ConsensusParams `json:"consensus_params,omitempty"`
	Validators      []GenesisValidator        `json:"validators"`
	AppHash         []byte                    `json:"app_hash"`
	AppState        json.RawMessage           `json:"app_state"`
}

// SaveAs is a utility method for saving GenensisDoc as a JSON file.
func (genDoc *GenesisDoc) SaveAs(file string) error {
	genDocBytes, err := cmtjson.MarshalIndent(genDoc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(file, genDocBytes, 0o600)
}

func (ag *GenesisDoc) ValidateAndComplete() error {
	if ag.ChainID == "" {
		return errors.New("genesis doc must include non-empty chain_id")
	}

	if ag.InitialHeight < 0 {
		return fmt.Errorf("initial_height cannot be negative (got %v)", ag.InitialHeight)
	}

	if ag.InitialHeight == 0 {
		ag.InitialHeight = 1
	}

	if ag.GenesisTime.IsZero() {
		ag.GenesisTime = time.Now().Round(0).UTC()
	}

	return nil
}

func ExportGenesisFile(genesis *GenesisDoc, genFile string) error {
	if err := genesis.ValidateAndComplete(); err != nil {
		return err
	}
	return genesis.SaveAs(genFile)
}

// GenesisBalance funds an address at chain start. Amount is a decimal token
// string, e.g. "1000.5".
type GenesisBalance struct {
	Address common.Address `json:"address"`
	Amount  string         `json:"amount"`
}

// GenesisParams mirrors Params with decimal token strings for amounts.
type GenesisParams struct {
	SeatCount              uint64 `json:"seat_count"`
	VotingPercentThreshold uint64 `json:"voting_percent_threshold"`
	Quorum                 uint64 `json:"quorum"`
	TallyDuration          int64  `json:"tally_duration"`
	DelegationRewardRate   string `json:"delegation_reward_rate"`
	ReferredAmount         string `json:"referred_amount"`
	ReferrerAmount         string `json:"referrer_amount"`
	ExecRewardBase         uint64 `json:"exec_reward_base"`
	ExecRewardExponentMax  uint64 `json:"exec_reward_exponent_max"`
	OracleBatchMax         uint64 `json:"oracle_batch_max"`
}

// AppGenesis is the app_state section of the genesis file.
type AppGenesis struct {
	Roles    Roles            `json:"roles"`
	Params   GenesisParams    `json:"params"`
	Balances []GenesisBalance `json:"balances"`
	Humans   []common.Address `json:"humans"`
}

func DefaultAppGenesis(creator common.Address) *AppGenesis {
	return &AppGenesis{
		Roles: Roles{
			Creator:       creator,
			OracleUpdater: creator,
		},
		Params: GenesisParams{
			SeatCount:              DefaultSeatCount,
			VotingPercentThreshold: DefaultVotingPercent,
			Quorum:                 DefaultQuorum,
			TallyDuration:          DefaultTallyDuration,
			DelegationRewardRate:   "0.001",
			ReferredAmount:         "10",
			ReferrerAmount:         "5",
			ExecRewardBase:         DefaultExecRewardBase,
			ExecRewardExponentMax:  DefaultExecRewardExponentMax,
			OracleBatchMax:         DefaultOracleBatchMax,
		},
		Balances: []GenesisBalance{},
		Humans:   []common.Address{},
	}
}

const AppModuleName = "assembly"
const DefaultPower = 1000

const (
	FlagOverwrite = "overwrite"
	FlagChainID   = "chain-id"
	FlagHome      = "home"
)
