package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	acrypto "github.com/calehh/assembly-app/crypto"
	"github.com/cometbft/cometbft/config"
	"github.com/cometbft/cometbft/crypto"
	"github.com/cometbft/cometbft/p2p"
	"github.com/cometbft/cometbft/privval"
	"github.com/ethereum/go-ethereum/common"
)

const (
	DefaultHome         = "$HOME/.assembly"
	DefaultIndexerAddr  = "127.0.0.1:8086"
	DefaultBatchSize    = 200
	DefaultPageSize     = 1000
	DefaultPollInterval = 2 * time.Second
)

type IndexerConfig struct {
	Enable       bool          `mapstructure:"enable"`
	ListenAddr   string        `mapstructure:"listen_addr"`
	DBPath       string        `mapstructure:"db_path"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

type OracleConfig struct {
	RegistryURL string `mapstructure:"registry_url"`
	IndexerURL  string `mapstructure:"indexer_url"`
	BatchSize   int    `mapstructure:"batch_size"`
	PageSize    int    `mapstructure:"page_size"`
	CacheDir    string `mapstructure:"cache_dir"`
}

type AppConfig struct {
	Home          string `mapstructure:"-"`
	TimeoutCommit uint64 `mapstructure:"-"`

	Indexer IndexerConfig `mapstructure:"indexer"`
	Oracle  OracleConfig  `mapstructure:"oracle"`
}

func DefaultAppConfig(home string) *AppConfig {
	return &AppConfig{
		Home: home,
		Indexer: IndexerConfig{
			Enable:       true,
			ListenAddr:   DefaultIndexerAddr,
			DBPath:       "data/indexer.db",
			PollInterval: DefaultPollInterval,
		},
		Oracle: OracleConfig{
			IndexerURL: "http://" + DefaultIndexerAddr,
			BatchSize:  DefaultBatchSize,
			PageSize:   DefaultPageSize,
			CacheDir:   "data/oracle-cache",
		},
	}
}

func (c *AppConfig) ValidateBasic() error {
	if c.Indexer.Enable && c.Indexer.ListenAddr == "" {
		return errors.New("indexer.listen_addr is required when the indexer is enabled")
	}
	if c.Indexer.PollInterval < 0 {
		return errors.New("indexer.poll_interval can't be negative")
	}
	if c.Oracle.BatchSize <= 0 {
		return errors.New("oracle.batch_size must be positive")
	}
	if c.Oracle.PageSize <= 0 {
		return errors.New("oracle.page_size must be positive")
	}
	return nil
}

// Path resolves p against the home directory unless it is absolute.
func (c *AppConfig) Path(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Home, p)
}

type Config struct {
	*config.Config `mapstructure:",squash"`

	App *AppConfig `mapstructure:"app"`
}

func ExpandHome(home string) string {
	if len(home) == 0 {
		home = DefaultHome
	}
	return os.ExpandEnv(home)
}

// DefaultConfig returns the defaults rooted at home and creates its config
// directory.
func DefaultConfig(home string) (*Config, error) {
	home = ExpandHome(home)
	cfg := &Config{
		DefaultCometConfig(),
		DefaultAppConfig(home),
	}
	cfg.SetRoot(home)
	dir := filepath.Join(home, "config")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("could not create directory %q: %w", dir, err)
	}
	return cfg, nil
}

func (c *Config) ValidateBasic() error {
	if err := c.Config.ValidateBasic(); err != nil {
		return err
	}
	return c.App.ValidateBasic()
}

func (c *Config) CreatorKeyFile() string {
	return filepath.Join(c.RootDir, "config", "creator.key")
}

// InitializeCreator generates the account key that genesis names as
// creator and oracle updater.
func InitializeCreator(c *Config) (creator common.Address, err error) {
	k, err := acrypto.GenerateKey()
	if err != nil {
		return
	}
	if err = k.Save(c.CreatorKeyFile()); err != nil {
		return
	}
	return k.Address(), nil
}

func InitializeNodeValidatorFiles(config *Config, privKey crypto.PrivKey) (nodeID string, pk crypto.PubKey, err error) {
	nodeKey, err := p2p.LoadOrGenNodeKey(config.NodeKeyFile())
	if err != nil {
		return "", nil, err
	}
	nodeID = string(nodeKey.ID())

	pvKeyFile := config.PrivValidatorKeyFile()
	if err := os.MkdirAll(filepath.Dir(pvKeyFile), 0o777); err != nil {
		return "", nil, fmt.Errorf("could not create directory %q: %w", filepath.Dir(pvKeyFile), err)
	}

	pvStateFile := config.PrivValidatorStateFile()
	if err := os.MkdirAll(filepath.Dir(pvStateFile), 0o777); err != nil {
		return "", nil, fmt.Errorf("could not create directory %q: %w", filepath.Dir(pvStateFile), err)
	}

	var filePV *privval.FilePV
	if privKey == nil {
		filePV = privval.LoadOrGenFilePV(pvKeyFile, pvStateFile)
	} else {
		filePV = privval.NewFilePV(privKey, pvKeyFile, pvStateFile)
		filePV.Save()
	}
	pukey, err := filePV.GetPubKey()
	if err != nil {
		return "", nil, err
	}

	return nodeID, pukey, nil
}

func DefaultCometConfig() *config.Config {
	cometConfig := config.DefaultConfig()
	cometConfig.Consensus.TimeoutPropose = time.Second * 3
	cometConfig.Consensus.TimeoutPrevote = time.Second * 1
	cometConfig.Consensus.TimeoutPrecommit = time.Second * 1
	cometConfig.Consensus.TimeoutCommit = time.Millisecond * 1200
	return cometConfig
}
