package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	cmtos "github.com/cometbft/cometbft/libs/os"
	"github.com/spf13/viper"
)

var configTemplate *template.Template

func init() {
	var err error
	tmpl := template.New("configFileTemplate").Funcs(template.FuncMap{
		"StringsJoin": strings.Join,
	})
	if configTemplate, err = tmpl.Parse(defaultConfigTemplate); err != nil {
		panic(err)
	}
}

func ConfigFile(home string) string {
	return filepath.Join(home, "config", "config.toml")
}

// WriteConfigFile renders config with the embedded template and writes it
// to configFilePath.
func WriteConfigFile(configFilePath string, config *Config) error {
	var buffer bytes.Buffer
	if err := configTemplate.Execute(&buffer, config); err != nil {
		return err
	}
	return cmtos.WriteFile(configFilePath, buffer.Bytes(), 0o644)
}

// LoadConfig reads home/config/config.toml over the defaults.
func LoadConfig(home string) (*Config, error) {
	home = ExpandHome(home)
	cfg := &Config{
		Config: DefaultCometConfig(),
		App:    DefaultAppConfig(home),
	}
	cfg.SetRoot(home)

	v := viper.New()
	v.SetConfigFile(ConfigFile(home))
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.SetRoot(home)
	cfg.App.Home = home
	cfg.App.TimeoutCommit = uint64(cfg.Consensus.TimeoutCommit.Seconds())
	if err := cfg.ValidateBasic(); err != nil {
		return nil, fmt.Errorf("invalid configuration data: %w", err)
	}
	return cfg, nil
}

// Any change to the keys of the template must be reflected in the
// mapstructure tags of config.go.
//
//go:embed config.toml.tpl
var defaultConfigTemplate string
