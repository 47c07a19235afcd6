package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel string   `yaml:"log-level" env-default:"info"`
	Wallet   Wallet   `yaml:"wallet"`
	Contract Contract `yaml:"contract"`
}

type Wallet struct {
	Host string `yaml:"host" env-default:"localhost"`
	Port string `yaml:"port" env-default:"9190"`
}

// Contract pins the deployed game contract this client mirrors. Fixed for a
// deployment; not editable at runtime.
type Contract struct {
	Name     string `yaml:"name" env-default:"tictactoe"`
	Index    uint64 `yaml:"index"`
	Subindex uint64 `yaml:"subindex" env-default:"0"`
	GameID   uint64 `yaml:"game-id" env-default:"0"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

func (that *Wallet) GetBridgeAddr() string {
	return fmt.Sprintf("ws://%s:%s/wallet", that.Host, that.Port)
}
