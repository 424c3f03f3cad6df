package commands

import (
	"errors"

	"github.com/spf13/viper"
)

type Config struct {
	SummaryDir string      `mapstructure:"summary_dir"`
	Suite      string      `mapstructure:"suite"`
	Workers    int         `mapstructure:"workers"`
	Format     string      `mapstructure:"format"`
	Output     string      `mapstructure:"output"`
	Agent      AgentConfig `mapstructure:"agent"`
	Sim        SimConfig   `mapstructure:"sim"`
}

type AgentConfig struct {
	Command string   `mapstructure:"command"`
	Args    []string `mapstructure:"args"`
}

type SimConfig struct {
	YRate float64 `mapstructure:"y_rate"`
	XRate float64 `mapstructure:"x_rate"`
	Seed  int64   `mapstructure:"seed"`
}

func LoadConfig(path string) (Config, error) {
	cfg := Config{}
	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(".agenteval")
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return cfg, nil
		}
		return cfg, err
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
