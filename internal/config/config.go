package config

import (
	"fmt"
	"time"

	"github.com/BekaChkhiro/homevend-server-sub000/pkg/mq"
	"github.com/BekaChkhiro/homevend-server-sub000/pkg/mysql"
	"github.com/BekaChkhiro/homevend-server-sub000/pkg/payprovider"
	"github.com/spf13/viper"
)

type Config struct {
	API          API                `mapstructure:"api"`
	Database     mysql.Config       `mapstructure:"database"`
	RabbitMQ     mq.Config          `mapstructure:"rabbitmq"`
	Provider     payprovider.Config `mapstructure:"provider"`
	Verification Verification       `mapstructure:"verification"`
	Webhook      Webhook            `mapstructure:"webhook"`
}

type API struct {
	Port string `mapstructure:"port"`
}

// Verification drives the three polling modes: the burst right after order
// creation, the background sweep over stale PENDING transactions, and the
// per-call budget every gateway request runs under.
type Verification struct {
	BurstInterval    time.Duration `mapstructure:"burst_interval"`
	BurstMaxAttempts int           `mapstructure:"burst_max_attempts"`
	BurstMaxElapsed  time.Duration `mapstructure:"burst_max_elapsed"`
	SweepInterval    time.Duration `mapstructure:"sweep_interval"`
	SweepGrace       time.Duration `mapstructure:"sweep_grace"`
	SweepBatchSize   int           `mapstructure:"sweep_batch_size"`
	CallTimeout      time.Duration `mapstructure:"call_timeout"`
	MatchWindow      time.Duration `mapstructure:"match_window"`
}

type Webhook struct {
	StrictSignature bool `mapstructure:"strict_signature"`
}

func Load() (cfg *Config, err error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AddConfigPath("./config")

	err = viper.ReadInConfig()
	if err != nil {
		return cfg, fmt.Errorf("failed to load config: %w", err)
	}

	err = viper.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}
