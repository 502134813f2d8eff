// Package config предоставляет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек клиента
type Config struct {
	Env      string `yaml:"env" env:"FINANCEFLOW_ENV" env-default:"local"`
	StateDir string `yaml:"state_dir" env:"FINANCEFLOW_STATE_DIR"`
	Backend  `yaml:"backend"`
	Checkout `yaml:"checkout"`
}

// Backend структура для настройки подключения к серверу FinanceFlow
type Backend struct {
	BaseURL     string        `yaml:"base_url" env:"FINANCEFLOW_BACKEND_URL" env-default:"http://localhost:8000"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env:"FINANCEFLOW_HTTP_TIMEOUT" env-default:"10s"`
	RateLimit   float64       `yaml:"rate_limit" env:"FINANCEFLOW_RATE_LIMIT" env-default:"5"`
	RateBurst   int           `yaml:"rate_burst" env:"FINANCEFLOW_RATE_BURST" env-default:"10"`
}

// Checkout структура для настройки оплаты подписки:
// локальный сервер обратного вызова и опрос статуса платежа
type Checkout struct {
	CallbackAddr string        `yaml:"callback_addr" env:"FINANCEFLOW_CALLBACK_ADDR" env-default:"127.0.0.1:8455"`
	PackageID    string        `yaml:"package_id" env:"FINANCEFLOW_PACKAGE_ID" env-default:"monthly"`
	PollInterval time.Duration `yaml:"poll_interval" env:"FINANCEFLOW_POLL_INTERVAL" env-default:"2s"`
	PollAttempts int           `yaml:"poll_attempts" env:"FINANCEFLOW_POLL_ATTEMPTS" env-default:"5"`
	ConfirmDelay time.Duration `yaml:"confirm_delay" env:"FINANCEFLOW_CONFIRM_DELAY" env-default:"3s"`
}

// MustLoad функция для загрузки конфига. Путь берётся из CONFIG_PATH;
// без него конфиг собирается из переменных окружения и значений по умолчанию
func MustLoad() *Config {
	var cfg Config

	configPath := os.Getenv("CONFIG_PATH")
	if configPath != "" {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			log.Fatalf("file: %s - does not exist", configPath)
		}
		if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
			log.Fatalf("cannot read config: %s", err)
		}
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			log.Fatalf("cannot read config from env: %s", err)
		}
	}

	if cfg.StateDir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			log.Fatalf("cannot resolve state dir: %s", err)
		}
		cfg.StateDir = filepath.Join(base, "financeflow")
	}
	return &cfg
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"StateDir: %s\n"+
			"Backend:\n"+
			"  BaseURL: %s\n"+
			"  Timeout: %s\n"+
			"  RateLimit: %.1f\n"+
			"  RateBurst: %d\n"+
			"Checkout:\n"+
			"  CallbackAddr: %s\n"+
			"  PackageID: %s\n"+
			"  PollInterval: %s\n"+
			"  PollAttempts: %d\n"+
			"  ConfirmDelay: %s\n",
		c.Env,
		c.StateDir,
		c.BaseURL,
		c.TimeoutHTTP,
		c.RateLimit,
		c.RateBurst,
		c.CallbackAddr,
		c.PackageID,
		c.PollInterval,
		c.PollAttempts,
		c.ConfirmDelay,
	)
}
