package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// ErrMissingEnv means a required variable (CHAIN_ID or RPC_URL) is unset.
var ErrMissingEnv = errors.New("Please set your environment variables.")

type Config struct {
	ChainID          string `env:"CHAIN_ID" validate:"required,numeric"`
	RPCURL           string `env:"RPC_URL" validate:"required,url"`
	ContractDir      string `env:"CONTRACT_DIR" envDefault:"../contracts"`
	ContractName     string `env:"CONTRACT_NAME"`
	SetupConcurrency int    `env:"SETUP_CONCURRENCY" envDefault:"1" validate:"gte=1"`
	WaitReceipts     bool   `env:"WAIT_RECEIPTS" envDefault:"false"`
	JournalPath      string `env:"JOURNAL_PATH"`
	LogLevel         string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=trace debug info warn warning error fatal panic"`
	HTTPAddr         string `env:"HTTP_ADDR" envDefault:":8080"`
}

// LoadDotEnv reads .env style files into the process environment without overriding
// variables that are already set. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Load parses the process environment. contractName is used when CONTRACT_NAME is unset.
func Load(contractName string) (*Config, error) {
	return parse(env.Options{}, contractName)
}

// LoadFrom parses an explicit environment instead of the process one.
func LoadFrom(environ map[string]string, contractName string) (*Config, error) {
	return parse(env.Options{Environment: environ}, contractName)
}

func parse(opts env.Options, contractName string) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.ContractName == "" {
		cfg.ContractName = contractName
	}

	if err := validator.New().Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, e := range verrs {
				if e.Tag() == "required" {
					return nil, fmt.Errorf("%w (%s)", ErrMissingEnv, e.Field())
				}
			}
			e := verrs[0]
			return nil, fmt.Errorf("invalid %s: failed %s check", e.Field(), e.Tag())
		}
		return nil, err
	}

	return &cfg, nil
}

// Lookup reads one variable from the process environment.
func Lookup(key string) (string, bool) {
	return os.LookupEnv(key)
}
