package config

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"pwvault/internal/crypto"
	"pwvault/internal/infrastructure/storage"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"

	EnvPrefix = "PWVAULT"

	defaultEnv         = EnvLocal
	defaultLogLevel    = "info"
	defaultStoreDriver = storage.DriverJSON
	defaultStorePath   = "passwords.json"
	defaultEnvPath     = ".env"
)

// Ключи конфигурации в viper (в окружении - в верхнем регистре с префиксом PWVAULT_).
const (
	KeyEnv           = "app_env"
	KeyLogLevel      = "log_level"
	KeyStoreDriver   = "store_driver"
	KeyStorePath     = "store_path"
	KeyKDFIterations = "kdf_iterations"
	KeyKeySize       = "key_size"
	KeySaltSize      = "salt_size"
	KeyIVSize        = "iv_size"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Env           string `mapstructure:"app_env"`
	LogLevel      string `mapstructure:"log_level"`
	StoreDriver   string `mapstructure:"store_driver"`
	StorePath     string `mapstructure:"store_path"`
	KDFIterations int    `mapstructure:"kdf_iterations"`
	KeySize       int    `mapstructure:"key_size"`
	SaltSize      int    `mapstructure:"salt_size"`
	IVSize        int    `mapstructure:"iv_size"`
}

// SetDefaults задает значения по умолчанию для всех ключей.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyEnv, defaultEnv)
	v.SetDefault(KeyLogLevel, defaultLogLevel)
	v.SetDefault(KeyStoreDriver, defaultStoreDriver)
	v.SetDefault(KeyStorePath, defaultStorePath)
	v.SetDefault(KeyKDFIterations, crypto.DefaultIterations)
	v.SetDefault(KeyKeySize, crypto.DefaultKeySize)
	v.SetDefault(KeySaltSize, crypto.DefaultSaltSize)
	v.SetDefault(KeyIVSize, crypto.DefaultIVSize)
}

// Load загружает .env из рабочей директории (если есть), затем читает ключи
// через v (флаги, переменные PWVAULT_*, конфиг-файл, значения по умолчанию)
// и валидирует результат.
func Load(v *viper.Viper) (*Config, error) {
	if err := loadDotEnv(defaultEnvPath); err != nil {
		return nil, err
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	SetDefaults(v)

	cfg := &Config{
		Env:           v.GetString(KeyEnv),
		LogLevel:      v.GetString(KeyLogLevel),
		StoreDriver:   v.GetString(KeyStoreDriver),
		StorePath:     v.GetString(KeyStorePath),
		KDFIterations: v.GetInt(KeyKDFIterations),
		KeySize:       v.GetInt(KeyKeySize),
		SaltSize:      v.GetInt(KeySaltSize),
		IVSize:        v.GetInt(KeyIVSize),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func (c *Config) validate() error {
	if c.StorePath == "" {
		return fmt.Errorf("%w: %s must not be empty", ErrInvalidConfig, KeyStorePath)
	}
	if !slices.Contains(storage.Drivers(), c.StoreDriver) {
		return fmt.Errorf("%w: %s must be one of %v, got %q", ErrInvalidConfig, KeyStoreDriver, storage.Drivers(), c.StoreDriver)
	}
	switch c.Env {
	case EnvLocal, EnvDev, EnvProd:
	default:
		return fmt.Errorf("%w: %s must be local, dev or prod, got %q", ErrInvalidConfig, KeyEnv, c.Env)
	}
	if err := c.CryptoParams().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// CryptoParams возвращает параметры KDF и размеры конверта.
func (c *Config) CryptoParams() crypto.Params {
	return crypto.Params{
		Iterations: c.KDFIterations,
		KeySize:    c.KeySize,
		SaltSize:   c.SaltSize,
		IVSize:     c.IVSize,
	}
}
