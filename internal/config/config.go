package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DriverMySQL  = "mysql"
	DriverMemory = "memory"
)

type Config struct {
	Service ServiceConfig `yaml:"service"`
	HTTP    HTTPConfig    `yaml:"http"`
	GRPC    GRPCConfig    `yaml:"grpc"`
	Storage StorageConfig `yaml:"storage"`
	Redis   RedisConfig   `yaml:"redis"`
	Stock   StockConfig   `yaml:"stock"`
}

type ServiceConfig struct {
	Name     string `yaml:"name"`
	Env      string `yaml:"env"`
	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`
}

type HTTPConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// GRPCConfig leaves the gRPC server off when Addr is empty.
type GRPCConfig struct {
	Addr string `yaml:"addr"`
}

type StorageConfig struct {
	Driver          string        `yaml:"driver"`
	DSN             string        `yaml:"dsn"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	EnsureSchema    bool          `yaml:"ensure_schema"`
}

// RedisConfig selects the Redis item lock when Addr is set.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	PoolSize int           `yaml:"pool_size"`
	LockTTL  time.Duration `yaml:"lock_ttl"`
}

type StockConfig struct {
	LockOrders bool          `yaml:"lock_orders"`
	LockWait   time.Duration `yaml:"lock_wait"`
}

func Default() Config {
	return Config{
		Service: ServiceConfig{Name: "stock-ledger", Env: "dev", LogLevel: "info"},
		HTTP: HTTPConfig{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		GRPC: GRPCConfig{Addr: ":50051"},
		Storage: StorageConfig{
			Driver:          DriverMySQL,
			DSN:             "root:root@tcp(localhost:3306)/stockledger?parseTime=true",
			MaxOpenConns:    50,
			MaxIdleConns:    25,
			ConnMaxLifetime: 5 * time.Minute,
			EnsureSchema:    true,
		},
		Redis: RedisConfig{PoolSize: 100, LockTTL: 5 * time.Second},
		Stock: StockConfig{LockOrders: true, LockWait: 3 * time.Second},
	}
}

// Load starts from Default, applies the YAML file at path when path is
// not empty, then the environment.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Service.Name = getEnv("SERVICE_NAME", c.Service.Name)
	c.Service.Env = getEnv("ENV", c.Service.Env)
	c.Service.LogLevel = getEnv("LOG_LEVEL", c.Service.LogLevel)
	c.Service.LogFile = getEnv("LOG_FILE", c.Service.LogFile)
	c.HTTP.Addr = getEnv("HTTP_ADDR", c.HTTP.Addr)
	c.GRPC.Addr = getEnv("GRPC_ADDR", c.GRPC.Addr)
	c.Storage.Driver = getEnv("STORAGE_DRIVER", c.Storage.Driver)
	c.Storage.DSN = getEnv("MYSQL_DSN", c.Storage.DSN)
	c.Redis.Addr = getEnv("REDIS_ADDR", c.Redis.Addr)

	if raw, ok := os.LookupEnv("LOCK_ORDERS"); ok {
		v, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return fmt.Errorf("parse LOCK_ORDERS: %w", err)
		}
		c.Stock.LockOrders = v
	}
	return nil
}

func (c Config) Validate() error {
	var errs []error

	switch c.Storage.Driver {
	case DriverMySQL:
		if c.Storage.DSN == "" {
			errs = append(errs, errors.New("storage.dsn is required for the mysql driver"))
		}
	case DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("storage.driver %q is not one of %s, %s", c.Storage.Driver, DriverMySQL, DriverMemory))
	}
	if c.HTTP.Addr == "" {
		errs = append(errs, errors.New("http.addr is required"))
	}
	if c.Stock.LockWait <= 0 {
		errs = append(errs, errors.New("stock.lock_wait must be positive"))
	}
	if c.Redis.Addr != "" && c.Redis.LockTTL <= 0 {
		errs = append(errs, errors.New("redis.lock_ttl must be positive"))
	}

	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
