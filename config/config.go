package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config 配置信息
type Config struct {
	App         *App         `json:"app" yaml:"app"`
	Server      *Server      `json:"server" yaml:"server"`
	Auth        *Auth        `json:"auth" yaml:"auth"`
	Loyalty     *Loyalty     `json:"loyalty" yaml:"loyalty"`
	Storage     *Storage     `json:"storage" yaml:"storage"`
	Idempotency *Idempotency `json:"idempotency" yaml:"idempotency"`
	MySQL       *MySQL       `json:"mysql" yaml:"mysql"`
	Redis       *Redis       `json:"redis" yaml:"redis"`
}

type Server struct {
	Http      int        `json:"http" yaml:"http"`
	RateLimit *RateLimit `json:"rate_limit" yaml:"rate_limit"`
}

// RateLimit 按客户端 IP 限流, RPS <= 0 时关闭
type RateLimit struct {
	RPS   float64 `json:"rps" yaml:"rps"`
	Burst int     `json:"burst" yaml:"burst"`
}

// Auth 静态共享密钥, 通过 x-api-key 头传入
type Auth struct {
	ApiKey string `json:"-" yaml:"api_key"`
}

// New 读取配置文件; 文件不存在时使用默认值, 之后再叠加环境变量
func New(filename string) *Config {
	conf, err := Load(filename)
	if err != nil {
		panic(err)
	}
	return conf
}

func Load(filename string) (*Config, error) {
	conf := Default()

	content, err := os.ReadFile(filename)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(content, conf); err != nil {
			return nil, fmt.Errorf("解析 %s 读取错误: %w", filename, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, err
	}

	if err := conf.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

// Default 与原有服务保持一致的默认值
func Default() *Config {
	return &Config{
		App:    &App{Env: "dev"},
		Server: &Server{Http: 3000, RateLimit: &RateLimit{}},
		Auth:   &Auth{},
		Loyalty: &Loyalty{
			DailyCap: 5000,
			EarnRate: 100,
			Timezone: "Africa/Lagos",
			Currency: "NGN",
		},
		Storage: &Storage{Driver: DriverMemory},
		Idempotency: &Idempotency{
			Driver:        DriverMemory,
			TTL:           24 * time.Hour,
			SweepInterval: time.Minute,
		},
		MySQL: &MySQL{Host: "127.0.0.1", Port: 3306, Charset: "utf8mb4"},
		Redis: &Redis{Address: "127.0.0.1", Port: 6379},
	}
}

type lookupFunc func(key string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	if v, ok := lookup("PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: PORT: %w", err)
		}
		c.Server.Http = port
	}
	if v, ok := lookup("API_KEY"); ok && v != "" {
		c.Auth.ApiKey = v
	}
	if v, ok := lookup("DAILY_CAP"); ok && v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("config: DAILY_CAP: %w", err)
		}
		c.Loyalty.DailyCap = n
	}
	if v, ok := lookup("EARN_RATE"); ok && v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("config: EARN_RATE: %w", err)
		}
		c.Loyalty.EarnRate = n
	}
	if v, ok := lookup("TIMEZONE"); ok && v != "" {
		c.Loyalty.Timezone = v
	}
	if v, ok := lookup("CURRENCY"); ok && v != "" {
		c.Loyalty.Currency = v
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Auth == nil || c.Auth.ApiKey == "" {
		return errors.New("config: auth.api_key (API_KEY) is required")
	}
	if err := c.Loyalty.Validate(); err != nil {
		return err
	}
	if c.Server == nil || c.Storage == nil || c.Idempotency == nil {
		return errors.New("config: server, storage and idempotency sections must not be null")
	}
	if !c.Storage.Driver.oneOf(DriverMemory, DriverMySQL, DriverSQLite) {
		return fmt.Errorf("config: unknown storage driver %q", c.Storage.Driver)
	}
	if !c.Idempotency.Driver.oneOf(DriverMemory, DriverRedis, DriverMySQL, DriverSQLite) {
		return fmt.Errorf("config: unknown idempotency driver %q", c.Idempotency.Driver)
	}
	if c.Storage.Driver.oneOf(DriverMySQL, DriverSQLite) &&
		c.Idempotency.Driver.oneOf(DriverMySQL, DriverSQLite) &&
		c.Storage.Driver != c.Idempotency.Driver {
		return errors.New("config: storage and idempotency must share one sql driver")
	}
	if c.Idempotency.TTL < 0 {
		return errors.New("config: idempotency.ttl must not be negative")
	}
	return nil
}

// Debug 调试模式
func (c *Config) Debug() bool {
	return c.App.Debug
}
