package configs

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	App struct {
		Name     string `koanf:"name"`
		HTTPAddr string `koanf:"http_addr"`
		LogFile  string `koanf:"log_file"`
	} `koanf:"app"`

	MySQL struct {
		DSN             string        `koanf:"dsn"`
		MaxOpenConns    int           `koanf:"max_open_conns"`
		MaxIdleConns    int           `koanf:"max_idle_conns"`
		ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	} `koanf:"mysql"`

	Redis struct {
		Addr     string `koanf:"addr"`
		Password string `koanf:"password"`
	} `koanf:"redis"`

	Session struct {
		TTL        time.Duration `koanf:"ttl"`
		CookieName string        `koanf:"cookie_name"`
	} `koanf:"session"`

	Rabbit struct {
		URL string `koanf:"url"`
	} `koanf:"rabbitmq"`

	Kafka struct {
		Brokers []string `koanf:"brokers"`
		Topic   string   `koanf:"topic"`
		GroupID string   `koanf:"group_id"`
	} `koanf:"kafka"`

	Security struct {
		ResetSecret string        `koanf:"reset_secret"`
		Issuer      string        `koanf:"issuer"`
		ResetTTL    time.Duration `koanf:"reset_ttl"`
		ResetURL    string        `koanf:"reset_url"`
	} `koanf:"security"`

	Stripe struct {
		SecretKey string `koanf:"secret_key"`
		Currency  string `koanf:"currency"`
	} `koanf:"stripe"`

	SMTP struct {
		Host     string `koanf:"host"`
		Port     int    `koanf:"port"`
		Username string `koanf:"username"`
		Password string `koanf:"password"`
		From     string `koanf:"from"`
	} `koanf:"smtp"`

	Catalog struct {
		PageSize      int `koanf:"page_size"`
		AdminPageSize int `koanf:"admin_page_size"`
	} `koanf:"catalog"`

	Invoice struct {
		Dir string `koanf:"dir"`
	} `koanf:"invoice"`

	Uploads struct {
		Dir string `koanf:"dir"`
	} `koanf:"uploads"`
}

func Load(pathDir, envName string) (Config, error) {
	k := koanf.New(".")
	// 1) base
	if err := k.Load(file.Provider(fmt.Sprintf("%s/base.yaml", pathDir)), yaml.Parser()); err != nil {
		return Config{}, fmt.Errorf("load base: %w", err)
	}

	// 2) env overlay (dev/staging/prod). Optional: allow missing for local runs.
	_ = k.Load(file.Provider(fmt.Sprintf("%s/%s.yaml", pathDir, envName)), yaml.Parser())

	// 3) environment variables override (prefix SHOPFRONT_, nested with __)
	// e.g. SHOPFRONT_MYSQL__DSN, SHOPFRONT_STRIPE__SECRET_KEY
	if err := k.Load(env.Provider("SHOPFRONT_", ".", func(s string) string {
		s = strings.TrimPrefix(s, "SHOPFRONT_")
		s = strings.ReplaceAll(s, "__", ".")
		return strings.ToLower(s)
	}), nil); err != nil {
		return Config{}, fmt.Errorf("env overlay: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.App.HTTPAddr == "" {
		return fmt.Errorf("app.http_addr required")
	}
	if c.MySQL.DSN == "" {
		return fmt.Errorf("mysql.dsn required")
	}
	if c.Security.ResetSecret == "" {
		return fmt.Errorf("security.reset_secret required")
	}
	if c.Invoice.Dir == "" {
		return fmt.Errorf("invoice.dir required")
	}
	if c.Uploads.Dir == "" {
		return fmt.Errorf("uploads.dir required")
	}
	if c.Catalog.PageSize <= 0 {
		return fmt.Errorf("catalog.page_size must be positive")
	}
	return nil
}
