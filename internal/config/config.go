package config

import (
	"os"
	"path"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Public  Public
	Private Private
}

type Public struct {
	Addr                     string   `yaml:"addr"`
	LogLevel                 string   `yaml:"log_level"`
	LogJSON                  bool     `yaml:"log_json"`
	JwtTTLHours              int      `yaml:"jwt_ttl_hours"`
	CodeTTLMinutes           int      `yaml:"code_ttl_minutes"`
	CodeLen                  int      `yaml:"code_len"`
	DefaultPageLimit         int      `yaml:"default_page_limit"`
	CodeSweepIntervalMinutes int      `yaml:"code_sweep_interval_minutes"`
	AllowedOrigins           []string `yaml:"allowed_origins"`
}

type Pg struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Dbname   string `yaml:"dbname"`
}

type Email struct {
	SMTPServer string `yaml:"smtp_server"`
	SMTPPort   int    `yaml:"smtp_port"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	SenderName string `yaml:"sender_name"`
	Timeout    int    `yaml:"timeout"` // seconds
}

type Private struct {
	Pg     Pg     `yaml:"pg"`
	JwtKey string `yaml:"jwt_key"`
	Email  Email  `yaml:"email"`
}

func (c *Config) JwtKey() string {
	return c.Private.JwtKey
}

func (c *Config) JwtTTL() time.Duration {
	return time.Duration(c.Public.JwtTTLHours) * time.Hour
}

func (c *Config) CodeTTL() time.Duration {
	return time.Duration(c.Public.CodeTTLMinutes) * time.Minute
}

func (c *Config) CodeSweepInterval() time.Duration {
	return time.Duration(c.Public.CodeSweepIntervalMinutes) * time.Minute
}

func mustLoadPath(configPath string, output interface{}) {
	// check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)

	if err != nil {
		panic("can't read config file")
	}

	err = yaml.Unmarshal(configFile, output)
	if err != nil {
		panic("can't unmarshal config file")
	}
}

func MustLoad(configFolder string) *Config {
	var public Public
	mustLoadPath(path.Join(configFolder, "public.yaml"), &public)

	var private Private
	mustLoadPath(path.Join(configFolder, "private.yaml"), &private)

	cfg := &Config{public, private}
	cfg.applyEnv()
	cfg.applyDefaults()
	cfg.mustValidate()
	return cfg
}

// applyEnv lets deployment environments override file values. Email
// credentials may stay empty; sending then degrades to a delivery error
// instead of failing startup.
func (c *Config) applyEnv() {
	setString(&c.Private.Pg.Host, "PG_HOST")
	setInt(&c.Private.Pg.Port, "PG_PORT")
	setString(&c.Private.Pg.User, "PG_USER")
	setString(&c.Private.Pg.Password, "PG_PASSWORD")
	setString(&c.Private.Pg.Dbname, "PG_DBNAME")
	setString(&c.Private.JwtKey, "JWT_SECRET")
	setString(&c.Private.Email.SMTPServer, "SMTP_HOST")
	setInt(&c.Private.Email.SMTPPort, "SMTP_PORT")
	setString(&c.Private.Email.Username, "SMTP_USERNAME")
	setString(&c.Private.Email.Password, "SMTP_PASSWORD")
}

func (c *Config) applyDefaults() {
	if c.Public.Addr == "" {
		c.Public.Addr = ":8080"
	}
	if c.Public.LogLevel == "" {
		c.Public.LogLevel = "info"
	}
	if c.Public.JwtTTLHours == 0 {
		c.Public.JwtTTLHours = 7 * 24
	}
	if c.Public.CodeTTLMinutes == 0 {
		c.Public.CodeTTLMinutes = 10
	}
	if c.Public.CodeLen == 0 {
		c.Public.CodeLen = 6
	}
	if c.Public.DefaultPageLimit == 0 {
		c.Public.DefaultPageLimit = 10
	}
	if c.Public.CodeSweepIntervalMinutes == 0 {
		c.Public.CodeSweepIntervalMinutes = 5
	}
}

func (c *Config) mustValidate() {
	if c.Private.JwtKey == "" {
		panic("config: jwt_key is required (file or JWT_SECRET)")
	}
	if c.Private.Pg.Host == "" || c.Private.Pg.Dbname == "" {
		panic("config: pg host and dbname are required")
	}
}

func setString(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

func setInt(dst *int, env string) {
	if v := os.Getenv(env); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
