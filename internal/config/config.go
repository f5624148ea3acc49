// internal/config/config.go
package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Env      string         `mapstructure:"env"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Database DatabaseConfig `mapstructure:"database"`
	DB       DBConfig       `mapstructure:"db"`
	Mail     MailConfig     `mapstructure:"mail"`
	SMTP     SMTPConfig     `mapstructure:"smtp"`
	Sendgrid SendgridConfig `mapstructure:"sendgrid"`
	Redis    RedisConfig    `mapstructure:"redis"`
	AMQP     AMQPConfig     `mapstructure:"amqp"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Dispatch DispatchConfig `mapstructure:"dispatch"`
	Log      LogConfig      `mapstructure:"log"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

// DatabaseConfig takes a full URL; DBConfig builds one from parts when URL is empty.
type DatabaseConfig struct {
	URL          string `mapstructure:"url"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

type MailConfig struct {
	Driver       string `mapstructure:"driver"` // smtp, sendgrid, console
	FromName     string `mapstructure:"from_name"`
	FromAddress  string `mapstructure:"from_address"`
	AdminAddress string `mapstructure:"admin_address"`
}

type SMTPConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	User string `mapstructure:"user"`
	Pass string `mapstructure:"pass"`
}

type SendgridConfig struct {
	APIKey string `mapstructure:"api_key"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type AMQPConfig struct {
	URL string `mapstructure:"url"`
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	Disabled  bool   `mapstructure:"disabled"`
}

type DispatchConfig struct {
	// RecordMode is "bulk" (one insert after the loop) or "incremental" (one insert per send).
	RecordMode        string        `mapstructure:"record_mode"`
	Async             bool          `mapstructure:"async"`
	LeaseTTL          time.Duration `mapstructure:"lease_ttl"`
	ReconcileInterval time.Duration `mapstructure:"reconcile_interval"`
	InstanceID        string        `mapstructure:"instance_id"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json, console
}

var keys = map[string]any{
	"env":                         "dev",
	"http.addr":                   ":8080",
	"database.url":                "",
	"database.max_open_conns":     10,
	"database.max_idle_conns":     5,
	"db.host":                     "localhost",
	"db.port":                     "5432",
	"db.user":                     "postgres",
	"db.password":                 "",
	"db.name":                     "edutour",
	"db.sslmode":                  "disable",
	"mail.driver":                 "smtp",
	"mail.from_name":              "Go2Skul Education Group",
	"mail.from_address":           "",
	"mail.admin_address":          "",
	"smtp.host":                   "",
	"smtp.port":                   587,
	"smtp.user":                   "",
	"smtp.pass":                   "",
	"sendgrid.api_key":            "",
	"redis.addr":                  "",
	"redis.password":              "",
	"redis.db":                    0,
	"amqp.url":                    "",
	"auth.jwt_secret":             "",
	"auth.disabled":               false,
	"dispatch.record_mode":        "bulk",
	"dispatch.async":              false,
	"dispatch.lease_ttl":          2 * time.Minute,
	"dispatch.reconcile_interval": time.Minute,
	"dispatch.instance_id":        "",
	"log.level":                   "info",
	"log.format":                  "json",
}

// Load reads .env (if any), then environment variables. A key like smtp.host
// is read from SMTP_HOST.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on OS environment variables")
	}
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	for k, def := range keys {
		v.SetDefault(k, def)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var conf Config
	if err := v.Unmarshal(&conf); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if conf.Mail.FromAddress == "" {
		conf.Mail.FromAddress = conf.SMTP.User
	}
	return &conf, nil
}

// DSN returns the Postgres connection string.
func (c *Config) DSN() string {
	if c.Database.URL != "" {
		return c.Database.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name, c.DB.SSLMode,
	)
}
