package config

import (
	"flag"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	ModeDevelop    = "develop"
	ModeProduction = "production"
)

type Config struct {
	App        `yaml:"app"`
	Logger     `yaml:"log"`
	HTTPServer `yaml:"http_server"`
	Database   `yaml:"database"`
	Token      `yaml:"token"`
	Mailjet    `yaml:"mailjet"`
	Links      `yaml:"links"`
	Sheets     `yaml:"sheets"`
	Roster     `yaml:"roster"`
	Dispatch   `yaml:"dispatch"`
	Export     `yaml:"export"`
}

type App struct {
	ServiceName string `env:"SERVICE_NAME" env-default:"bethel-rsvp" yaml:"service_name"`
	Version     string `env:"VERSION"      env-default:"0.1.0"       yaml:"version"`
	Mode        string `env:"MODE"         env-default:"develop"     yaml:"mode"`
}

type Logger struct {
	Level      string   `env:"LOG_LEVEL"       env-default:"info" yaml:"level"`
	FormatJSON bool     `env:"LOG_FORMAT_JSON" env-default:"true" yaml:"format_json"`
	Rotation   Rotation `yaml:"rotation"`
}

type Rotation struct {
	File       string `env:"LOG_FILE"        yaml:"file"`
	MaxSize    int    `env:"LOG_MAX_SIZE"    env-default:"100" yaml:"max_size"`
	MaxBackups int    `env:"LOG_MAX_BACKUPS" env-default:"3"   yaml:"max_backups"`
	MaxAge     int    `env:"LOG_MAX_AGE"     env-default:"28"  yaml:"max_age"`
}

type HTTPServer struct {
	Host    string  `env:"HOST" env-default:"0.0.0.0" yaml:"host"`
	Port    uint16  `env:"PORT" env-default:"8500"    yaml:"port"`
	Timeout Timeout `yaml:"timeout"`
	CORS    CORS    `yaml:"cors"`
}

type Timeout struct {
	Request time.Duration `env:"TIMEOUT_REQUEST" env-default:"30s" yaml:"request"`
	Read    time.Duration `env:"TIMEOUT_READ"    env-default:"10s" yaml:"read"`
	Write   time.Duration `env:"TIMEOUT_WRITE"   env-default:"30s" yaml:"write"`
	Idle    time.Duration `env:"TIMEOUT_IDLE"    env-default:"60s" yaml:"idle"`
}

type CORS struct {
	Enabled          bool          `env:"CORS_ENABLED"           env-default:"false" yaml:"enabled"`
	AllowAllOrigins  bool          `env:"CORS_ALLOW_ALL_ORIGINS" env-default:"true"  yaml:"allow_all_origins"`
	AllowOrigins     []string      `env:"CORS_ALLOW_ORIGINS"     yaml:"allow_origins"`
	AllowMethods     []string      `env:"CORS_ALLOW_METHODS"     env-default:"GET"   yaml:"allow_methods"`
	AllowHeaders     []string      `env:"CORS_ALLOW_HEADERS"     env-default:"Content-Type" yaml:"allow_headers"`
	AllowCredentials bool          `env:"CORS_ALLOW_CREDENTIALS" env-default:"false" yaml:"allow_credentials"`
	MaxAge           time.Duration `env:"CORS_MAX_AGE"           env-default:"12h"   yaml:"max_age"`
}

type Database struct {
	Host      string    `env:"DATABASE_HOST"     env-default:"localhost" yaml:"host"`
	Port      uint16    `env:"DATABASE_PORT"     env-default:"5432"      yaml:"port"`
	User      string    `env:"DATABASE_USER"     env-default:"postgres"  yaml:"user"`
	Password  string    `env:"DATABASE_PASSWORD" yaml:"-"`
	Name      string    `env:"DATABASE_NAME"     env-default:"rsvp"      yaml:"name"`
	SSLMode   string    `env:"DATABASE_SSL_MODE" env-default:"disable"   yaml:"ssl_mode"`
	MaxConns  int32     `env:"DATABASE_MAX_CONNS" env-default:"4"        yaml:"max_conns"`
	MinConns  int32     `env:"DATABASE_MIN_CONNS" env-default:"1"        yaml:"min_conns"`
	Migration Migration `yaml:"migration"`
}

type Migration struct {
	Path      string `env:"MIGRATION_PATH"       env-default:"migrations" yaml:"path"`
	AutoApply bool   `env:"MIGRATION_AUTO_APPLY" env-default:"true"       yaml:"auto_apply"`
}

type Token struct {
	SigningSecret string `env:"SIGNING_SECRET" env-required:"true" yaml:"-"`
}

type Mailjet struct {
	APIKey            string `env:"MAILJET_API_KEY"             env-required:"true" yaml:"-"`
	APISecret         string `env:"MAILJET_API_SECRET"          env-required:"true" yaml:"-"`
	FromEmail         string `env:"FROM_EMAIL"                  env-required:"true" yaml:"from_email"`
	FromName          string `env:"FROM_NAME"                   yaml:"from_name"`
	HostTemplateID    int64  `env:"MAILJET_HOST_TEMPLATE_ID"    env-required:"true" yaml:"host_template_id"`
	GreeterTemplateID int64  `env:"MAILJET_GREETER_TEMPLATE_ID" env-required:"true" yaml:"greeter_template_id"`
}

type Links struct {
	BaseURLDevelop    string `env:"BASE_URL_DEVELOP"    env-default:"http://localhost:8500" yaml:"base_url_develop"`
	BaseURLProduction string `env:"BASE_URL_PRODUCTION" yaml:"base_url_production"`
}

type Sheets struct {
	SpreadsheetID   string `env:"GOOGLE_SHEET_ID"             yaml:"spreadsheet_id"`
	CredentialsFile string `env:"GOOGLE_SERVICE_ACCOUNT_JSON" yaml:"credentials_file"`
}

type Roster struct {
	HostPath    string `env:"HOST_ROSTER_PATH"    env-default:"rosters/host.json"    yaml:"host_path"`
	GreeterPath string `env:"GREETER_ROSTER_PATH" env-default:"rosters/greeter.json" yaml:"greeter_path"`
}

type Dispatch struct {
	// SendCron is a cron expression for automatic roster sends; empty
	// disables the scheduler.
	SendCron          string `env:"SEND_CRON" yaml:"send_cron"`
	DefaultOccurrence int    `env:"DEFAULT_OCCURRENCE" env-default:"3" yaml:"default_occurrence"`
}

type Export struct {
	WorkerCount  int           `env:"EXPORT_WORKER_COUNT"  env-default:"1"   yaml:"worker_count"`
	PollInterval time.Duration `env:"EXPORT_POLL_INTERVAL" env-default:"15s" yaml:"poll_interval"`
	BatchSize    int           `env:"EXPORT_BATCH_SIZE"    env-default:"50"  yaml:"batch_size"`
}

// BaseURL is the reply-link base for the configured mode.
func (c *Config) BaseURL() string {
	url := c.Links.BaseURLDevelop
	if c.App.Mode == ModeProduction {
		url = c.Links.BaseURLProduction
	}

	return strings.TrimSuffix(url, "/")
}

func MustLoadConfig() *Config {
	cfg, err := LoadConfig()
	if err != nil {
		panic(err)
	}

	return cfg
}

func LoadConfig() (*Config, error) {
	// Local development keeps secrets in a .env file, as the deployment
	// platform injects them directly in production.
	_ = godotenv.Load()

	var cfg Config

	if path := fetchConfigPath(); path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, err
		}

		return &cfg, nil
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func MustPrintConfig(cfg *Config) {
	if err := PrintConfig(cfg); err != nil {
		panic(err)
	}
}

// PrintConfig dumps the effective configuration. Secret-bearing fields
// carry `yaml:"-"` and never reach the output.
func PrintConfig(cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	println(string(data))

	return nil
}

func fetchConfigPath() string {
	var result string

	flag.StringVar(&result, "config", "", "Path to config file")
	flag.Parse()

	if result == "" {
		result = os.Getenv("CONFIG_PATH")
	}

	return result
}
