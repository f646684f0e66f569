package config

import (
	"fmt"
	"os"
	"path"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

type SysConfig struct {
	Appid     string `yaml:"appid" json:"appid"`
	Location  string `yaml:"location" json:"location"`
	Workdir   string `yaml:"workdir" json:"workdir"`
	Debug     bool   `yaml:"debug" json:"debug"`
	AuditDays int    `yaml:"audit_days" json:"audit_days"`
}

type WebConfig struct {
	Host      string `yaml:"host" json:"host"`
	Port      int    `yaml:"port" json:"port"`
	JwtSecret string `yaml:"jwt_secret" json:"jwt_secret"`
	// JwtExpireHours bounds the lifetime of issued bearer tokens
	JwtExpireHours int `yaml:"jwt_expire_hours" json:"jwt_expire_hours"`
	PageSize       int `yaml:"page_size" json:"page_size"`
}

type DBConfig struct {
	Type     string `yaml:"type" json:"type"`
	Host     string `yaml:"host" json:"host"`
	Port     int    `yaml:"port" json:"port"`
	Name     string `yaml:"name" json:"name"`
	User     string `yaml:"user" json:"user"`
	Passwd   string `yaml:"passwd" json:"passwd"`
	MaxConn  int    `yaml:"max_conn" json:"max_conn"`
	IdleConn int    `yaml:"idle_conn" json:"idle_conn"`
	Debug    bool   `yaml:"debug" json:"debug"`
}

type LogConfig struct {
	Mode       string `yaml:"mode" json:"mode"`
	FileEnable bool   `yaml:"file_enable" json:"file_enable"`
	Filename   string `yaml:"filename" json:"filename"`
}

type AppConfig struct {
	System   SysConfig `yaml:"system" json:"system"`
	Web      WebConfig `yaml:"web" json:"web"`
	Database DBConfig  `yaml:"database" json:"database"`
	Logger   LogConfig `yaml:"logger" json:"logger"`
}

func (c *AppConfig) GetLogDir() string {
	return path.Join(c.System.Workdir, "logs")
}

func (c *AppConfig) GetDataDir() string {
	return path.Join(c.System.Workdir, "data")
}

func (c *AppConfig) InitDirs() {
	_ = os.MkdirAll(path.Join(c.System.Workdir, "logs"), 0o755)
	_ = os.MkdirAll(path.Join(c.System.Workdir, "data"), 0o755)
}

func (c *AppConfig) WebListen() string {
	return fmt.Sprintf("%s:%d", c.Web.Host, c.Web.Port)
}

var DefaultAppConfig = &AppConfig{
	System: SysConfig{
		Appid:     "ServiceHub",
		Location:  "Europe/Berlin",
		Workdir:   "/var/servicehub",
		Debug:     true,
		AuditDays: 365,
	},
	Web: WebConfig{
		Host:           "0.0.0.0",
		Port:           8000,
		JwtSecret:      "9b6de5cc-0001-1203-xxtt-0f568ac9da37",
		JwtExpireHours: 24,
		PageSize:       1,
	},
	Database: DBConfig{
		Type:     "postgres",
		Host:     "127.0.0.1",
		Port:     5432,
		Name:     "servicehub",
		User:     "postgres",
		Passwd:   "",
		MaxConn:  100,
		IdleConn: 10,
		Debug:    false,
	},
	Logger: LogConfig{
		Mode:       "development",
		FileEnable: true,
		Filename:   "/var/servicehub/servicehub.log",
	},
}

func setEnvStringValue(name string, val *string) {
	evalue := os.Getenv(name)
	if evalue != "" {
		*val = evalue
	}
}

func setEnvBoolValue(name string, val *bool) {
	evalue := os.Getenv(name)
	if evalue != "" {
		*val = evalue == "true" || evalue == "1" || evalue == "on"
	}
}

func setEnvIntValue(name string, val *int) {
	evalue := os.Getenv(name)
	if evalue != "" {
		*val = cast.ToInt(evalue)
	}
}

// LoadConfig loads the yaml configuration file and applies environment
// overrides. A missing or empty path falls back to DefaultAppConfig.
func LoadConfig(cfile string) *AppConfig {
	cfg := new(AppConfig)
	*cfg = *DefaultAppConfig
	if cfile != "" {
		if data, err := os.ReadFile(cfile); err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				fmt.Fprintf(os.Stderr, "config parse error: %v\n", err)
			}
		}
	}

	setEnvStringValue("SERVICEHUB_SYSTEM_WORKDIR", &cfg.System.Workdir)
	setEnvBoolValue("SERVICEHUB_SYSTEM_DEBUG", &cfg.System.Debug)
	setEnvStringValue("SERVICEHUB_WEB_HOST", &cfg.Web.Host)
	setEnvIntValue("SERVICEHUB_WEB_PORT", &cfg.Web.Port)
	setEnvStringValue("SERVICEHUB_WEB_JWT_SECRET", &cfg.Web.JwtSecret)
	setEnvStringValue("SERVICEHUB_DB_TYPE", &cfg.Database.Type)
	setEnvStringValue("SERVICEHUB_DB_HOST", &cfg.Database.Host)
	setEnvIntValue("SERVICEHUB_DB_PORT", &cfg.Database.Port)
	setEnvStringValue("SERVICEHUB_DB_NAME", &cfg.Database.Name)
	setEnvStringValue("SERVICEHUB_DB_USER", &cfg.Database.User)
	setEnvStringValue("SERVICEHUB_DB_PWD", &cfg.Database.Passwd)

	if cfg.Web.PageSize <= 0 {
		cfg.Web.PageSize = DefaultAppConfig.Web.PageSize
	}
	if cfg.Web.JwtExpireHours <= 0 {
		cfg.Web.JwtExpireHours = DefaultAppConfig.Web.JwtExpireHours
	}
	if cfg.System.AuditDays <= 0 {
		cfg.System.AuditDays = DefaultAppConfig.System.AuditDays
	}
	return cfg
}
