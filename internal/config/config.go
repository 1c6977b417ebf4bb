package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	HTTPAddr string

	DBDriver string
	DBDSN    string

	JWTSecret string
	TokenTTL  time.Duration

	UploadDir      string
	MaxUploadBytes int64

	CORSOrigins []string

	LogLevel  string
	LogFormat string
}

// FromViper resolves the effective config from flags and EXAMPREP_* env.
func FromViper(v *viper.Viper) Config {
	v.SetDefault("addr", ":8080")
	v.SetDefault("db-driver", "sqlite")
	v.SetDefault("db-dsn", "")
	v.SetDefault("jwt-secret", "change-me-in-production")
	v.SetDefault("token-ttl", 7*24*time.Hour)
	v.SetDefault("upload-dir", "./uploads")
	v.SetDefault("max-upload-bytes", int64(5*1024*1024))
	v.SetDefault("cors-origins", "http://localhost:3000")
	v.SetDefault("log-level", "info")
	v.SetDefault("log-format", "text")

	return Config{
		HTTPAddr:       v.GetString("addr"),
		DBDriver:       v.GetString("db-driver"),
		DBDSN:          v.GetString("db-dsn"),
		JWTSecret:      v.GetString("jwt-secret"),
		TokenTTL:       v.GetDuration("token-ttl"),
		UploadDir:      v.GetString("upload-dir"),
		MaxUploadBytes: v.GetInt64("max-upload-bytes"),
		CORSOrigins:    splitCSV(v.GetString("cors-origins")),
		LogLevel:       v.GetString("log-level"),
		LogFormat:      v.GetString("log-format"),
	}
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
