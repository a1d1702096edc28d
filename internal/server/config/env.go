package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment variable read by the server.
const EnvPrefix = "BUGRADAR_"

// dotEnvFile is loaded, when present, before the environment is read.
// Variables already set in the process environment win.
var dotEnvFile = ".env"

// parseEnv overlays BUGRADAR_* environment variables. Malformed numeric,
// boolean or duration values panic, like a malformed config file.
func parseEnv(config *Config) {
	if err := godotenv.Load(dotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}
	applyEnv(config, os.LookupEnv)
}

func applyEnv(config *Config, lookup func(string) (string, bool)) {
	strs := map[string]*string{
		"HTTP_ADDRESS":     &config.EndpointAddrHTTP,
		"GRPC_ADDRESS":     &config.EndpointAddrGRPC,
		"STORAGE":          &config.Storage,
		"DATABASE_DSN":     &config.DatabaseDSN,
		"SECRET_KEY":       &config.SecretKey,
		"LOG_LEVEL":        &config.LogLevel,
		"S3_ROOT_USER":     &config.S3RootUser,
		"S3_ROOT_PASSWORD": &config.S3RootPassword,
		"S3_BUCKET":        &config.S3Bucket,
		"S3_REGION":        &config.S3Region,
		"S3_BASE_ENDPOINT": &config.S3BaseEndpoint,
		"SMTP_HOST":        &config.SMTPHost,
		"SMTP_USER":        &config.SMTPUser,
		"SMTP_PASSWORD":    &config.SMTPPassword,
		"MAIL_FROM":        &config.MailFrom,
		"APP_NAME":         &config.AppName,
		"SUPPORT_EMAIL":    &config.SupportEmail,
	}
	for key, dst := range strs {
		if v, ok := lookup(EnvPrefix + key); ok && v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"SMTP_PORT":      &config.SMTPPort,
		"RECALC_WORKERS": &config.RecalcWorkers,
	}
	for key, dst := range ints {
		if v, ok := lookup(EnvPrefix + key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				panic(err)
			}
			*dst = n
		}
	}

	durations := map[string]*time.Duration{
		"SHUTDOWN_TIMEOUT": &config.ShutdownTimeout,
		"PRESIGN_EXPIRY":   &config.PresignExpiry,
	}
	for key, dst := range durations {
		if v, ok := lookup(EnvPrefix + key); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				panic(err)
			}
			*dst = d
		}
	}

	if v, ok := lookup(EnvPrefix + "MAIL_ENABLED"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			panic(err)
		}
		config.MailEnabled = b
	}
}
