// Package config provides functionality for managing configuration options
// for the CreatorHub client and the development backend using command-line
// flags, environment variables, an optional .env file and an optional JSON
// config file.
//
// Precedence, highest first: flags, environment, config file, defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "CREATORHUB"

// ClientOptions holds the configuration values for the terminal client.
type ClientOptions struct {
	// APIURL is the backend base URL, including the /api prefix.
	APIURL string `mapstructure:"api_url"`
	// TokenStore selects where the session token is persisted: "file" or "sqlite".
	TokenStore string `mapstructure:"token_store"`
	// TokenPath is the file or database path for the token store.
	TokenPath string `mapstructure:"token_path"`
	// CAFile is an optional PEM bundle trusted for HTTPS backends.
	CAFile string `mapstructure:"ca_file"`
	// RequestTimeout bounds every backend call.
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	// HealthInterval is the period of the backend health probe. Zero disables it.
	HealthInterval time.Duration `mapstructure:"health_interval"`
	LogLevel       string        `mapstructure:"log_level"`
	// LogFile receives client logs so the terminal stays readable.
	LogFile string `mapstructure:"log_file"`
	// Config is the path to the JSON config file.
	Config string `mapstructure:"config"`
	// ShowVersion prints build metadata and exits.
	ShowVersion bool `mapstructure:"version"`
}

// ServerOptions holds the configuration values for the development backend.
type ServerOptions struct {
	// Addr defines the server's listening address (ip:port).
	Addr      string        `mapstructure:"addr"`
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
	LogLevel  string        `mapstructure:"log_level"`
	// TLSCert and TLSKey enable HTTPS when both are set.
	TLSCert string `mapstructure:"tls_cert"`
	TLSKey  string `mapstructure:"tls_key"`
	Config  string `mapstructure:"config"`
}

// Validate checks the combinations viper cannot express.
func (o *ClientOptions) Validate() error {
	if strings.TrimSpace(o.APIURL) == "" {
		return errors.New("api_url must not be empty")
	}
	switch o.TokenStore {
	case "file", "sqlite":
	default:
		return fmt.Errorf("unknown token_store %q", o.TokenStore)
	}
	if o.RequestTimeout <= 0 {
		return errors.New("request_timeout must be positive")
	}
	return nil
}

// Validate checks the server options.
func (o *ServerOptions) Validate() error {
	if o.JWTSecret == "" {
		return errors.New("jwt_secret must not be empty")
	}
	if (o.TLSCert == "") != (o.TLSKey == "") {
		return errors.New("tls_cert and tls_key must be set together")
	}
	if o.TokenTTL <= 0 {
		return errors.New("token_ttl must be positive")
	}
	return nil
}

// ParseClient parses args (without the program name) into ClientOptions.
func ParseClient(args []string) (*ClientOptions, error) {
	fs := pflag.NewFlagSet("creatorhub", pflag.ContinueOnError)
	fs.StringP("api_url", "u", "http://localhost:8080/api", "backend base URL")
	fs.String("token_store", "file", "session token store: file | sqlite")
	fs.String("token_path", "", "session token store path (default under the user config dir)")
	fs.String("ca_file", "", "path to CA cert for HTTPS backends")
	fs.Duration("request_timeout", 15*time.Second, "timeout for each backend call")
	fs.Duration("health_interval", 30*time.Second, "backend health probe interval (0 disables)")
	fs.String("log_level", "info", "log level")
	fs.String("log_file", "creatorhub.log", "log file path")
	fs.StringP("config", "c", "config.json", "path to config file")
	fs.Bool("version", false, "show build version and date")

	opts := &ClientOptions{}
	if err := load(fs, args, opts); err != nil {
		return nil, err
	}
	if opts.TokenPath == "" {
		opts.TokenPath = DefaultTokenPath(opts.TokenStore)
	}
	return opts, opts.Validate()
}

// ParseServer parses args (without the program name) into ServerOptions.
func ParseServer(args []string) (*ServerOptions, error) {
	fs := pflag.NewFlagSet("creatorhub-server", pflag.ContinueOnError)
	fs.StringP("addr", "a", "localhost:8080", "run on ip:port server")
	fs.String("jwt_secret", "dev-secret-change-me", "HS256 signing secret")
	fs.Duration("token_ttl", 30*time.Minute, "access token lifetime")
	fs.String("log_level", "info", "log level")
	fs.String("tls_cert", "", "path to server TLS certificate")
	fs.String("tls_key", "", "path to server TLS key")
	fs.StringP("config", "c", "config.json", "path to config file")

	opts := &ServerOptions{}
	if err := load(fs, args, opts); err != nil {
		return nil, err
	}
	return opts, opts.Validate()
}

func load(fs *pflag.FlagSet, args []string, out any) error {
	if err := fs.Parse(args); err != nil {
		return err
	}

	// .env only seeds variables that are not already set.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return fmt.Errorf("bind flags: %w", err)
	}

	if path := v.GetString("config"); path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			v.SetConfigType("json")
			if err := v.ReadInConfig(); err != nil {
				return fmt.Errorf("error while reading config file: %w", err)
			}
		}
	}

	if err := v.Unmarshal(out); err != nil {
		return fmt.Errorf("error while parsing config: %w", err)
	}
	return nil
}

// DefaultTokenPath returns where the given token store keeps the session
// when token_path is not set: a JSON file or a SQLite database under the
// user config directory.
func DefaultTokenPath(store string) string {
	name := "session.json"
	if store == "sqlite" {
		name = "session.db"
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "creatorhub-" + name
	}
	return filepath.Join(dir, "creatorhub", name)
}
