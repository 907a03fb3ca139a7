// Package config provides functionality for managing configuration options
// for the client and the development server using command-line flags,
// environment variables, an optional .env file and an optional config file.
package config

import (
	"errors"
	"flag"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultAPIURL is used whenever the configured API URL is unset or invalid.
const DefaultAPIURL = "https://digitalhouse-backend-production.up.railway.app/api"

// Credential backends.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// envPrefix is prepended to every environment variable, e.g. DH_API_URL.
const envPrefix = "DH"

// Options holds the configuration values for the terminal client.
type Options struct {
	// APIURL is the resolved backend base URL, always ending in /api.
	APIURL string `mapstructure:"api_url"`
	// Web enables the browser-build URL rules (no relative or same-origin URLs).
	Web bool `mapstructure:"web"`
	// Origin is the page origin used by the same-origin check when Web is set.
	Origin string `mapstructure:"origin"`
	// Timeout bounds every request made by the transport client.
	Timeout time.Duration `mapstructure:"timeout"`

	// CredentialBackend selects where the session token lives: file, memory or redis.
	CredentialBackend    string `mapstructure:"credential_backend"`
	CredentialFile       string `mapstructure:"credential_file"`
	CredentialPassphrase string `mapstructure:"credential_passphrase"`
	RedisURL             string `mapstructure:"redis_url"`
	RedisKey             string `mapstructure:"redis_key"`

	// CAFile optionally adds a PEM CA bundle to the transport's trust roots.
	CAFile string `mapstructure:"ca_file"`

	LogLevel string `mapstructure:"log_level"`
	// Config is the path to the config file.
	Config string `mapstructure:"-"`
	// ShowVersion prints build metadata and exits.
	ShowVersion bool `mapstructure:"-"`
}

func clientDefaults(v *viper.Viper) {
	v.SetDefault("api_url", "")
	v.SetDefault("web", false)
	v.SetDefault("origin", "")
	v.SetDefault("timeout", 30*time.Second)
	v.SetDefault("credential_backend", BackendFile)
	v.SetDefault("credential_file", "credential.json")
	v.SetDefault("credential_passphrase", "")
	v.SetDefault("redis_url", "redis://localhost:6379/0")
	v.SetDefault("redis_key", "dh_access_token")
	v.SetDefault("ca_file", "")
	v.SetDefault("log_level", "warn")
}

// ParseClient reads client options. Precedence, lowest first: defaults,
// config file, .env file, environment, flags set explicitly in args.
func ParseClient(args []string) (*Options, error) {
	fs := flag.NewFlagSet("client", flag.ContinueOnError)
	var (
		apiURL, origin, backend, credFile, passphrase string
		redisURL, redisKey, caFile, logLevel, cfgPath string
		web, showVer                                  bool
		timeout                                       time.Duration
	)
	fs.StringVar(&apiURL, "url", "", "backend API base URL")
	fs.BoolVar(&web, "web", false, "apply browser-build URL rules")
	fs.StringVar(&origin, "origin", "", "page origin for the same-origin check")
	fs.DurationVar(&timeout, "timeout", 30*time.Second, "request timeout")
	fs.StringVar(&backend, "credential-backend", BackendFile, "credential backend: file | memory | redis")
	fs.StringVar(&credFile, "credential-file", "credential.json", "path to the sealed credential file")
	fs.StringVar(&passphrase, "credential-passphrase", "", "passphrase sealing the credential file")
	fs.StringVar(&redisURL, "redis-url", "redis://localhost:6379/0", "redis URL for the redis backend")
	fs.StringVar(&redisKey, "redis-key", "dh_access_token", "redis key holding the token")
	fs.StringVar(&caFile, "ca", "", "path to an extra CA certificate (PEM)")
	fs.StringVar(&logLevel, "log-level", "warn", "log level")
	fs.StringVar(&cfgPath, "config", "", "path to config file")
	fs.StringVar(&cfgPath, "c", "", "path to config file (shorthand)")
	fs.BoolVar(&showVer, "version", false, "show build version and date")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := newViper()
	clientDefaults(v)
	if err := readConfigFile(v, cfgPath); err != nil {
		return nil, err
	}

	bindSetFlags(fs, v, map[string]string{
		"url":                   "api_url",
		"web":                   "web",
		"origin":                "origin",
		"timeout":               "timeout",
		"credential-backend":    "credential_backend",
		"credential-file":       "credential_file",
		"credential-passphrase": "credential_passphrase",
		"redis-url":             "redis_url",
		"redis-key":             "redis_key",
		"ca":                    "ca_file",
		"log-level":             "log_level",
	})

	var opts Options
	if err := v.Unmarshal(&opts); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	opts.Config = cfgPath
	opts.ShowVersion = showVer
	opts.APIURL = ResolveAPIBase(opts.APIURL, opts.Web, opts.Origin)

	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &opts, nil
}

// Validate checks option values that have no sensible fallback.
func (o *Options) Validate() error {
	if o.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	switch o.CredentialBackend {
	case BackendFile:
		if o.CredentialFile == "" {
			return errors.New("credential_file is required for the file backend")
		}
	case BackendMemory:
	case BackendRedis:
		if o.RedisURL == "" {
			return errors.New("redis_url is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown credential backend %q", o.CredentialBackend)
	}
	return nil
}

// ResolveAPIBase turns a raw configured URL into the API base. Unset or
// invalid values fall back to DefaultAPIURL; when web is true relative and
// same-origin URLs are refused too. The result never has a trailing slash
// and always ends in /api.
func ResolveAPIBase(raw string, web bool, origin string) string {
	base := strings.TrimRight(strings.TrimSpace(raw), "/")
	if base == "" {
		return DefaultAPIURL
	}

	u, err := url.Parse(base)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return DefaultAPIURL
	}
	if web && origin != "" && sameOrigin(u, origin) {
		return DefaultAPIURL
	}

	if !strings.HasSuffix(base, "/api") {
		base += "/api"
	}
	return base
}

// ServerBase strips the /api suffix from an API base so relative media
// paths can be resolved against the server root.
func ServerBase(apiBase string) string {
	trimmed := strings.TrimSuffix(strings.TrimRight(apiBase, "/"), "/api")
	if trimmed == "" {
		return apiBase
	}
	return trimmed
}

func sameOrigin(u *url.URL, origin string) bool {
	o, err := url.Parse(strings.TrimRight(origin, "/"))
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Scheme, o.Scheme) && strings.EqualFold(u.Host, o.Host)
}

func newViper() *viper.Viper {
	// A missing .env file is the common case.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

func readConfigFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("error while reading config file: %w", err)
	}
	return nil
}

// bindSetFlags copies only the flags the user actually passed into v, so an
// unset flag's default never masks a value from the environment or file.
func bindSetFlags(fs *flag.FlagSet, v *viper.Viper, keys map[string]string) {
	fs.Visit(func(f *flag.Flag) {
		key, ok := keys[f.Name]
		if !ok {
			return
		}
		if g, ok := f.Value.(flag.Getter); ok {
			v.Set(key, g.Get())
			return
		}
		v.Set(key, f.Value.String())
	})
}
