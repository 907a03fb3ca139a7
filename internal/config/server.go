package config

import (
	"errors"
	"flag"
	"fmt"
	"time"
)

// ServerOptions holds the configuration values for the development backend.
type ServerOptions struct {
	// Addr defines the server's listening address (ip:port).
	Addr string `mapstructure:"addr"`
	// PublicURL is the externally visible origin used in presigned upload URLs.
	PublicURL string `mapstructure:"public_url"`
	// JWTSecret signs the access tokens handed out on OTP verification.
	JWTSecret string `mapstructure:"jwt_secret"`
	// TokenTTL is the lifetime of issued access tokens.
	TokenTTL time.Duration `mapstructure:"token_ttl"`
	// OTPCode, when set, is issued instead of a random code.
	OTPCode string `mapstructure:"otp_code"`
	OTPTTL  time.Duration `mapstructure:"otp_ttl"`
	// AutoApprove activates new registrations immediately.
	AutoApprove bool `mapstructure:"auto_approve"`
	// Seed is the number of fake posts created at start-up.
	Seed int `mapstructure:"seed"`

	TLS      bool   `mapstructure:"tls"`
	CertFile string `mapstructure:"cert_file"`
	KeyFile  string `mapstructure:"key_file"`

	LogLevel string `mapstructure:"log_level"`
	// Config is the path to the Config file.
	Config string `mapstructure:"-"`
}

// ParseServer reads development server options with the same precedence
// rules as ParseClient.
func ParseServer(args []string) (*ServerOptions, error) {
	fs := flag.NewFlagSet("devserver", flag.ContinueOnError)
	var (
		addr, publicURL, secret, otp, cert, key, logLevel, cfgPath string
		tokenTTL, otpTTL                                           time.Duration
		autoApprove, useTLS                                        bool
		seed                                                       int
	)
	fs.StringVar(&addr, "a", "localhost:4000", "run on ip:port server")
	fs.StringVar(&publicURL, "public-url", "", "public origin used in upload URLs")
	fs.StringVar(&secret, "jwt-secret", "dev-secret-change-me-dev-secret-change-me", "JWT signing secret")
	fs.DurationVar(&tokenTTL, "token-ttl", 24*time.Hour, "access token lifetime")
	fs.StringVar(&otp, "otp", "", "fixed OTP code (random when empty)")
	fs.DurationVar(&otpTTL, "otp-ttl", 5*time.Minute, "OTP lifetime")
	fs.BoolVar(&autoApprove, "auto-approve", false, "approve registrations immediately")
	fs.IntVar(&seed, "seed", 45, "number of fake posts to seed")
	fs.BoolVar(&useTLS, "tls", false, "serve HTTPS")
	fs.StringVar(&cert, "cert", "certs/server.crt", "server certificate")
	fs.StringVar(&key, "key", "certs/server.key", "server key")
	fs.StringVar(&logLevel, "log-level", "info", "log level")
	fs.StringVar(&cfgPath, "config", "", "path to config file")
	fs.StringVar(&cfgPath, "c", "", "path to config file (shorthand)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := newViper()
	v.SetDefault("addr", "localhost:4000")
	v.SetDefault("public_url", "")
	v.SetDefault("jwt_secret", "dev-secret-change-me-dev-secret-change-me")
	v.SetDefault("token_ttl", 24*time.Hour)
	v.SetDefault("otp_code", "")
	v.SetDefault("otp_ttl", 5*time.Minute)
	v.SetDefault("auto_approve", false)
	v.SetDefault("seed", 45)
	v.SetDefault("tls", false)
	v.SetDefault("cert_file", "certs/server.crt")
	v.SetDefault("key_file", "certs/server.key")
	v.SetDefault("log_level", "info")
	if err := readConfigFile(v, cfgPath); err != nil {
		return nil, err
	}
	bindSetFlags(fs, v, map[string]string{
		"a":            "addr",
		"public-url":   "public_url",
		"jwt-secret":   "jwt_secret",
		"token-ttl":    "token_ttl",
		"otp":          "otp_code",
		"otp-ttl":      "otp_ttl",
		"auto-approve": "auto_approve",
		"seed":         "seed",
		"tls":          "tls",
		"cert":         "cert_file",
		"key":          "key_file",
		"log-level":    "log_level",
	})

	var opts ServerOptions
	if err := v.Unmarshal(&opts); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	opts.Config = cfgPath
	if opts.PublicURL == "" {
		scheme := "http"
		if opts.TLS {
			scheme = "https"
		}
		opts.PublicURL = scheme + "://" + opts.Addr
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &opts, nil
}

// Validate ensures that required values are present.
func (o *ServerOptions) Validate() error {
	if o.Addr == "" {
		return errors.New("addr is required")
	}
	if len(o.JWTSecret) < 16 {
		return errors.New("jwt_secret must be at least 16 characters")
	}
	if o.TokenTTL <= 0 || o.OTPTTL <= 0 {
		return errors.New("token_ttl and otp_ttl must be positive")
	}
	if o.Seed < 0 {
		return errors.New("seed must not be negative")
	}
	return nil
}
