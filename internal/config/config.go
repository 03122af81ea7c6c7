// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package config loads pwpolicy configuration from defaults, a YAML file,
// and command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/holomush/pwpolicy/pkg/pwpolicy"
)

// CurrentVersion is the config file version written by this release.
const CurrentVersion = "1.0.0"

// SupportedVersions is the semver constraint a config file version must meet.
const SupportedVersions = "^1"

// MaxMinLength bounds policy.min_length.
const MaxMinLength = 4096

// Defaults for the serve command.
const (
	DefaultServerAddr  = "127.0.0.1:8080"
	DefaultMetricsAddr = "127.0.0.1:9100"
	DefaultLogFormat   = "json"
)

// Config is the full pwpolicy configuration.
type Config struct {
	Version string        `koanf:"version" json:"version" jsonschema:"description=Config file version (semver)"`
	Policy  PolicyConfig  `koanf:"policy" json:"policy,omitempty"`
	Server  ServerConfig  `koanf:"server" json:"server,omitempty"`
	Metrics MetricsConfig `koanf:"metrics" json:"metrics,omitempty"`
	Log     LogConfig     `koanf:"log" json:"log,omitempty"`
}

// PolicyConfig is the password policy applied when a caller supplies none.
type PolicyConfig struct {
	MinLength int    `koanf:"min_length" json:"min_length,omitempty" jsonschema:"description=Minimum password length; 0 uses the default of 8,minimum=0,maximum=4096"`
	Tier      string `koanf:"tier" json:"tier,omitempty" jsonschema:"description=Informational strength tier,enum=none,enum=low,enum=fair,enum=good,enum=excellent"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `koanf:"addr" json:"addr,omitempty" jsonschema:"description=HTTP API listen address"`
}

// MetricsConfig configures the observability server.
type MetricsConfig struct {
	Addr string `koanf:"addr" json:"addr,omitempty" jsonschema:"description=Metrics and health listen address; empty disables"`
}

// LogConfig configures logging.
type LogConfig struct {
	Format string `koanf:"format" json:"format,omitempty" jsonschema:"description=Log output format,enum=json,enum=text"`
}

// FlagKeys maps command-line flag names to config keys. Commands register
// the flags they need; Load only reads the ones present in the flag set.
var FlagKeys = map[string]string{
	"min-length":   "policy.min_length",
	"tier":         "policy.tier",
	"addr":         "server.addr",
	"metrics-addr": "metrics.addr",
	"log-format":   "log.format",
}

// Default returns the configuration used when nothing else is supplied.
func Default() Config {
	return Config{
		Version: CurrentVersion,
		Policy:  PolicyConfig{MinLength: pwpolicy.DefaultMinLength, Tier: string(pwpolicy.TierNone)},
		Server:  ServerConfig{Addr: DefaultServerAddr},
		Metrics: MetricsConfig{Addr: DefaultMetricsAddr},
		Log:     LogConfig{Format: DefaultLogFormat},
	}
}

func defaults() map[string]any {
	d := Default()
	return map[string]any{
		"version":           d.Version,
		"policy.min_length": d.Policy.MinLength,
		"policy.tier":       d.Policy.Tier,
		"server.addr":       d.Server.Addr,
		"metrics.addr":      d.Metrics.Addr,
		"log.format":        d.Log.Format,
	}
}

// Load builds a Config. path may be empty to skip the file; flags may be nil.
// Only flags the user changed override file values.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")
	for key, val := range defaults() {
		if err := k.Set(key, val); err != nil {
			return nil, oops.Code("CONFIG_INVALID").With("key", key).Wrap(err)
		}
	}

	if path != "" {
		if err := ValidateFile(path); err != nil {
			return nil, err
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, loadError(path, err)
		}
	}

	if flags != nil {
		provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := FlagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, oops.Code("CONFIG_INVALID").Wrapf(err, "loading flags")
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.Code("CONFIG_PARSE_FAILED").With("path", path).Wrapf(err, "decoding config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadError(path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
		return oops.Code("CONFIG_READ_FAILED").With("path", path).Wrapf(err, "reading config file")
	}
	return oops.Code("CONFIG_PARSE_FAILED").With("path", path).Wrapf(err, "parsing config file")
}

// Validate checks semantic constraints the schema cannot express.
func (c *Config) Validate() error {
	if err := CheckVersion(c.Version); err != nil {
		return err
	}
	if c.Policy.MinLength < 0 || c.Policy.MinLength > MaxMinLength {
		return oops.Code("CONFIG_INVALID").
			With("field", "policy.min_length").
			With("value", c.Policy.MinLength).
			Errorf("policy.min_length must be in [0..%d], got %d", MaxMinLength, c.Policy.MinLength)
	}
	if _, ok := pwpolicy.ParseTier(c.Policy.Tier); !ok {
		return oops.Code("CONFIG_INVALID").
			With("field", "policy.tier").
			With("value", c.Policy.Tier).
			Errorf("policy.tier %q is not a known tier", c.Policy.Tier)
	}
	if strings.TrimSpace(c.Server.Addr) == "" {
		return oops.Code("CONFIG_INVALID").With("field", "server.addr").Errorf("server.addr is required")
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return oops.Code("CONFIG_INVALID").
			With("field", "log.format").
			Errorf("log.format must be 'json' or 'text', got %q", c.Log.Format)
	}
	return nil
}

// CheckVersion rejects config versions outside SupportedVersions.
func CheckVersion(version string) error {
	v, err := semver.NewVersion(version)
	if err != nil {
		return oops.Code("CONFIG_VERSION_UNSUPPORTED").With("version", version).Wrapf(err, "invalid config version")
	}
	constraint, err := semver.NewConstraint(SupportedVersions)
	if err != nil {
		return oops.Code("CONFIG_VERSION_UNSUPPORTED").Wrapf(err, "invalid version constraint")
	}
	if !constraint.Check(v) {
		return oops.Code("CONFIG_VERSION_UNSUPPORTED").
			With("version", version).
			With("supported", SupportedVersions).
			Errorf("config version %s is not supported (want %s)", version, SupportedVersions)
	}
	return nil
}

// PasswordPolicy returns the configured policy, resolved.
func (c *Config) PasswordPolicy() pwpolicy.Policy {
	tier, _ := pwpolicy.ParseTier(c.Policy.Tier)
	return pwpolicy.Policy{MinLength: c.Policy.MinLength, Tier: tier}.Resolve()
}
