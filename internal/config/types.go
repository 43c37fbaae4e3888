// Package config resolves verne's runtime options from command-line flags,
// VERNE_* environment variables and an optional YAML config file.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/jbweber/verne/internal/logging"
)

// Option keys. They are also the flag names and the config file keys.
const (
	KeyParser     = "parser"
	KeyDriver     = "driver"
	KeyURI        = "uri"
	KeyTransient  = "transient"
	KeyTimeout    = "timeout"
	KeyLogLevel   = "log-level"
	KeyLogFormat  = "log-format"
	KeyConfigFile = "config"
)

// EnvPrefix is prepended to upper-cased keys to form environment variable
// names, e.g. VERNE_LOG_LEVEL.
const EnvPrefix = "VERNE"

// Defaults.
const (
	DefaultParser    = "yaml"
	DefaultDriver    = "libvirt"
	DefaultTimeout   = 5 * time.Second
	DefaultLogLevel  = "info"
	DefaultLogFormat = logging.FormatText
)

// Options is the resolved runtime configuration.
type Options struct {
	Parser     string        // template parser selector
	Driver     string        // backend driver selector
	URI        string        // connection URI passed to the driver
	Transient  bool          // create transient (non-persisted) resources
	Timeout    time.Duration // backend connection timeout
	LogLevel   string
	LogFormat  string
	ConfigFile string
}

// BindFlags registers verne's flags on fs.
func BindFlags(fs *pflag.FlagSet) {
	fs.StringP(KeyParser, "p", DefaultParser, "Template parser to use")
	fs.StringP(KeyDriver, "d", DefaultDriver, "Driver to use")
	fs.StringP(KeyURI, "u", "", "Connection URI used by the driver (default: qemu:///system)")
	fs.BoolP(KeyTransient, "t", false, "Create transient resources that are not persisted")
	fs.Duration(KeyTimeout, DefaultTimeout, "Backend connection timeout")
	fs.String(KeyLogLevel, DefaultLogLevel, "Log level (trace, debug, info, warn, error)")
	fs.String(KeyLogFormat, DefaultLogFormat, "Log format (text, json)")
	fs.String(KeyConfigFile, "", "Optional YAML config file providing option defaults")
}

// Load resolves Options from v. Flags in fs that were set explicitly win
// over VERNE_* environment variables, which win over the config file, which
// wins over flag defaults.
func Load(v *viper.Viper, fs *pflag.FlagSet) (Options, error) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return Options{}, fmt.Errorf("failed to bind flags: %w", err)
		}
	}

	v.SetDefault(KeyParser, DefaultParser)
	v.SetDefault(KeyDriver, DefaultDriver)
	v.SetDefault(KeyTimeout, DefaultTimeout)
	v.SetDefault(KeyLogLevel, DefaultLogLevel)
	v.SetDefault(KeyLogFormat, DefaultLogFormat)

	if path := v.GetString(KeyConfigFile); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Options{}, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	opts := Options{
		Parser:     v.GetString(KeyParser),
		Driver:     v.GetString(KeyDriver),
		URI:        v.GetString(KeyURI),
		Transient:  v.GetBool(KeyTransient),
		Timeout:    v.GetDuration(KeyTimeout),
		LogLevel:   v.GetString(KeyLogLevel),
		LogFormat:  v.GetString(KeyLogFormat),
		ConfigFile: v.GetString(KeyConfigFile),
	}

	if err := opts.Validate(); err != nil {
		return Options{}, err
	}
	return opts, nil
}

// Validate checks the options for structural errors. Whether the selected
// parser and driver exist is decided by the caller.
func (o Options) Validate() error {
	if o.Parser == "" {
		return fmt.Errorf("parser is required")
	}
	if o.Driver == "" {
		return fmt.Errorf("driver is required")
	}
	if o.Timeout <= 0 {
		return fmt.Errorf("timeout must be > 0, got %s", o.Timeout)
	}
	switch o.LogFormat {
	case logging.FormatText, logging.FormatJSON:
	default:
		return fmt.Errorf("invalid log format: %s (valid formats: %s, %s)", o.LogFormat, logging.FormatText, logging.FormatJSON)
	}
	return nil
}
