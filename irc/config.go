// Copyright (c) 2012-2014 Jeremy Latt
// Copyright (c) 2014-2015 Edmund Huber
// Copyright (c) 2016-2017 Daniel Oaks <daniel@danieloaks.net>
// released under the MIT license

package irc

import (
	"fmt"
	"os"
	"strings"
	"time"

	"code.cloudfoundry.org/bytefmt"
	"gopkg.in/yaml.v2"

	"github.com/ergochat/ircrelay/irc/logger"
	"github.com/ergochat/ircrelay/irc/protocol"
	"github.com/ergochat/ircrelay/irc/utils"
)

const (
	defaultMaxSendQ      = "96k"
	defaultMetricsListen = "127.0.0.1:9090"
	// bytes of readQ slack beyond limits.linelen before a connection is dropped
	readQSlack = 1024
)

// ListenerConfig is the per-address listener configuration.
type ListenerConfig struct {
	WebSocket bool `yaml:"websocket"`
}

// FakelagConfig controls the artificial delay applied to rapid-fire commands.
type FakelagConfig struct {
	Enabled           bool
	Window            time.Duration
	BurstLimit        uint `yaml:"burst-limit"`
	MessagesPerWindow uint `yaml:"messages-per-window"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool
	Listen  string
}

// Config defines the overall configuration.
type Config struct {
	Network struct {
		Name string
	}

	Server struct {
		Name           string
		Listeners      map[string]ListenerConfig
		MaxSendQString string `yaml:"max-sendq"`
		MaxSendQBytes  int    `yaml:"-"`
		// RequirePrefix rejects client lines that do not start with ':'
		RequirePrefix *bool `yaml:"require-prefix"`
		requirePrefix bool
		Metrics       MetricsConfig
	}

	Limits struct {
		LineLen    int `yaml:"linelen"`
		NickLen    int `yaml:"nicklen"`
		IdentLen   int `yaml:"identlen"`
		ChannelLen int `yaml:"channellen"`
		AwayLen    int `yaml:"awaylen"`
	}

	Fakelag FakelagConfig

	Logging []logger.LoggingConfig

	Debug struct {
		RecoverFromErrors *bool `yaml:"recover-from-errors"`
		recoverFromErrors bool
	}

	Filename string `yaml:"-"`
}

// LoadConfig loads the given YAML configuration file, applies environment
// overrides and validates the result.
func LoadConfig(filename string) (config *Config, err error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	config, err = unmarshalConfig(data)
	if err != nil {
		return nil, err
	}
	config.Filename = filename

	for _, envPair := range os.Environ() {
		if _, name, err := mungeFromEnvironment(config, envPair); err != nil {
			return nil, fmt.Errorf("Could not apply environment override %s: %w", name, err)
		}
	}

	if err = config.prepare(); err != nil {
		return nil, err
	}
	return config, nil
}

// ParseConfig parses and validates a YAML configuration held in memory.
func ParseConfig(data []byte) (config *Config, err error) {
	config, err = unmarshalConfig(data)
	if err != nil {
		return nil, err
	}
	if err = config.prepare(); err != nil {
		return nil, err
	}
	return config, nil
}

func unmarshalConfig(data []byte) (config *Config, err error) {
	config = new(Config)
	if err = yaml.UnmarshalStrict(data, config); err != nil {
		return nil, err
	}
	return config, nil
}

// prepare validates the exported fields and fills in the derived ones.
func (config *Config) prepare() (err error) {
	if config.Network.Name == "" {
		return ErrNetworkNameMissing
	}
	if config.Server.Name == "" {
		return ErrServerNameMissing
	}
	if !utils.IsHostname(config.Server.Name) {
		return ErrServerNameNotHostname
	}
	if len(config.Server.Listeners) == 0 {
		return ErrNoListenersDefined
	}

	if config.Limits.LineLen == 0 {
		config.Limits.LineLen = protocol.DefaultMaxLineLen
	}
	if config.Limits.LineLen < protocol.DefaultMaxLineLen {
		return ErrLineLengthTooSmall
	}
	if config.Limits.IdentLen < 1 {
		config.Limits.IdentLen = 20
	}
	if config.Limits.NickLen < 1 || config.Limits.ChannelLen < 2 || config.Limits.AwayLen < 1 {
		return ErrLimitsAreInsane
	}

	if config.Server.MaxSendQString == "" {
		config.Server.MaxSendQString = defaultMaxSendQ
	}
	maxSendQBytes, err := bytefmt.ToBytes(config.Server.MaxSendQString)
	if err != nil {
		return fmt.Errorf("Could not parse maximum SendQ size (make sure it only contains whole numbers): %s", err.Error())
	}
	config.Server.MaxSendQBytes = int(maxSendQBytes)

	// RequirePrefix defaults to true
	config.Server.requirePrefix = config.Server.RequirePrefix == nil || *config.Server.RequirePrefix

	if config.Server.Metrics.Enabled && config.Server.Metrics.Listen == "" {
		config.Server.Metrics.Listen = defaultMetricsListen
	}

	if config.Fakelag.Enabled {
		if config.Fakelag.Window <= 0 || config.Fakelag.MessagesPerWindow == 0 {
			return fmt.Errorf("fakelag window and messages-per-window must be positive")
		}
		if config.Fakelag.BurstLimit == 0 {
			config.Fakelag.BurstLimit = 1
		}
	}

	config.Logging, err = prepareLogging(config.Logging)
	if err != nil {
		return err
	}

	// RecoverFromErrors defaults to true
	config.Debug.recoverFromErrors = config.Debug.RecoverFromErrors == nil || *config.Debug.RecoverFromErrors

	return nil
}

func prepareLogging(configs []logger.LoggingConfig) (result []logger.LoggingConfig, err error) {
	for _, logConfig := range configs {
		// methods
		methods := make(map[string]bool)
		for _, method := range strings.Split(logConfig.Method, " ") {
			if len(method) > 0 {
				methods[strings.ToLower(method)] = true
			}
		}
		if methods["file"] && logConfig.Filename == "" {
			return nil, ErrLoggerFilenameMissing
		}
		logConfig.MethodFile = methods["file"]
		logConfig.MethodStdout = methods["stdout"]
		logConfig.MethodStderr = methods["stderr"]

		// levels
		level, exists := logger.LogLevelNames[strings.ToLower(logConfig.LevelString)]
		if !exists {
			return nil, fmt.Errorf("Could not translate log level [%s]", logConfig.LevelString)
		}
		logConfig.Level = level

		// types
		logConfig.Types, logConfig.ExcludedTypes = nil, nil
		for _, typeStr := range strings.Split(logConfig.TypeString, " ") {
			if len(typeStr) == 0 {
				continue
			}
			if typeStr == "-" {
				return nil, ErrLoggerExcludeEmpty
			}
			if typeStr[0] == '-' {
				logConfig.ExcludedTypes = append(logConfig.ExcludedTypes, typeStr[1:])
			} else {
				logConfig.Types = append(logConfig.Types, typeStr)
			}
		}
		if len(logConfig.Types) < 1 {
			return nil, ErrLoggerHasNoTypes
		}

		result = append(result, logConfig)
	}
	return result, nil
}

// RequirePrefix reports whether client lines must begin with a prefix.
func (config *Config) RequirePrefix() bool {
	return config.Server.requirePrefix
}

// RecoverFromErrors reports whether a panicking connection worker is
// recovered instead of crashing the process.
func (config *Config) RecoverFromErrors() bool {
	return config.Debug.recoverFromErrors
}

// maxReadQBytes is the most we buffer waiting for a newline.
func (config *Config) maxReadQBytes() int {
	return config.Limits.LineLen + readQSlack
}
