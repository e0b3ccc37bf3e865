// Copyright (c) 2017 Daniel Oaks <daniel@danieloaks.net>
// released under the MIT license

// Package logger writes leveled, typed log lines to stdout, stderr or files.
//
// Every line carries a type such as "server", "connect" or "userinput";
// each configured logger selects the types it captures and a minimum level.
package logger

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Level represents the level to log messages at.
type Level int

const (
	// LogDebug represents debug messages.
	LogDebug Level = iota
	// LogInfo represents informational messages.
	LogInfo
	// LogWarning represents warnings.
	LogWarning
	// LogError represents errors.
	LogError
)

var (
	// LogLevelNames takes a config name and gives the real log level.
	LogLevelNames = map[string]Level{
		"debug":    LogDebug,
		"info":     LogInfo,
		"warn":     LogWarning,
		"warning":  LogWarning,
		"warnings": LogWarning,
		"error":    LogError,
		"errors":   LogError,
	}
	// LogLevelDisplayNames gives the display name to use for our log levels.
	LogLevelDisplayNames = map[Level]string{
		LogDebug:   "debug",
		LogInfo:    "info",
		LogWarning: "warn",
		LogError:   "error",
	}
)

// raw I/O log types; logging them is expensive, so callers check IsLoggingRawIO first
const (
	TypeUserInput  = "userinput"
	TypeUserOutput = "useroutput"
)

// LoggingConfig represents the configuration of a single logger.
type LoggingConfig struct {
	Method       string
	MethodStdout bool `yaml:"-"`
	MethodStderr bool `yaml:"-"`
	MethodFile   bool `yaml:"-"`
	Filename     string
	TypeString   string   `yaml:"type"`
	Types        []string `yaml:"-"`
	// ExcludedTypes are the types named with a leading '-' in TypeString
	ExcludedTypes []string `yaml:"-"`
	LevelString   string   `yaml:"level"`
	Level         Level    `yaml:"-"`
}

// Manager is the main interface used to log debug/info/error messages.
type Manager struct {
	configMutex  sync.RWMutex
	loggers      []*singleLogger
	writeLock    sync.Mutex // one lock for every output
	loggingRawIO atomic.Bool
}

// NewManager returns a new log manager.
func NewManager(config []LoggingConfig) (*Manager, error) {
	var logger Manager

	if err := logger.ApplyConfig(config); err != nil {
		return nil, err
	}

	return &logger, nil
}

// NewStderrManager returns a manager that logs everything at or above
// level to stderr, except raw user I/O.
func NewStderrManager(level Level) *Manager {
	manager, _ := NewManager([]LoggingConfig{{
		MethodStderr:  true,
		Types:         []string{"*"},
		ExcludedTypes: []string{TypeUserInput, TypeUserOutput},
		Level:         level,
	}})
	return manager
}

// ApplyConfig replaces the current set of loggers.
func (logger *Manager) ApplyConfig(config []LoggingConfig) error {
	logger.configMutex.Lock()
	defer logger.configMutex.Unlock()

	for _, sLogger := range logger.loggers {
		sLogger.Close()
	}
	logger.loggers = nil
	logger.loggingRawIO.Store(false)

	var lastErr error
	for _, logConfig := range config {
		sLogger := &singleLogger{
			level:         logConfig.Level,
			types:         toSet(logConfig.Types),
			excludedTypes: toSet(logConfig.ExcludedTypes),
			writeLock:     &logger.writeLock,
		}
		if logConfig.MethodStdout {
			sLogger.outputs = append(sLogger.outputs, os.Stdout)
		}
		if logConfig.MethodStderr {
			sLogger.outputs = append(sLogger.outputs, os.Stderr)
		}
		if logConfig.MethodFile {
			file, err := os.OpenFile(logConfig.Filename, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0640)
			if err != nil {
				lastErr = fmt.Errorf("Could not open log file %s [%s]", logConfig.Filename, err.Error())
			} else {
				sLogger.file = file
				sLogger.fileWriter = bufio.NewWriter(file)
			}
		}

		// raw I/O is only logged at level debug
		if logConfig.Level == LogDebug && (sLogger.captures(TypeUserInput) || sLogger.captures(TypeUserOutput)) {
			logger.loggingRawIO.Store(true)
		}
		logger.loggers = append(logger.loggers, sLogger)
	}

	return lastErr
}

// Close flushes and closes all file outputs.
func (logger *Manager) Close() {
	logger.configMutex.Lock()
	defer logger.configMutex.Unlock()
	for _, sLogger := range logger.loggers {
		sLogger.Close()
	}
	logger.loggers = nil
}

// IsLoggingRawIO returns true if raw user input and output is being logged.
func (logger *Manager) IsLoggingRawIO() bool {
	return logger.loggingRawIO.Load()
}

// Log logs the given message with the given details.
func (logger *Manager) Log(level Level, logType string, messageParts ...string) {
	logger.configMutex.RLock()
	defer logger.configMutex.RUnlock()

	var line []byte
	for _, sLogger := range logger.loggers {
		if !sLogger.wants(level, logType) {
			continue
		}
		if line == nil {
			line = formatLine(time.Now(), level, logType, messageParts)
		}
		sLogger.write(line)
	}
}

// Debug logs the given message as a debug message.
func (logger *Manager) Debug(logType string, messageParts ...string) {
	logger.Log(LogDebug, logType, messageParts...)
}

// Info logs the given message as an info message.
func (logger *Manager) Info(logType string, messageParts ...string) {
	logger.Log(LogInfo, logType, messageParts...)
}

// Warning logs the given message as a warning message.
func (logger *Manager) Warning(logType string, messageParts ...string) {
	logger.Log(LogWarning, logType, messageParts...)
}

// Error logs the given message as an error message.
func (logger *Manager) Error(logType string, messageParts ...string) {
	logger.Log(LogError, logType, messageParts...)
}

func formatLine(now time.Time, level Level, logType string, messageParts []string) []byte {
	var buf bytes.Buffer
	// 10 is len("useroutput"), the longest type name in use
	fmt.Fprintf(&buf, "%s : %-5s : %-10s : ", now.UTC().Format("2006-01-02T15:04:05.000Z"), LogLevelDisplayNames[level], logType)
	buf.WriteString(strings.Join(messageParts, " : "))
	buf.WriteByte('\n')
	return buf.Bytes()
}

func toSet(names []string) map[string]bool {
	result := make(map[string]bool, len(names))
	for _, name := range names {
		result[name] = true
	}
	return result
}

// singleLogger represents a single logger instance.
type singleLogger struct {
	writeLock     *sync.Mutex
	outputs       []io.Writer
	file          *os.File
	fileWriter    *bufio.Writer
	level         Level
	types         map[string]bool
	excludedTypes map[string]bool
}

func (logger *singleLogger) captures(logType string) bool {
	return (logger.types["*"] || logger.types[logType]) && !logger.excludedTypes["*"] && !logger.excludedTypes[logType]
}

func (logger *singleLogger) wants(level Level, logType string) bool {
	if len(logger.outputs) == 0 && logger.file == nil {
		return false
	}
	return logger.level <= level && logger.captures(logType)
}

func (logger *singleLogger) write(line []byte) {
	logger.writeLock.Lock()
	defer logger.writeLock.Unlock()
	for _, output := range logger.outputs {
		output.Write(line)
	}
	if logger.fileWriter != nil {
		logger.fileWriter.Write(line)
		logger.fileWriter.Flush()
	}
}

func (logger *singleLogger) Close() error {
	if logger.file == nil {
		return nil
	}
	flushErr := logger.fileWriter.Flush()
	closeErr := logger.file.Close()
	logger.file, logger.fileWriter = nil, nil
	if flushErr != nil {
		return flushErr
	}
	return closeErr
}
