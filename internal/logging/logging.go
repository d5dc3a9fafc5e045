package logging

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// VerbosityLevel defines the logging verbosity.
type VerbosityLevel int

const (
	Verbose VerbosityLevel = iota
	Info
	Warning
	Error
	Off
)

// ErrInvalidVerbosity is returned by ParseVerbosity for unknown level names.
var ErrInvalidVerbosity = errors.New("invalid verbosity level")

// LevelNames lists the accepted verbosity names in increasing severity.
var LevelNames = []string{"Verbose", "Info", "Warning", "Error", "Off"}

func (v VerbosityLevel) String() string {
	if v < Verbose || v > Off {
		return fmt.Sprintf("VerbosityLevel(%d)", int(v))
	}
	return LevelNames[v]
}

// ParseVerbosity converts a case-insensitive level name into a VerbosityLevel.
func ParseVerbosity(s string) (VerbosityLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "verbose":
		return Verbose, nil
	case "info":
		return Info, nil
	case "warning":
		return Warning, nil
	case "error":
		return Error, nil
	case "off":
		return Off, nil
	default:
		return Info, fmt.Errorf("%w '%s'. Valid levels are %s", ErrInvalidVerbosity, s, strings.Join(LevelNames, ", "))
	}
}

func (v VerbosityLevel) zapLevel() zapcore.Level {
	switch v {
	case Verbose:
		return zapcore.DebugLevel
	case Warning:
		return zapcore.WarnLevel
	case Error:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// NewLogger builds a console logger writing to w that only emits entries at or
// above the given verbosity. Off yields a no-op logger.
func NewLogger(level VerbosityLevel, w io.Writer) *zap.Logger {
	if level >= Off {
		return zap.NewNop()
	}
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.TimeKey = ""
	encCfg.CallerKey = ""
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(w), level.zapLevel())
	return zap.New(core)
}
