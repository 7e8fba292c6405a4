// Package logging builds the publisher's logr.Logger and defines the standard keys
// used across components so logs can be queried consistently.
package logging

import (
	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Standard log field keys.
const (
	KeyTable           = "table"
	KeyKeyColumn       = "keyColumn"
	KeyRegion          = "region"
	KeyAccessMethod    = "accessMethod"
	KeyRoleARN         = "roleArn"
	KeyStatus          = "status"
	KeyHashedSignature = "hashedSignature"
	KeyHeadAndBody     = "headAndBody"
	KeyParts           = "parts"
	KeyExpiration      = "expiration"
	KeySeverity        = "severity"
)

// Debug is the verbosity used for diagnostics.
const Debug = 1

// Warn logs msg as a warning. logr has no warn level, so warnings are
// V(0) info lines tagged with severity=warning.
func Warn(l logr.Logger, msg string, keysAndValues ...interface{}) {
	l.Info(msg, append([]interface{}{KeySeverity, "warning"}, keysAndValues...)...)
}

// New returns a production zap-backed logger. verbose enables V(1) diagnostics.
func New(verbose bool) (logr.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.Level(-Debug))
	}

	z, err := cfg.Build()
	if err != nil {
		return logr.Discard(), err
	}
	return zapr.NewLogger(z), nil
}
