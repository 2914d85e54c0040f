// Package testutil provides shared test helpers for podscope packages.
package testutil

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

// Logger returns a debug-level logger that writes through t.Log, so output
// only shows for failing tests or with -v. Entries carry the test name.
func Logger(t testing.TB) *zap.Logger {
	return zaptest.NewLogger(t, zaptest.Level(zap.DebugLevel)).With(zap.String("test", t.Name()))
}
