package db

import (
	"context"
	"testing"
)

// testContext stands in for t.Context (Go 1.24+): a context cancelled when
// the test's cleanup runs.
func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}
