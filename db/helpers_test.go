package db

import (
	"context"
	"path/filepath"
	"testing"
)

// openTestDB opens a migrated database in a temp directory.
func openTestDB(t *testing.T) *Database {
	t.Helper()
	d, err := Open(context.Background(), filepath.Join(t.TempDir(), "sub", "dreamink.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}
