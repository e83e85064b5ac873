package ide

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oxhq/stcore/host"
	"github.com/oxhq/stcore/internal/semdb"
)

// newService builds a Service over a fresh Database seeded with files, in
// the order given, under sequential FileIds starting at 1. Each files
// entry is (path, source).
func newService(t *testing.T, h host.Host, files ...[2]string) (*Service, *semdb.Database) {
	t.Helper()
	db := semdb.NewDatabase(h)
	for i, f := range files {
		db.SetSourceText(host.FileId(i+1), f[1])
	}
	return NewService(db), db
}

// offsetOf returns the byte offset of marker's last occurrence in src.
func offsetOf(t *testing.T, src, marker string) host.Offset {
	t.Helper()
	idx := strings.LastIndex(src, marker)
	require.GreaterOrEqual(t, idx, 0, "marker %q not found in source", marker)
	return host.Offset(idx)
}
