package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestOpen_Pragmas(t *testing.T) {
	s := openTestStore(t)

	tests := map[string]string{
		"journal_mode": "wal",
		"synchronous":  "1",
		"busy_timeout": "5000",
		"foreign_keys": "1",
		"user_version": "1",
	}
	for name, want := range tests {
		got, err := s.pragma(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	for range 3 {
		s, err := Open(path)
		require.NoError(t, err)
		require.NoError(t, s.Close())
	}

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	for _, name := range []string{"idx_invocations_session", "idx_invocations_op", "idx_completions_case"} {
		var found string
		err := s.db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'index' AND name = ?`, name).Scan(&found)
		assert.NoError(t, err, name)
	}
}

func TestOpen_Memory(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Ping(t.Context()))
	seq, err := s.LastSeq(t.Context())
	require.NoError(t, err)
	assert.Equal(t, int64(0), seq)
}

func TestClose_Nil(t *testing.T) {
	var s *Store
	assert.NoError(t, s.Close())
}
