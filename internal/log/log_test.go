package log

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useTempDB(t *testing.T) {
	t.Helper()
	tmpDir := t.TempDir()
	orig := dbPathFunc
	dbPathFunc = func() string {
		return filepath.Join(tmpDir, "log", "test.db")
	}
	t.Cleanup(func() {
		Close()
		dbPathFunc = orig
	})
}

func TestLogger(t *testing.T) {
	useTempDB(t)

	t.Run("open and close", func(t *testing.T) {
		require.NoError(t, Open())
		defer Close()
		assert.FileExists(t, DBPath())
	})

	t.Run("log entry", func(t *testing.T) {
		require.NoError(t, Open())
		defer Close()

		SetServer("https://cloud.example.com")
		Log(Entry{
			Source:  "files:mv",
			User:    "alice",
			Action:  "move",
			Path:    "old.txt",
			Target:  "new.txt",
			Success: true,
		})

		db, err := sql.Open("sqlite", DBPath())
		require.NoError(t, err)
		defer db.Close()

		var source, action, path, target, server string
		var success int
		err = db.QueryRow("SELECT source, action, path, target, server, success FROM audit ORDER BY id DESC LIMIT 1").
			Scan(&source, &action, &path, &target, &server, &success)
		require.NoError(t, err)
		assert.Equal(t, "files:mv", source)
		assert.Equal(t, "move", action)
		assert.Equal(t, "old.txt", path)
		assert.Equal(t, "new.txt", target)
		assert.Equal(t, hash("https://cloud.example.com"), server)
		assert.Len(t, server, 16)
		assert.Equal(t, 1, success)
	})

	t.Run("builder", func(t *testing.T) {
		require.NoError(t, Open())
		defer Close()

		Event("mcp:tag_file", "tag").
			User("alice").
			Path("book.epub").
			Target("Mysticism").
			Detail("tag_id", 7).
			Write(errors.New("unexpected status 500"))

		entries, err := Recent(1)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		e := entries[0]
		assert.Equal(t, "mcp:tag_file", e.Source)
		assert.Equal(t, "alice", e.User)
		assert.False(t, e.Success)
		assert.Equal(t, "unexpected status 500", e.Error)
		assert.Equal(t, float64(7), e.Detail["tag_id"])
		assert.GreaterOrEqual(t, e.End, e.Start)
	})

	t.Run("recent is newest first", func(t *testing.T) {
		require.NoError(t, Open())
		defer Close()

		Event("files:ls", "list").Path("a").Write(nil)
		Event("files:ls", "list").Path("b").Write(nil)

		entries, err := Recent(2)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "b", entries[0].Path)
		assert.Equal(t, "a", entries[1].Path)
		assert.True(t, entries[0].Success)
		assert.Empty(t, entries[0].Target)
	})
}

func TestLogWithoutOpen(t *testing.T) {
	useTempDB(t)
	Close()

	// Must not panic or create the database.
	Event("files:cat", "read").Path("x").Write(nil)
	assert.NoFileExists(t, DBPath())

	entries, err := Recent(10)
	assert.NoError(t, err)
	assert.Empty(t, entries)
}

func TestOpenIdempotent(t *testing.T) {
	useTempDB(t)

	require.NoError(t, Open())
	require.NoError(t, Open())
	Close()
	Close()
}
