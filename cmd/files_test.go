package cmd

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLs(t *testing.T) {
	env := newTestEnv(t)
	env.srv.AddFile(t, "Books/cloud.txt", []byte("hello"))
	env.srv.AddFile(t, "Books/atlas.txt", []byte("a longer body"))
	env.srv.AddDir(t, "Books/Drafts")

	t.Run("names", func(t *testing.T) {
		out := env.run("ls", "Books")
		env.contains(out, "cloud.txt")
		env.contains(out, "atlas.txt")
		env.notContains(out, "Books\n")
	})

	t.Run("sorted", func(t *testing.T) {
		out := env.run("ls", "Books", "-s", "name")
		assert.Equal(t, "Drafts\natlas.txt\ncloud.txt\n", out)
	})

	t.Run("long", func(t *testing.T) {
		out := env.run("ls", "-l", "Books")
		env.contains(out, "SIZE")
		env.contains(out, "Drafts/")
		env.contains(out, "13 B")
	})

	t.Run("json", func(t *testing.T) {
		out := env.run("ls", "Books", "-s", "name", "-o", "json")
		var names []string
		require.NoError(t, json.Unmarshal([]byte(out), &names))
		assert.Equal(t, []string{"Drafts", "atlas.txt", "cloud.txt"}, names)
	})

	t.Run("missing folder", func(t *testing.T) {
		out, err := env.runErr("ls", "Nope")
		require.Error(t, err)
		env.contains(out, "Nope")
	})

	t.Run("bad sort", func(t *testing.T) {
		out, err := env.runErr("ls", "-s", "colour")
		require.Error(t, err)
		env.contains(out, "invalid sort field")
	})

	t.Run("traversal", func(t *testing.T) {
		out, err := env.runErr("ls", "../other")
		require.Error(t, err)
		env.contains(out, "escapes the files root")
	})
}

func TestCat(t *testing.T) {
	env := newTestEnv(t)
	env.srv.AddFile(t, "notes.txt", []byte("one\ntwo\nthree\n"))

	t.Run("plain", func(t *testing.T) {
		out := env.run("cat", "notes.txt")
		assert.Equal(t, "one\ntwo\nthree\n", out)
	})

	t.Run("line range", func(t *testing.T) {
		out := env.run("cat", "-n", "-l", "2:3", "notes.txt")
		env.contains(out, "two")
		env.contains(out, "three")
		env.notContains(out, "one")
	})

	t.Run("json", func(t *testing.T) {
		out := env.run("cat", "notes.txt", "-o", "json")
		var res struct {
			Path    string `json:"path"`
			Content string `json:"content"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &res))
		assert.Equal(t, "notes.txt", res.Path)
		assert.Equal(t, "one\ntwo\nthree\n", res.Content)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := env.runErr("cat", "absent.txt")
		require.Error(t, err)
	})
}

func TestMv(t *testing.T) {
	env := newTestEnv(t)
	env.srv.AddFile(t, "Books/old.txt", []byte("x"))
	env.srv.AddFile(t, "Books/taken.txt", []byte("y"))

	out := env.run("mv", "Books/old.txt", "Books/new.txt")
	env.contains(out, "Moved Books/old.txt -> Books/new.txt")
	assert.True(t, env.srv.Exists("Books/new.txt"))
	assert.False(t, env.srv.Exists("Books/old.txt"))

	out, err := env.runErr("mv", "Books/new.txt", "Books/taken.txt")
	require.Error(t, err)
	env.contains(out, "destination exists")
	assert.Equal(t, []byte("y"), env.srv.Content(t, "Books/taken.txt"))

	out, err = env.runErr("mv", "Books/new.txt", "../escape.txt")
	require.Error(t, err)
	env.contains(out, "escapes the files root")
}
