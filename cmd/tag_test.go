package cmd

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTag(t *testing.T) {
	env := newTestEnv(t)
	id := env.srv.AddFile(t, "Books/cloud.epub", []byte("epub"))
	existing := env.srv.SeedTag("fiction")

	t.Run("add existing", func(t *testing.T) {
		out := env.run("tag", "add", "Books/cloud.epub", "fiction")
		env.contains(out, `Added tag "fiction" to Books/cloud.epub`)
		assert.True(t, env.srv.Related(id, existing))
		assert.Equal(t, 0, env.srv.CreateCalls())
	})

	t.Run("add new", func(t *testing.T) {
		env.run("tag", "add", "Books/cloud.epub", "to-read")
		assert.Equal(t, []string{"fiction", "to-read"}, env.srv.TagNames())
		assert.Equal(t, 1, env.srv.CreateCalls())
	})

	t.Run("ls file", func(t *testing.T) {
		out := env.run("tag", "ls", "Books/cloud.epub")
		assert.Equal(t, "fiction\nto-read\n", out)
	})

	t.Run("ls all json", func(t *testing.T) {
		env.srv.SeedTag("poetry")
		out := env.run("tag", "ls", "-o", "json")
		var res struct {
			Tags []string `json:"tags"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &res))
		assert.Equal(t, []string{"fiction", "poetry", "to-read"}, res.Tags)
	})

	t.Run("blank tag", func(t *testing.T) {
		_, err := env.runErr("tag", "add", "Books/cloud.epub", "  ")
		require.Error(t, err)
	})
}
