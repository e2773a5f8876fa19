package tag_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aitormendez/nextcloud-mcp-server/internal/nextcloud"
	"github.com/aitormendez/nextcloud-mcp-server/internal/nextcloud/nextcloudtest"
	"github.com/aitormendez/nextcloud-mcp-server/internal/tag"
	"github.com/aitormendez/nextcloud-mcp-server/internal/validate"
)

// setupClient starts a fake server and returns a client for it.
func setupClient(t *testing.T) (*nextcloud.Client, *nextcloudtest.Server) {
	t.Helper()

	srv := nextcloudtest.New(t)
	rc, err := nextcloud.NewRemoteContext(srv.BaseURL(), nextcloudtest.User, nextcloudtest.Password)
	require.NoError(t, err, "remote context")
	return nextcloud.New(rc, nextcloud.WithDoer(srv.Client())), srv
}

func TestAdd(t *testing.T) {
	ctx := context.Background()
	c, srv := setupClient(t)
	id := srv.AddFile(t, "Books/dune.epub", []byte("x"))
	srv.SeedTag("Classic")

	var buf bytes.Buffer
	res, err := tag.Add(ctx, &buf, c, "Books/dune.epub", "Science Fiction")
	require.NoError(t, err)

	assert.Equal(t, "add", res.Action)
	assert.Equal(t, nextcloud.FileID(id), res.FileID)
	assert.NotZero(t, res.TagID)
	assert.Equal(t, []string{"Science Fiction"}, res.Tags)
	assert.True(t, srv.Related(id, res.TagID))
	assert.Equal(t, []string{"Classic", "Science Fiction"}, srv.TagNames())
	assert.Contains(t, buf.String(), `Added tag "Science Fiction" to Books/dune.epub`)
}

func TestAdd_ExistingTagIsReused(t *testing.T) {
	ctx := context.Background()
	c, srv := setupClient(t)
	srv.AddFile(t, "a.txt", []byte("x"))
	tagID := srv.SeedTag("Read")

	var buf bytes.Buffer
	res, err := tag.Add(ctx, &buf, c, "a.txt", "Read")
	require.NoError(t, err)
	assert.Equal(t, tagID, res.TagID)
	assert.Equal(t, 0, srv.CreateCalls())

	_, err = tag.Add(ctx, &buf, c, "a.txt", "Read")
	require.NoError(t, err, "assigning twice succeeds")
}

func TestAdd_Invalid(t *testing.T) {
	ctx := context.Background()
	c, srv := setupClient(t)
	var buf bytes.Buffer

	_, err := tag.Add(ctx, &buf, c, "a.txt", " ")
	assert.ErrorIs(t, err, validate.ErrInvalidTag)

	_, err = tag.Add(ctx, &buf, c, "../b.txt", "x")
	assert.ErrorIs(t, err, validate.ErrInvalidPath)
	assert.Zero(t, srv.CreateCalls())

	_, err = tag.Add(ctx, &buf, c, "missing.txt", "x")
	var notFound *nextcloud.NotFoundError
	var remote *nextcloud.RemoteError
	assert.True(t, errors.As(err, &notFound) || errors.As(err, &remote), "got %v", err)
	assert.Empty(t, buf.String())
}

func TestList(t *testing.T) {
	ctx := context.Background()
	c, srv := setupClient(t)
	id := srv.AddFile(t, "a.txt", []byte("x"))
	srv.AddFile(t, "b.txt", []byte("y"))
	srv.SeedRelation(id, srv.SeedTag("Alpha"))
	srv.SeedTag("Beta")

	t.Run("file", func(t *testing.T) {
		var buf bytes.Buffer
		res, err := tag.List(ctx, &buf, c, "a.txt")
		require.NoError(t, err)
		assert.Equal(t, []string{"Alpha"}, res.Tags)
		assert.Equal(t, "Alpha\n", buf.String())
	})

	t.Run("untagged file", func(t *testing.T) {
		var buf bytes.Buffer
		res, err := tag.List(ctx, &buf, c, "b.txt")
		require.NoError(t, err)
		assert.Equal(t, []string{}, res.Tags)
		assert.Empty(t, buf.String())
	})

	t.Run("all tags", func(t *testing.T) {
		var buf bytes.Buffer
		res, err := tag.List(ctx, &buf, c, "")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"Alpha", "Beta"}, res.Tags)
	})

	t.Run("server error", func(t *testing.T) {
		srv.FailNext("PROPFIND", http.StatusInternalServerError, "boom")
		var buf bytes.Buffer
		_, err := tag.List(ctx, &buf, c, "a.txt")
		var remote *nextcloud.RemoteError
		assert.ErrorAs(t, err, &remote)
	})
}
