package proposal

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aitormendez/nextcloud-mcp-server/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalogMD = `# Library tags

Intro text that belongs to no tag.

## Meditation
Practices of attention
and contemplation.

## Stoicism
Ancient philosophy of virtue.

## Empty

## Meditation
Sitting practice.
`

type memFiles struct {
	files map[string][]byte
	reads []int64
}

func (m *memFiles) Read(_ context.Context, path string, limit int64) ([]byte, error) {
	m.reads = append(m.reads, limit)
	data, ok := m.files[path]
	if !ok {
		return nil, errors.New("404")
	}
	if limit > 0 && int64(len(data)) > limit {
		data = data[:limit]
	}
	return data, nil
}

type cannedModel struct {
	prompt string
	reply  string
	err    error
}

func (c *cannedModel) Name() string { return "canned" }

func (c *cannedModel) Complete(_ context.Context, req llm.Request) (string, error) {
	c.prompt = req.Prompt
	return c.reply, c.err
}

func TestParseCatalog(t *testing.T) {
	cat, err := ParseCatalog(strings.NewReader(catalogMD))
	require.NoError(t, err)

	assert.Equal(t, []string{"Meditation", "Stoicism", "Empty"}, cat.Names())
	assert.Equal(t, "Sitting practice.", cat[0].Description)
	assert.Equal(t, "Ancient philosophy of virtue.", cat[1].Description)
	assert.Empty(t, cat[2].Description)
	assert.True(t, cat.Has("Stoicism"))
	assert.False(t, cat.Has("stoicism"))
}

func TestParseCatalog_NoHeadings(t *testing.T) {
	cat, err := ParseCatalog(strings.NewReader("just prose\n"))
	require.NoError(t, err)
	assert.Empty(t, cat)
}

func TestLoadCatalog_Missing(t *testing.T) {
	_, err := LoadCatalog(filepath.Join(t.TempDir(), "nope.md"))
	assert.ErrorContains(t, err, "open catalogue")
}

func TestBuild(t *testing.T) {
	cat := Catalog{{Name: "Zen & Tao", Description: "East <Asian> thought"}}
	got, err := Build("The Way", "Some text", cat)
	require.NoError(t, err)

	assert.Contains(t, got, `[{"name":"Zen & Tao","description":"East <Asian> thought"}]`)
	assert.Contains(t, got, "Title: The Way")
	assert.Contains(t, got, "Extracted content:\nSome text")
	assert.Contains(t, got, `"existing_tags"`)

	empty, err := Build("t", "x", nil)
	require.NoError(t, err)
	assert.Contains(t, empty, "\n[]\n")
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name     string
		output   string
		existing []string
		newTags  []NewTag
	}{
		{
			name:     "bare object",
			output:   `{"existing_tags":["Stoicism"],"new_tags":[]}`,
			existing: []string{"Stoicism"},
			newTags:  []NewTag{},
		},
		{
			name:     "chatter around object",
			output:   "Sure! Here you go:\n```json\n{\"existing_tags\":[],\"new_tags\":[{\"name\":\"Grief\",\"justification\":\"central theme\"}]}\n```\nHope it helps {:",
			existing: []string{},
			newTags:  []NewTag{{Name: "Grief", Justification: "central theme"}},
		},
		{
			name:     "missing fields",
			output:   `{}`,
			existing: []string{},
			newTags:  []NewTag{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.output)
			require.NoError(t, err)
			assert.Equal(t, tt.existing, got.ExistingTags)
			assert.Equal(t, tt.newTags, got.NewTags)
		})
	}
}

func TestExtractJSON_Errors(t *testing.T) {
	_, err := ExtractJSON("I cannot classify this book.")
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.ErrorIs(t, err, ErrNoJSON)
	assert.Equal(t, "I cannot classify this book.", pe.Output)

	_, err = ExtractJSON(`} backwards {`)
	require.ErrorIs(t, err, ErrNoJSON)

	_, err = ExtractJSON(`{"existing_tags": "Stoicism",}`)
	require.ErrorAs(t, err, &pe)
	assert.NotErrorIs(t, err, ErrNoJSON)
	assert.Contains(t, err.Error(), "parse model JSON")
}

func TestPropose_PlainText(t *testing.T) {
	dir := t.TempDir()
	catPath := filepath.Join(dir, "tags.md")
	require.NoError(t, os.WriteFile(catPath, []byte(catalogMD), 0o600))

	files := &memFiles{files: map[string][]byte{
		"Books/letters.txt": []byte(strings.Repeat("virtue ", 50)),
	}}
	model := &cannedModel{reply: `{"existing_tags":["Stoicism","Cynicism"],"new_tags":[]}`}

	got, err := New(files, model).WithMaxChars(20).Propose(context.Background(), "Letters", "Books/letters.txt", catPath)
	require.NoError(t, err)

	assert.Equal(t, []string{"Stoicism", "Cynicism"}, got.ExistingTags)
	assert.Equal(t, []string{"Cynicism"}, got.UnknownTags)
	assert.Contains(t, model.prompt, "Title: Letters")
	assert.Contains(t, model.prompt, "Extracted content:\nvirtue virtue virtue\n")
	assert.Contains(t, model.prompt, `"name":"Meditation"`)
	assert.Equal(t, []int64{512}, files.reads)
}

func TestPropose_ModelErrors(t *testing.T) {
	files := &memFiles{files: map[string][]byte{"a.txt": []byte("text")}}

	_, err := New(files, &cannedModel{err: errors.New("connection refused")}).
		ProposeWith(context.Background(), "A", "a.txt", nil)
	assert.ErrorContains(t, err, "run model canned: connection refused")

	_, err = New(files, &cannedModel{reply: "no idea"}).
		ProposeWith(context.Background(), "A", "a.txt", nil)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "no idea", pe.Output)

	_, err = New(files, &cannedModel{}).ProposeWith(context.Background(), "A", "missing.txt", nil)
	assert.ErrorContains(t, err, "read book")
}

func buildBook(t *testing.T, body string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.CreateHeader(&zip.FileHeader{Name: "mimetype", Method: zip.Store})
	require.NoError(t, err)
	_, _ = w.Write([]byte("application/epub+zip"))

	add := func(name, content string) {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, _ = w.Write([]byte(content))
	}
	add("META-INF/container.xml", `<container><rootfiles><rootfile full-path="content.opf"/></rootfiles></container>`)
	add("content.opf", `<package><manifest><item id="c" href="c.xhtml"/></manifest><spine><itemref idref="c"/></spine></package>`)
	add("c.xhtml", "<html><body><p>"+body+"</p></body></html>")
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestReadText_EPUB(t *testing.T) {
	book := buildBook(t, "Chapter text about silence.")
	files := &memFiles{files: map[string][]byte{
		"Books/silence.epub": book,
		"Books/noext":        book,
	}}
	p := New(files, &cannedModel{}).WithMaxChars(20)

	got, err := p.ReadText(context.Background(), "Books/silence.epub")
	require.NoError(t, err)
	assert.Equal(t, "Chapter text about s", got)
	assert.Equal(t, []int64{0}, files.reads)

	files.reads = nil
	got, err = p.ReadText(context.Background(), "Books/noext")
	require.NoError(t, err)
	assert.Equal(t, "Chapter text about s", got)
	assert.Equal(t, []int64{512, 0}, files.reads, "sniffed EPUB is re-read whole")
}
