// Package proposal asks a language model which catalogue tags fit a book
// stored on the remote server.
//
// The book text comes from the file collection (EPUB books are unpacked to
// their spine text, anything else is read as plain text). The model is asked
// for a JSON object; the first '{' to the last '}' of its reply is decoded.
package proposal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"unicode/utf8"

	"github.com/aitormendez/nextcloud-mcp-server/internal/cat"
	"github.com/aitormendez/nextcloud-mcp-server/internal/llm"
	"github.com/aitormendez/nextcloud-mcp-server/internal/logging"
	"go.uber.org/zap"
)

// DefaultMaxChars is how much book text goes into the prompt.
const DefaultMaxChars = 6000

// ErrNoJSON is returned when the model reply holds no JSON object.
var ErrNoJSON = errors.New("no valid JSON object found in the model's output")

// NewTag is a tag the model wants added to the catalogue.
type NewTag struct {
	Name          string `json:"name"`
	Justification string `json:"justification"`
}

// Proposal is the model's classification of one book.
type Proposal struct {
	ExistingTags []string `json:"existing_tags"`
	NewTags      []NewTag `json:"new_tags"`
	// UnknownTags lists ExistingTags entries the catalogue does not define.
	UnknownTags []string `json:"unknown_tags,omitempty"`
}

// ParseError carries the raw model output that could not be decoded.
type ParseError struct {
	Output string
	Err    error
}

func (e *ParseError) Error() string { return e.Err.Error() }

func (e *ParseError) Unwrap() error { return e.Err }

// Proposer classifies books against a tag catalogue.
type Proposer struct {
	files    cat.Reader
	model    llm.Provider
	maxChars int
}

// New returns a Proposer reading through files and asking model.
func New(files cat.Reader, model llm.Provider) *Proposer {
	return &Proposer{files: files, model: model, maxChars: DefaultMaxChars}
}

// WithMaxChars overrides how much book text is sent to the model.
func (p *Proposer) WithMaxChars(n int) *Proposer {
	if n > 0 {
		p.maxChars = n
	}
	return p
}

// Propose reads the book at filePath, loads the catalogue at catalogPath
// and returns the model's tag proposal for title.
func (p *Proposer) Propose(ctx context.Context, title, filePath, catalogPath string) (Proposal, error) {
	catalog, err := LoadCatalog(catalogPath)
	if err != nil {
		return Proposal{}, err
	}
	return p.ProposeWith(ctx, title, filePath, catalog)
}

// ProposeWith is Propose with an already parsed catalogue.
func (p *Proposer) ProposeWith(ctx context.Context, title, filePath string, catalog Catalog) (Proposal, error) {
	logger := logging.FromContext(ctx)

	text, err := p.ReadText(ctx, filePath)
	if err != nil {
		return Proposal{}, err
	}
	logger.Debug("book text extracted",
		zap.String("path", filePath),
		zap.Int("chars", utf8.RuneCountInString(text)),
		zap.Int("catalogue", len(catalog)))

	prompt, err := Build(title, text, catalog)
	if err != nil {
		return Proposal{}, err
	}

	out, err := p.model.Complete(ctx, llm.Request{Prompt: prompt})
	if err != nil {
		return Proposal{}, fmt.Errorf("run model %s: %w", p.model.Name(), err)
	}

	prop, err := ExtractJSON(out)
	if err != nil {
		logger.Warn("model output not parsable", zap.String("provider", p.model.Name()), zap.Error(err))
		return Proposal{}, err
	}
	for _, t := range prop.ExistingTags {
		if !catalog.Has(t) {
			prop.UnknownTags = append(prop.UnknownTags, t)
		}
	}
	return prop, nil
}

// ReadText returns up to maxChars characters of the book at name.
func (p *Proposer) ReadText(ctx context.Context, name string) (string, error) {
	res, err := cat.Text(ctx, p.files, name, p.maxChars)
	if err != nil {
		return "", fmt.Errorf("read book: %w", err)
	}
	return res.Content, nil
}

var promptTemplate = template.Must(template.New("prompt").Parse(`You are an expert in semantic analysis and thematic classification of books.

Below is a list of existing tags, each with its description. Use them to tag the book that follows. If a clearly central theme is not covered by any existing tag you may propose a new tag, but you must justify it explicitly from the content. Ignore the author's name and general style: decide only from the content provided.

{{.Catalog}}

Propose relevant tags for this book:

Title: {{.Title}}

Extracted content:
{{.Text}}

Instructions:
- Use only existing tags, unless a clearly central theme is uncovered, the new tag could apply to other books in the library, and you can briefly justify why it is needed.
- Justify every new tag explicitly and concisely.
- Do not write comments outside the JSON.
- Your answer must be a single valid JSON object with this structure:

{
  "existing_tags": ["..."],
  "new_tags": [{"name": "...", "justification": "..."}]
}
`))

// Build renders the classification prompt.
func Build(title, text string, catalog Catalog) (string, error) {
	if catalog == nil {
		catalog = Catalog{}
	}
	var catJSON bytes.Buffer
	enc := json.NewEncoder(&catJSON)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(catalog); err != nil {
		return "", fmt.Errorf("encode catalogue: %w", err)
	}

	var b strings.Builder
	err := promptTemplate.Execute(&b, struct {
		Catalog, Title, Text string
	}{
		Catalog: strings.TrimSpace(catJSON.String()),
		Title:   title,
		Text:    text,
	})
	if err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return b.String(), nil
}

// ExtractJSON decodes the object between the first '{' and the last '}' of
// a model reply. Failures return a *ParseError holding the raw output.
func ExtractJSON(output string) (Proposal, error) {
	start := strings.Index(output, "{")
	end := strings.LastIndex(output, "}")
	if start == -1 || end <= start {
		return Proposal{}, &ParseError{Output: output, Err: ErrNoJSON}
	}
	var prop Proposal
	if err := json.Unmarshal([]byte(output[start:end+1]), &prop); err != nil {
		return Proposal{}, &ParseError{Output: output, Err: fmt.Errorf("parse model JSON: %w", err)}
	}
	if prop.ExistingTags == nil {
		prop.ExistingTags = []string{}
	}
	if prop.NewTags == nil {
		prop.NewTags = []NewTag{}
	}
	return prop, nil
}
