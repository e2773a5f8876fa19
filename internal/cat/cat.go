// Package cat reads remote files as text with optional line ranges.
//
// EPUB books are unpacked to their reading-order text; anything else is
// treated as UTF-8 text. MaxChars bounds what is fetched, so a model can look
// at the start of a large book without pulling the whole body into context.
package cat

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/aitormendez/nextcloud-mcp-server/internal/epub"
)

// minLineNumWidth is the minimum column width for line numbers.
const minLineNumWidth = 6

// sniffLen is the smallest partial read, enough to recognise an EPUB.
const sniffLen = 512

// Reader fetches file bodies from the remote collection. limit <= 0 reads
// the whole body.
type Reader interface {
	Read(ctx context.Context, path string, limit int64) ([]byte, error)
}

// Options configures a cat operation.
type Options struct {
	MaxChars    int  // Characters to return (0 = whole file)
	LineNumbers bool // Show line numbers (-n flag)
	StartLine   int  // First line to show (1-indexed, 0 = start)
	EndLine     int  // Last line to show (1-indexed, 0 = end)
}

// Result contains the outcome of a cat operation.
type Result struct {
	Path      string `json:"path"`
	Content   string `json:"content"`
	EPUB      bool   `json:"epub,omitempty"`
	Truncated bool   `json:"truncated,omitempty"`
}

// Text returns up to maxChars characters of the file at name. maxChars <= 0
// returns the whole text.
func Text(ctx context.Context, r Reader, name string, maxChars int) (Result, error) {
	res := Result{Path: name}

	var limit int64
	if maxChars > 0 && !strings.EqualFold(path.Ext(name), ".epub") {
		// one extra rune tells us whether the text was cut
		limit = max(int64(maxChars+1)*utf8.UTFMax, sniffLen)
	}
	data, err := r.Read(ctx, name, limit)
	if err != nil {
		return res, err
	}

	if epub.IsEPUB(data) {
		if limit > 0 {
			if data, err = r.Read(ctx, name, 0); err != nil {
				return res, err
			}
		}
		text, err := epub.ExtractText(data, 0)
		if err != nil {
			return res, err
		}
		res.EPUB = true
		res.Content, res.Truncated = cut(text, maxChars)
		return res, nil
	}

	text := string(data)
	if limit > 0 && int64(len(data)) >= limit {
		// the read may have split the last rune
		text = strings.ToValidUTF8(text, "")
	}
	res.Content, res.Truncated = cut(text, maxChars)
	return res, nil
}

// Run reads a file and writes its text to w.
func Run(ctx context.Context, w io.Writer, r Reader, name string, opts Options) (Result, error) {
	res, err := Text(ctx, r, name, opts.MaxChars)
	if err != nil {
		return res, err
	}
	return res, write(w, res.Content, opts)
}

func cut(s string, maxChars int) (string, bool) {
	if maxChars <= 0 {
		return s, false
	}
	n := 0
	for i := range s {
		if n == maxChars {
			return s[:i], true
		}
		n++
	}
	return s, false
}

func write(w io.Writer, content string, opts Options) error {
	if opts.StartLine == 0 && opts.EndLine == 0 && !opts.LineNumbers {
		_, err := io.WriteString(w, content)
		return err
	}

	trailing := strings.HasSuffix(content, "\n")
	total := strings.Count(content, "\n") + 1
	if trailing {
		total--
	}

	start, end := 1, total
	if opts.StartLine > 0 {
		start = opts.StartLine
	}
	if opts.EndLine > 0 && opts.EndLine < end {
		end = opts.EndLine
	}
	width := max(len(strconv.Itoa(end)), minLineNumWidth)

	sc := bufio.NewScanner(strings.NewReader(content))
	sc.Buffer(make([]byte, 64*1024), 10*1024*1024)
	n := 0
	for sc.Scan() {
		n++
		if n < start {
			continue
		}
		if n > end {
			break
		}
		if opts.LineNumbers {
			fmt.Fprintf(w, "%*d\t%s", width, n, sc.Text())
		} else {
			fmt.Fprint(w, sc.Text())
		}
		if n < end || trailing {
			fmt.Fprintln(w)
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("reading content: %w", err)
	}
	return nil
}
