// Package epub extracts readable text from EPUB books.
//
// The reading order comes from the package document's spine. Each spine item
// is XHTML; text nodes outside script and style are collected with block
// elements separated by newlines.
package epub

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// ErrNotEPUB is returned when data is not a readable EPUB container.
var ErrNotEPUB = errors.New("not an EPUB file")

// IsEPUB reports whether data starts like an EPUB (zip with the
// application/epub+zip mimetype entry first).
func IsEPUB(data []byte) bool {
	const header = 30
	if len(data) < header || !bytes.HasPrefix(data, []byte("PK\x03\x04")) {
		return false
	}
	nameLen := int(binary.LittleEndian.Uint16(data[26:28]))
	extraLen := int(binary.LittleEndian.Uint16(data[28:30]))
	body := header + nameLen + extraLen
	if len(data) < body || string(data[header:header+nameLen]) != "mimetype" {
		return false
	}
	return bytes.HasPrefix(data[body:], []byte("application/epub+zip"))
}

type container struct {
	Rootfiles []struct {
		FullPath string `xml:"full-path,attr"`
	} `xml:"rootfiles>rootfile"`
}

type packageDoc struct {
	Manifest []struct {
		ID        string `xml:"id,attr"`
		Href      string `xml:"href,attr"`
		MediaType string `xml:"media-type,attr"`
	} `xml:"manifest>item"`
	Spine []struct {
		IDRef string `xml:"idref,attr"`
	} `xml:"spine>itemref"`
}

// ExtractText returns the book's text in reading order. When maxChars > 0
// the result is cut after maxChars characters.
func ExtractText(data []byte, maxChars int) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotEPUB, err)
	}
	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[f.Name] = f
	}

	var c container
	if err := readXML(files, "META-INF/container.xml", &c); err != nil {
		return "", err
	}
	if len(c.Rootfiles) == 0 || c.Rootfiles[0].FullPath == "" {
		return "", fmt.Errorf("%w: container lists no package document", ErrNotEPUB)
	}
	opfPath := c.Rootfiles[0].FullPath

	var pkg packageDoc
	if err := readXML(files, opfPath, &pkg); err != nil {
		return "", err
	}
	hrefs := make(map[string]string, len(pkg.Manifest))
	for _, item := range pkg.Manifest {
		hrefs[item.ID] = item.Href
	}

	var out strings.Builder
	for _, ref := range pkg.Spine {
		href, ok := hrefs[ref.IDRef]
		if !ok {
			continue
		}
		name := path.Join(path.Dir(opfPath), href)
		f, ok := files[name]
		if !ok {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("open %s: %w", name, err)
		}
		err = collectText(rc, &out)
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("parse %s: %w", name, err)
		}
		if maxChars > 0 && utf8.RuneCountInString(out.String()) >= maxChars {
			break
		}
	}
	return truncate(strings.TrimSpace(out.String()), maxChars), nil
}

func readXML(files map[string]*zip.File, name string, v any) error {
	f, ok := files[name]
	if !ok {
		return fmt.Errorf("%w: missing %s", ErrNotEPUB, name)
	}
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", name, err)
	}
	defer rc.Close()
	if err := xml.NewDecoder(rc).Decode(v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrNotEPUB, name, err)
	}
	return nil
}

var blockElements = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "tr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"blockquote": true, "section": true, "article": true,
}

func collectText(r io.Reader, out *strings.Builder) error {
	z := html.NewTokenizer(r)
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				out.WriteString("\n")
				return nil
			}
			return z.Err()
		case html.StartTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "script", "style", "head":
				skip++
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			switch tag {
			case "script", "style", "head":
				if skip > 0 {
					skip--
				}
			}
			if blockElements[tag] {
				out.WriteString("\n")
			}
		case html.SelfClosingTagToken:
			name, _ := z.TagName()
			if blockElements[string(name)] {
				out.WriteString("\n")
			}
		case html.TextToken:
			if skip > 0 {
				continue
			}
			text := strings.Join(strings.Fields(string(z.Text())), " ")
			if text == "" {
				continue
			}
			if out.Len() > 0 && !strings.HasSuffix(out.String(), "\n") {
				out.WriteString(" ")
			}
			out.WriteString(text)
		}
	}
}

// truncate cuts s after max characters. max <= 0 means no limit.
func truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i]
		}
		n++
	}
	return s
}
