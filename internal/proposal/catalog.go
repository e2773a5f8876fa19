package proposal

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// CatalogEntry is one tag of the curated taxonomy.
type CatalogEntry struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Catalog is the tag taxonomy in file order.
type Catalog []CatalogEntry

// Names returns the tag names in file order.
func (c Catalog) Names() []string {
	names := make([]string, len(c))
	for i, e := range c {
		names[i] = e.Name
	}
	return names
}

// Has reports whether the catalogue defines name (case-sensitive).
func (c Catalog) Has(name string) bool {
	for _, e := range c {
		if e.Name == name {
			return true
		}
	}
	return false
}

// LoadCatalog reads a markdown catalogue from the local filesystem.
func LoadCatalog(path string) (Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalogue: %w", err)
	}
	defer f.Close()
	return ParseCatalog(f)
}

// ParseCatalog reads "## Name" sections. The text up to the next heading is
// the tag's description. Text before the first heading is ignored; a repeated
// name keeps its first position and takes the later description.
func ParseCatalog(r io.Reader) (Catalog, error) {
	var (
		cat     Catalog
		index   = map[string]int{}
		current = -1
		body    strings.Builder
	)
	flush := func() {
		if current >= 0 {
			cat[current].Description = strings.TrimSpace(body.String())
		}
		body.Reset()
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if name, ok := strings.CutPrefix(line, "## "); ok {
			flush()
			name = strings.TrimSpace(name)
			if i, seen := index[name]; seen {
				current = i
				continue
			}
			index[name] = len(cat)
			current = len(cat)
			cat = append(cat, CatalogEntry{Name: name})
			continue
		}
		if current >= 0 {
			body.WriteString(line)
			body.WriteByte('\n')
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read catalogue: %w", err)
	}
	flush()
	return cat, nil
}
