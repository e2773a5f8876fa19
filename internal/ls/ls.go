// Package ls lists a remote folder with optional sorting.
//
// There are two code paths:
//
//  1. The short listing asks only for names (ListFiles), which keeps the
//     PROPFIND body small for large folders.
//
//  2. The long listing asks for sizes and modification times (ListEntries)
//     and prints them as a table.
package ls

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/aitormendez/nextcloud-mcp-server/internal/nextcloud"
)

// Lister is the part of the Nextcloud client ls needs.
type Lister interface {
	ListFiles(ctx context.Context, path string) ([]string, error)
	ListEntries(ctx context.Context, path string) ([]nextcloud.Entry, error)
}

// SortField specifies how to sort results.
type SortField string

const (
	SortNone SortField = ""     // server order
	SortName SortField = "name" // alphabetical
	SortTime SortField = "time" // newest first
	SortSize SortField = "size" // largest first
)

// Options configures a list operation.
type Options struct {
	Path    string    // Folder relative to the files root; empty is the root
	Long    bool      // Sizes and modification times
	Sort    SortField // Sort field; time and size imply Long
	Reverse bool      // Reverse sort order
}

// Result contains the outcome of a list operation. Only one of Names or
// Entries is populated.
type Result struct {
	Names   []string
	Entries []nextcloud.Entry
}

// Count returns the number of entries in the result.
func (r Result) Count() int {
	if r.Entries != nil {
		return len(r.Entries)
	}
	return len(r.Names)
}

// EntryJSON is the API-friendly representation of an entry.
type EntryJSON struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	Size     int64  `json:"size"`
	Modified string `json:"modified,omitempty"`
	IsDir    bool   `json:"is_dir,omitempty"`
}

// EntriesJSON converts entries to their JSON form. It never returns nil,
// so an empty folder encodes as [].
func EntriesJSON(entries []nextcloud.Entry) []EntryJSON {
	out := make([]EntryJSON, 0, len(entries))
	for _, e := range entries {
		j := EntryJSON{Name: e.Name, Path: e.Path, Size: e.Size, IsDir: e.IsDir}
		if !e.Modified.IsZero() {
			j.Modified = e.Modified.UTC().Format(time.RFC3339)
		}
		out = append(out, j)
	}
	return out
}

// ToJSON converts the result to a JSON-serialisable value.
func (r Result) ToJSON() any {
	if r.Entries != nil {
		return EntriesJSON(r.Entries)
	}
	if r.Names == nil {
		return []string{}
	}
	return r.Names
}

// Run lists opts.Path and writes formatted output to w.
func Run(ctx context.Context, w io.Writer, l Lister, opts Options) (Result, error) {
	var result Result

	if opts.Long || opts.Sort == SortTime || opts.Sort == SortSize {
		entries, err := l.ListEntries(ctx, opts.Path)
		if err != nil {
			return result, err
		}
		if entries == nil {
			entries = []nextcloud.Entry{}
		}
		sortEntries(entries, opts.Sort, opts.Reverse)
		result.Entries = entries
		if opts.Long {
			writeLong(w, entries)
		} else {
			for _, e := range entries {
				fmt.Fprintln(w, displayName(e))
			}
		}
		return result, nil
	}

	names, err := l.ListFiles(ctx, opts.Path)
	if err != nil {
		return result, err
	}
	if opts.Sort == SortName {
		sort.Strings(names)
		if opts.Reverse {
			sort.Sort(sort.Reverse(sort.StringSlice(names)))
		}
	}
	result.Names = names
	for _, n := range names {
		fmt.Fprintln(w, n)
	}
	return result, nil
}

// sortEntries orders entries in place. Ties fall back to the name so the
// order is stable across runs.
func sortEntries(entries []nextcloud.Entry, field SortField, reverse bool) {
	var less func(a, b nextcloud.Entry) bool
	switch field {
	case SortName:
		less = func(a, b nextcloud.Entry) bool { return a.Name < b.Name }
	case SortTime:
		less = func(a, b nextcloud.Entry) bool {
			if a.Modified.Equal(b.Modified) {
				return a.Name < b.Name
			}
			return a.Modified.After(b.Modified)
		}
	case SortSize:
		less = func(a, b nextcloud.Entry) bool {
			if a.Size == b.Size {
				return a.Name < b.Name
			}
			return a.Size > b.Size
		}
	default:
		return
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if reverse {
			return less(entries[j], entries[i])
		}
		return less(entries[i], entries[j])
	})
}

func displayName(e nextcloud.Entry) string {
	if e.IsDir {
		return e.Name + "/"
	}
	return e.Name
}

// writeLong prints entries as SIZE, MODIFIED, NAME columns.
func writeLong(w io.Writer, entries []nextcloud.Entry) {
	if len(entries) == 0 {
		return
	}
	fmt.Fprintf(w, "%8s  %-16s  %s\n", "SIZE", "MODIFIED", "NAME")
	for _, e := range entries {
		size := "-"
		if !e.IsDir {
			size = humanize.IBytes(uint64(max(e.Size, 0)))
		}
		modified := "-"
		if !e.Modified.IsZero() {
			modified = e.Modified.Local().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "%8s  %-16s  %s\n", size, modified, displayName(e))
	}
}
