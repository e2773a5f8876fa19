package nextcloud

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aitormendez/nextcloud-mcp-server/internal/davxml"
)

// FileID is the server's stable handle for a file. It survives renames and
// is looked up on every use.
type FileID string

// Entry is one child of a listed directory.
type Entry struct {
	Name     string
	Path     string // relative to the storage root
	Size     int64
	Modified time.Time
	IsDir    bool
}

// Directory lists, inspects and moves entries in the user's storage.
type Directory struct {
	t        *transport
	resolver Resolver
}

// ListFiles returns the display names of the children of path.
func (d *Directory) ListFiles(ctx context.Context, path string) ([]string, error) {
	entries, err := d.list(ctx, "list files", path, davxml.DisplayName)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
	}
	return names, nil
}

// ListEntries is ListFiles with size, modification time and type.
func (d *Directory) ListEntries(ctx context.Context, path string) ([]Entry, error) {
	return d.list(ctx, "list entries", path,
		davxml.DisplayName, davxml.ContentLength, davxml.LastModified, davxml.ResourceType)
}

func (d *Directory) list(ctx context.Context, op, path string, props ...davxml.Property) ([]Entry, error) {
	path, err := d.resolver.Resolve(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	r, err := d.t.propfind(ctx, op, d.t.rc.fileURL(path), 1, props...)
	if err != nil {
		return nil, err
	}
	return decode(op, r.body, func(resp davxml.Response) (Entry, bool) {
		name, _ := resp.Get(davxml.DisplayName)
		if name == "" || name == "/" {
			return Entry{}, false
		}
		rel := d.resolver.Normalize(resp.Href)
		if same(rel, path) {
			return Entry{}, false
		}
		e := Entry{
			Name:  name,
			Path:  strings.TrimSuffix(rel, "/"),
			IsDir: resp.Contains(davxml.ResourceType, davxml.Collection),
		}
		if v, ok := resp.Get(davxml.ContentLength); ok {
			e.Size, _ = strconv.ParseInt(v, 10, 64)
		}
		if v, ok := resp.Get(davxml.LastModified); ok {
			e.Modified, _ = http.ParseTime(v)
		}
		return e, true
	})
}

// ResolveFileID looks up the file id of path.
func (d *Directory) ResolveFileID(ctx context.Context, path string) (FileID, error) {
	const op = "resolve file id"
	path, err := d.resolver.Resolve(path)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	r, err := d.t.propfind(ctx, op, d.t.rc.fileURL(path), 0, davxml.FileID)
	if err != nil {
		return "", err
	}
	ids, err := decode(op, r.body, func(resp davxml.Response) (FileID, bool) {
		id, ok := resp.Get(davxml.FileID)
		return FileID(id), ok && id != ""
	})
	if err != nil {
		return "", err
	}
	if len(ids) == 0 {
		return "", &NotFoundError{What: "file id", Key: path}
	}
	return ids[0], nil
}

// Rename moves oldPath to newPath. An existing destination is never
// overwritten and yields *ConflictError.
func (d *Directory) Rename(ctx context.Context, oldPath, newPath string) error {
	const op = "rename"
	oldPath, err := d.resolver.Resolve(oldPath)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	newPath, err = d.resolver.Resolve(newPath)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	r, err := d.t.do(ctx, request{
		op:     op,
		method: "MOVE",
		url:    d.t.rc.fileURL(oldPath),
		header: http.Header{
			"Destination": {d.t.rc.fileURL(newPath)},
			"Overwrite":   {"F"},
		},
	})
	if err != nil {
		return err
	}
	switch r.status {
	case http.StatusCreated, http.StatusNoContent:
		return nil
	case http.StatusPreconditionFailed:
		return &ConflictError{Op: op, Path: newPath, Status: r.status}
	default:
		return newRemoteError(op, r)
	}
}

// Read returns at most limit bytes of the file at path. A limit <= 0 uses
// the client's body cap and fails when the file is larger.
func (d *Directory) Read(ctx context.Context, path string, limit int64) ([]byte, error) {
	const op = "read"
	path, err := d.resolver.Resolve(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	r, err := d.t.do(ctx, request{
		op:     op,
		method: http.MethodGet,
		url:    d.t.rc.fileURL(path),
		limit:  limit,
	})
	if err != nil {
		return nil, err
	}
	if r.status != http.StatusOK {
		return nil, newRemoteError(op, r)
	}
	return r.body, nil
}
