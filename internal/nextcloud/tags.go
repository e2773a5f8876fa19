package nextcloud

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/aitormendez/nextcloud-mcp-server/internal/davxml"
)

// Tag is a collaborative system tag.
type Tag struct {
	ID             int    `json:"id"`
	Name           string `json:"name"`
	UserVisible    bool   `json:"user_visible"`
	UserAssignable bool   `json:"user_assignable"`
}

var tagProps = []davxml.Property{
	davxml.TagID,
	davxml.TagDisplayName,
	davxml.UserVisible,
	davxml.UserAssignable,
}

// Registry manages the shared tag taxonomy and tag-file relations.
type Registry struct {
	t *transport

	// create serializes lookup-or-create within this process.
	create sync.Mutex
}

// List returns every tag known to the server.
func (r *Registry) List(ctx context.Context) ([]Tag, error) {
	const op = "list tags"
	reply, err := r.t.propfind(ctx, op, r.t.rc.systemTagsURL(), 1, tagProps...)
	if err != nil {
		return nil, err
	}
	return decode(op, reply.body, func(resp davxml.Response) (Tag, bool) {
		id, ok := childID(resp.Href, "/systemtags/")
		t, ok := tagFrom(resp, id, ok)
		return t, ok && t.Name != ""
	})
}

// FindTagID returns the id of the tag named name. The match is exact and
// case-sensitive.
func (r *Registry) FindTagID(ctx context.Context, name string) (int, bool, error) {
	tags, err := r.List(ctx)
	if err != nil {
		return 0, false, err
	}
	for _, t := range tags {
		if t.Name == name {
			return t.ID, true, nil
		}
	}
	return 0, false, nil
}

type createTagRequest struct {
	Name           string `json:"name"`
	UserVisible    bool   `json:"userVisible"`
	UserAssignable bool   `json:"userAssignable"`
	CanAssign      bool   `json:"canAssign"`
}

// CreateTag creates a visible, assignable tag and returns its id. A tag
// with the same name yields *ConflictError.
func (r *Registry) CreateTag(ctx context.Context, name string) (int, error) {
	const op = "create tag"
	if name == "" {
		return 0, errors.New("create tag: name is empty")
	}
	body, err := json.Marshal(createTagRequest{
		Name:           name,
		UserVisible:    true,
		UserAssignable: true,
		CanAssign:      true,
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	reply, err := r.t.do(ctx, request{
		op:     op,
		method: http.MethodPost,
		url:    r.t.rc.systemTagsURL(),
		header: http.Header{"Content-Type": {"application/json"}},
		body:   body,
	})
	if err != nil {
		return 0, err
	}
	switch reply.status {
	case http.StatusCreated, http.StatusNoContent:
	case http.StatusConflict:
		return 0, &ConflictError{Op: op, Path: name, Status: reply.status}
	default:
		return 0, newRemoteError(op, reply)
	}

	loc := reply.header.Get("Location")
	if loc == "" {
		loc = reply.header.Get("Content-Location")
	}
	if loc == "" {
		return 0, &ProtocolError{Op: op, Err: errors.New("missing Location and Content-Location headers")}
	}
	id, err := strconv.Atoi(lastSegment(loc))
	if err != nil {
		return 0, &ProtocolError{Op: op, Err: fmt.Errorf("location %q: %w", loc, err)}
	}
	return id, nil
}

// ResolveOrCreateTagID returns the id of the tag named name, creating the tag
// when it does not exist yet. Creation is serialized within the process and
// re-checked under the lock; a conflict from a concurrent creator elsewhere
// is resolved by looking the tag up again.
func (r *Registry) ResolveOrCreateTagID(ctx context.Context, name string) (int, error) {
	if id, ok, err := r.FindTagID(ctx, name); err != nil || ok {
		return id, err
	}

	r.create.Lock()
	defer r.create.Unlock()

	if id, ok, err := r.FindTagID(ctx, name); err != nil || ok {
		return id, err
	}

	id, err := r.CreateTag(ctx, name)
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		return id, err
	}
	id, ok, err := r.FindTagID(ctx, name)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, &NotFoundError{What: "tag", Key: name}
	}
	return id, nil
}

// Associate assigns tagID to fileID. Assigning an already assigned tag
// succeeds.
func (r *Registry) Associate(ctx context.Context, fileID FileID, tagID int) error {
	const op = "associate tag"
	reply, err := r.t.do(ctx, request{
		op:     op,
		method: http.MethodPut,
		url:    r.t.rc.relationURL(fileID, tagID),
	})
	if err != nil {
		return err
	}
	switch reply.status {
	case http.StatusCreated, http.StatusNoContent, http.StatusOK, http.StatusConflict:
		return nil
	default:
		return newRemoteError(op, reply)
	}
}

// ListForFile returns the tags assigned to fileID. Servers that omit the
// display name in relation listings leave Name empty.
func (r *Registry) ListForFile(ctx context.Context, fileID FileID) ([]Tag, error) {
	const op = "list file tags"
	reply, err := r.t.propfind(ctx, op, r.t.rc.relationsURL(fileID), 1, tagProps...)
	if err != nil {
		return nil, err
	}
	parent := "/systemtags-relations/files/" + escapePath(string(fileID)) + "/"
	return decode(op, reply.body, func(resp davxml.Response) (Tag, bool) {
		id, ok := childID(resp.Href, parent)
		return tagFrom(resp, id, ok)
	})
}

// tagFrom builds a Tag from a listing entry. The id comes from the entry's
// href and falls back to the oc:id property. Entries without an id are the
// collection itself.
func tagFrom(resp davxml.Response, hrefID int, hrefOK bool) (Tag, bool) {
	t := Tag{ID: hrefID}
	if !hrefOK {
		v, ok := resp.Get(davxml.TagID)
		if !ok {
			return Tag{}, false
		}
		id, err := strconv.Atoi(v)
		if err != nil {
			return Tag{}, false
		}
		t.ID = id
	}
	t.Name, _ = resp.Get(davxml.TagDisplayName)
	t.UserVisible = boolProp(resp, davxml.UserVisible)
	t.UserAssignable = boolProp(resp, davxml.UserAssignable)
	return t, true
}

func boolProp(resp davxml.Response, p davxml.Property) bool {
	v, _ := resp.Get(p)
	return v == "true" || v == "1"
}

// childID parses the numeric path segment directly below parent in href.
func childID(href, parent string) (int, bool) {
	i := strings.Index(href, parent)
	if i < 0 {
		return 0, false
	}
	rest := strings.Trim(href[i+len(parent):], "/")
	if rest == "" || strings.Contains(rest, "/") {
		return 0, false
	}
	id, err := strconv.Atoi(rest)
	return id, err == nil
}

func lastSegment(s string) string {
	s = strings.TrimRight(s, "/")
	if i := strings.LastIndex(s, "/"); i >= 0 {
		return s[i+1:]
	}
	return s
}
