// Package nextcloudtest runs an in-process fake Nextcloud for tests.
//
// The user's files are served by golang.org/x/net/webdav over an in-memory
// file system, with oc:fileid stored as a dead property. The systemtags and
// systemtags-relations endpoints are implemented directly.
package nextcloudtest

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"golang.org/x/net/webdav"

	"github.com/aitormendez/nextcloud-mcp-server/internal/davxml"
)

// Default credentials accepted by the server.
const (
	User     = "admin"
	Password = "secret"
)

type tag struct {
	id   int
	name string
}

// Server is a fake Nextcloud instance.
type Server struct {
	*httptest.Server

	// OmitRelationNames drops oc:display-name from relation listings.
	OmitRelationNames bool
	// OmitLocation drops both location headers from tag creation replies.
	OmitLocation bool
	// ContentLocationOnly answers tag creation with a path-only
	// Content-Location header, as Nextcloud itself does.
	ContentLocationOnly bool

	fs webdav.FileSystem

	mu             sync.Mutex
	nextID         int
	tags           map[int]tag
	relations      map[string]map[int]bool
	failures       map[string]failure
	createCalls    int
	associateCalls int
}

type failure struct {
	status int
	body   string
}

// New starts a server and closes it when the test ends.
func New(t testing.TB) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := &Server{
		fs:        webdav.NewMemFS(),
		nextID:    100,
		tags:      make(map[int]tag),
		relations: make(map[string]map[int]bool),
		failures:  make(map[string]failure),
	}
	s.Server = httptest.NewServer(s.router())
	t.Cleanup(s.Close)
	return s
}

func (s *Server) router() http.Handler {
	engine := gin.New()
	engine.Use(s.authenticate, s.inject)

	dav := &webdav.Handler{
		Prefix:     s.filesPath(),
		FileSystem: s.fs,
		LockSystem: webdav.NewMemLS(),
	}

	group := engine.Group("/remote.php/dav")
	for _, method := range []string{
		"PROPFIND", "PROPPATCH", "MKCOL", "COPY", "MOVE", "LOCK", "UNLOCK",
		http.MethodGet, http.MethodHead, http.MethodPut, http.MethodDelete, http.MethodOptions,
	} {
		group.Handle(method, "/files/*all", gin.WrapH(dav))
	}
	group.Handle("PROPFIND", "/systemtags", s.listTags)
	group.POST("/systemtags", s.createTag)
	group.Handle("PROPFIND", "/systemtags-relations/files/:fileid", s.listRelations)
	group.PUT("/systemtags-relations/files/:fileid/:tagid", s.associate)
	return engine
}

func (s *Server) authenticate(c *gin.Context) {
	user, pass, ok := c.Request.BasicAuth()
	if !ok || user != User || pass != Password {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	c.Next()
}

func (s *Server) inject(c *gin.Context) {
	s.mu.Lock()
	f, ok := s.failures[c.Request.Method]
	delete(s.failures, c.Request.Method)
	s.mu.Unlock()
	if ok {
		c.String(f.status, f.body)
		c.Abort()
		return
	}
	c.Next()
}

// BaseURL is the user's files collection.
func (s *Server) BaseURL() string { return s.URL + s.filesPath() }

func (s *Server) filesPath() string { return "/remote.php/dav/files/" + User }

// FailNext makes the next request with method reply with status and body.
func (s *Server) FailNext(method string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method] = failure{status: status, body: body}
}

// AddDir creates a directory and its parents and returns its file id.
func (s *Server) AddDir(t testing.TB, name string) string {
	t.Helper()
	ctx := context.Background()
	name = clean(name)
	if err := s.mkdirAll(ctx, name); err != nil {
		t.Fatalf("nextcloudtest: mkdir %s: %v", name, err)
	}
	return s.assignID(t, name)
}

// AddFile writes a file, creating parent directories, and returns its file id.
func (s *Server) AddFile(t testing.TB, name string, content []byte) string {
	t.Helper()
	ctx := context.Background()
	name = clean(name)
	if err := s.mkdirAll(ctx, path.Dir(name)); err != nil {
		t.Fatalf("nextcloudtest: mkdir %s: %v", path.Dir(name), err)
	}
	f, err := s.fs.OpenFile(ctx, name, os.O_CREATE|os.O_RDWR|os.O_TRUNC, 0o644)
	if err != nil {
		t.Fatalf("nextcloudtest: create %s: %v", name, err)
	}
	if _, err := f.Write(content); err != nil {
		t.Fatalf("nextcloudtest: write %s: %v", name, err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("nextcloudtest: close %s: %v", name, err)
	}
	return s.assignID(t, name)
}

// Exists reports whether name exists in the file tree.
func (s *Server) Exists(name string) bool {
	_, err := s.fs.Stat(context.Background(), clean(name))
	return err == nil
}

// Content returns the bytes stored at name.
func (s *Server) Content(t testing.TB, name string) []byte {
	t.Helper()
	f, err := s.fs.OpenFile(context.Background(), clean(name), os.O_RDONLY, 0)
	if err != nil {
		t.Fatalf("nextcloudtest: open %s: %v", name, err)
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		t.Fatalf("nextcloudtest: stat %s: %v", name, err)
	}
	buf := make([]byte, fi.Size())
	if _, err := f.Read(buf); err != nil && fi.Size() > 0 {
		t.Fatalf("nextcloudtest: read %s: %v", name, err)
	}
	return buf
}

func (s *Server) mkdirAll(ctx context.Context, name string) error {
	if name == "/" || name == "." {
		return nil
	}
	if _, err := s.fs.Stat(ctx, name); err == nil {
		return nil
	}
	if err := s.mkdirAll(ctx, path.Dir(name)); err != nil {
		return err
	}
	return s.fs.Mkdir(ctx, name, 0o755)
}

func (s *Server) assignID(t testing.TB, name string) string {
	t.Helper()
	s.mu.Lock()
	s.nextID++
	id := strconv.Itoa(s.nextID)
	s.mu.Unlock()

	f, err := s.fs.OpenFile(context.Background(), name, os.O_RDONLY, 0)
	if err != nil {
		t.Fatalf("nextcloudtest: open %s: %v", name, err)
	}
	defer f.Close()
	holder, ok := f.(webdav.DeadPropsHolder)
	if !ok {
		t.Fatalf("nextcloudtest: %s does not hold dead properties", name)
	}
	_, err = holder.Patch([]webdav.Proppatch{{
		Props: []webdav.Property{{
			XMLName:  xml.Name{Space: davxml.NamespaceOwnCloud, Local: "fileid"},
			InnerXML: []byte(id),
		}},
	}})
	if err != nil {
		t.Fatalf("nextcloudtest: set fileid on %s: %v", name, err)
	}
	return id
}

// SeedTag creates a tag directly and returns its id.
func (s *Server) SeedTag(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addTagLocked(name)
}

func (s *Server) addTagLocked(name string) int {
	s.nextID++
	s.tags[s.nextID] = tag{id: s.nextID, name: name}
	return s.nextID
}

// SeedRelation assigns tagID to fileID directly.
func (s *Server) SeedRelation(fileID string, tagID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.relateLocked(fileID, tagID)
}

func (s *Server) relateLocked(fileID string, tagID int) {
	if s.relations[fileID] == nil {
		s.relations[fileID] = make(map[int]bool)
	}
	s.relations[fileID][tagID] = true
}

// TagNames returns the names of every tag.
func (s *Server) TagNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var names []string
	for _, t := range s.tags {
		names = append(names, t.name)
	}
	sort.Strings(names)
	return names
}

// Related reports whether tagID is assigned to fileID.
func (s *Server) Related(fileID string, tagID int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.relations[fileID][tagID]
}

// CreateCalls returns how many tag creation requests were received.
func (s *Server) CreateCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createCalls
}

// AssociateCalls returns how many relation PUT requests were received.
func (s *Server) AssociateCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.associateCalls
}

func (s *Server) listTags(c *gin.Context) {
	s.mu.Lock()
	responses := []davxml.Response{davxml.NewResponse("/remote.php/dav/systemtags/")}
	for _, id := range s.sortedTagIDsLocked() {
		responses = append(responses, tagResponse(fmt.Sprintf("/remote.php/dav/systemtags/%d", id), s.tags[id], true))
	}
	s.mu.Unlock()
	writeMultiStatus(c, responses)
}

type createTagBody struct {
	Name           string `json:"name"`
	UserVisible    bool   `json:"userVisible"`
	UserAssignable bool   `json:"userAssignable"`
	CanAssign      bool   `json:"canAssign"`
}

func (s *Server) createTag(c *gin.Context) {
	var body createTagBody
	if err := json.NewDecoder(c.Request.Body).Decode(&body); err != nil || body.Name == "" {
		c.String(http.StatusBadRequest, "invalid tag")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.createCalls++
	for _, t := range s.tags {
		if t.name == body.Name {
			c.String(http.StatusConflict, "Tag already exists")
			return
		}
	}
	id := s.addTagLocked(body.Name)
	switch {
	case s.OmitLocation:
	case s.ContentLocationOnly:
		c.Header("Content-Location", fmt.Sprintf("/remote.php/dav/systemtags/%d", id))
	default:
		c.Header("Location", fmt.Sprintf("%s/remote.php/dav/systemtags/%d", s.URL, id))
	}
	c.Status(http.StatusCreated)
}

func (s *Server) listRelations(c *gin.Context) {
	fileID := c.Param("fileid")
	base := "/remote.php/dav/systemtags-relations/files/" + fileID

	s.mu.Lock()
	responses := []davxml.Response{davxml.NewResponse(base + "/")}
	var ids []int
	for id := range s.relations[fileID] {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		responses = append(responses, tagResponse(fmt.Sprintf("%s/%d", base, id), s.tags[id], !s.OmitRelationNames))
	}
	s.mu.Unlock()
	writeMultiStatus(c, responses)
}

func (s *Server) associate(c *gin.Context) {
	fileID := c.Param("fileid")
	tagID, err := strconv.Atoi(c.Param("tagid"))
	if err != nil {
		c.String(http.StatusBadRequest, "invalid tag id")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.associateCalls++
	if _, ok := s.tags[tagID]; !ok {
		c.String(http.StatusNotFound, "Tag not found")
		return
	}
	if s.relations[fileID][tagID] {
		c.String(http.StatusConflict, "Tag already assigned")
		return
	}
	s.relateLocked(fileID, tagID)
	c.Status(http.StatusCreated)
}

func (s *Server) sortedTagIDsLocked() []int {
	ids := make([]int, 0, len(s.tags))
	for id := range s.tags {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func tagResponse(href string, t tag, withName bool) davxml.Response {
	r := davxml.NewResponse(href).
		Set(davxml.TagID, strconv.Itoa(t.id)).
		Set(davxml.UserVisible, "true").
		Set(davxml.UserAssignable, "true")
	if withName {
		r.Set(davxml.TagDisplayName, t.name)
	}
	return r
}

func writeMultiStatus(c *gin.Context, responses []davxml.Response) {
	body, err := davxml.EncodeMultiStatus(responses)
	if err != nil {
		c.String(http.StatusInternalServerError, err.Error())
		return
	}
	c.Data(http.StatusMultiStatus, "application/xml; charset=utf-8", body)
}

func clean(name string) string {
	return path.Clean("/" + strings.TrimPrefix(name, "/"))
}
