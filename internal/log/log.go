// Package log provides the audit trail of nextcloud-mcp operations.
// Entries are stored in ~/.nextcloud-mcp/log/audit.db and record every CLI
// command and MCP tool call that touches the remote server.
//
// # Fluent API
//
//	log.Event("mcp:rename_file", "move").
//		User(rc.User).
//		Path(oldName).
//		Target(newName).
//		Write(err)
//
//	log.Event("tag:add", "tag").
//		Path(p).
//		Detail("tag", name).
//		Detail("tag_id", tagged.TagID).
//		Write(err)
//
// The source is "{extension}:{command}" for CLI commands and "mcp:{tool}"
// for MCP tools.
//
// Diagnostic output (request tracing, failures) belongs to the zap logger in
// internal/logging, not here.
package log

import (
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

var (
	global *Logger
	mu     sync.Mutex
)

// Entry represents a single audit entry.
type Entry struct {
	Source string // e.g. "files:mv", "mcp:tag_file"
	User   string // remote account the operation ran as
	Action string // verb: list, read, move, tag, propose
	Path   string // input: remote path the operation targets
	Target string // output or second operand: rename destination, tag name

	// Timing, unix milliseconds
	Start int64
	End   int64

	Success bool
	Error   string
	Detail  map[string]any
}

// Builder constructs an audit entry. Create with [Event], chain setters,
// then call [Builder.Write].
type Builder struct {
	entry Entry
}

// Event creates a builder for an operation. The start time is taken now.
func Event(source, action string) *Builder {
	return &Builder{
		entry: Entry{
			Source: source,
			Action: action,
			Start:  time.Now().UnixMilli(),
		},
	}
}

// User sets the remote account.
func (b *Builder) User(user string) *Builder {
	b.entry.User = user
	return b
}

// Path sets the remote path the operation targets.
func (b *Builder) Path(path string) *Builder {
	b.entry.Path = path
	return b
}

// Target sets the second operand, such as a rename destination.
func (b *Builder) Target(target string) *Builder {
	b.entry.Target = target
	return b
}

// Detail adds a key-value pair to the entry.
func (b *Builder) Detail(key string, value any) *Builder {
	if b.entry.Detail == nil {
		b.entry.Detail = make(map[string]any)
	}
	b.entry.Detail[key] = value
	return b
}

// Write records the entry, deriving success from err.
func (b *Builder) Write(err error) {
	b.entry.End = time.Now().UnixMilli()
	b.entry.Success = err == nil
	if err != nil {
		b.entry.Error = err.Error()
	}
	Log(b.entry)
}

// Open initialises the global logger. Safe to call multiple times.
// Callers may ignore the error; audit logging is best-effort.
func Open() error {
	mu.Lock()
	defer mu.Unlock()

	if global != nil {
		return nil
	}

	p := dbPath()
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}

	db, err := sql.Open("sqlite", p)
	if err != nil {
		return err
	}

	if err := migrate(db); err != nil {
		db.Close()
		return err
	}

	global = &Logger{db: db}
	return nil
}

// SetServer sets the server identifier for subsequent entries. rootURL is
// hashed so the database never holds the address itself.
func SetServer(rootURL string) {
	mu.Lock()
	defer mu.Unlock()
	if global != nil {
		global.server = hash(rootURL)
	}
}

// Log writes an entry. A no-op when the logger is not open.
func Log(e Entry) {
	mu.Lock()
	l := global
	mu.Unlock()

	if l == nil {
		return
	}
	l.log(e)
}

// Recent returns up to limit entries, newest first.
func Recent(limit int) ([]Entry, error) {
	mu.Lock()
	l := global
	mu.Unlock()

	if l == nil {
		return nil, nil
	}
	return l.recent(limit)
}

// Close closes the global logger.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if global != nil {
		global.db.Close()
		global = nil
	}
}
