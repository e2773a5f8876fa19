// log_storage.go persists audit entries in SQLite.
//
// Write errors are reported on stderr and otherwise ignored: a rename that
// succeeded on the server must not fail because the audit row could not be
// stored. The server column holds a hash of the server root URL so entries
// from several servers can be told apart.

package log

import (
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/crypto/blake2b"
	_ "modernc.org/sqlite"
)

// Logger writes audit entries to a SQLite database.
type Logger struct {
	db     *sql.DB
	server string
}

func (l *Logger) log(e Entry) {
	var detail *string
	if len(e.Detail) > 0 {
		if b, err := json.Marshal(e.Detail); err == nil {
			s := string(b)
			detail = &s
		}
	}

	success := 0
	if e.Success {
		success = 1
	}

	_, err := l.db.Exec(`
		INSERT INTO audit (start, end, server, source, user, action, path, target,
		                   success, error, detail)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Start, e.End, l.server, e.Source, nilIfEmpty(e.User), e.Action,
		nilIfEmpty(e.Path), nilIfEmpty(e.Target),
		success, nilIfEmpty(e.Error), detail,
	)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "nextcloud-mcp: audit log write failed: %v\n", err)
	}
}

func (l *Logger) recent(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := l.db.Query(`
		SELECT start, end, source, user, action, path, target, success, error, detail
		FROM audit ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying audit log: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e                                  Entry
			user, path, target, errMsg, detail sql.NullString
			success                            int
		)
		if err := rows.Scan(&e.Start, &e.End, &e.Source, &user, &e.Action, &path, &target, &success, &errMsg, &detail); err != nil {
			return nil, fmt.Errorf("reading audit log: %w", err)
		}
		e.User, e.Path, e.Target, e.Error = user.String, path.String, target.String, errMsg.String
		e.Success = success == 1
		if detail.Valid {
			_ = json.Unmarshal([]byte(detail.String), &e.Detail)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// dbPathFunc returns the database path. Tests override it.
var dbPathFunc = defaultDBPath

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".nextcloud-mcp", "log", "audit.db")
	}
	return filepath.Join(home, ".nextcloud-mcp", "log", "audit.db")
}

func dbPath() string {
	return dbPathFunc()
}

// DBPath returns the path to the audit database.
func DBPath() string {
	return dbPath()
}

// hash returns a short stable identifier for s.
func hash(s string) string {
	h, err := blake2b.New(8, nil) // 64-bit = 16 hex chars
	if err != nil {
		panic("blake2b.New failed: " + err.Error())
	}
	h.Write([]byte(s))
	return hex.EncodeToString(h.Sum(nil))
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS audit (
			id      INTEGER PRIMARY KEY AUTOINCREMENT,
			start   INTEGER NOT NULL,
			end     INTEGER NOT NULL,
			server  TEXT NOT NULL,
			source  TEXT NOT NULL,
			user    TEXT,
			action  TEXT NOT NULL,
			path    TEXT,
			target  TEXT,
			success INTEGER NOT NULL,
			error   TEXT,
			detail  TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_audit_start ON audit(start);
		CREATE INDEX IF NOT EXISTS idx_audit_server ON audit(server);
		CREATE INDEX IF NOT EXISTS idx_audit_source ON audit(source);
	`)
	return err
}

// nilIfEmpty stores empty strings as NULL.
func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
