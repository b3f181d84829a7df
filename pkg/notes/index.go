package notes

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const indexFileName = "index.db"

const indexSchema = `
CREATE TABLE IF NOT EXISTS entries (
	filename   TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_entries_created ON entries(created_at);
`

// index is the sqlite-backed entry index. It lives beside the entry files, so
// inside the encrypted volume when the vault is in use.
type index struct {
	conn *sql.DB
}

func openIndex(path string) (*index, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("notes: failed to open index: %w", err)
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("notes: failed setting %s: %w", pragma, err)
		}
	}
	if _, err := conn.Exec(indexSchema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("notes: failed to create index schema: %w", err)
	}
	return &index{conn: conn}, nil
}

func (i *index) close() error { return i.conn.Close() }

type indexRow struct {
	filename string
	title    string
	created  time.Time
}

func (i *index) insert(filename, title string, created time.Time) error {
	_, err := i.conn.Exec(
		`INSERT OR REPLACE INTO entries (filename, title, created_at) VALUES (?, ?, ?)`,
		filename, title, created.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("notes: failed to index entry: %w", err)
	}
	return nil
}

func (i *index) updateTitle(filename, title string) error {
	_, err := i.conn.Exec(`UPDATE entries SET title = ? WHERE filename = ?`, title, filename)
	if err != nil {
		return fmt.Errorf("notes: failed to update index: %w", err)
	}
	return nil
}

// reconcile makes the index agree with the set of files on disk. Unknown
// files are adopted with their current title and an indexed-at creation time;
// rows whose file is gone are removed.
func (i *index) reconcile(files []string, title func(string) (string, error)) error {
	known := make(map[string]bool)
	rows, err := i.conn.Query(`SELECT filename FROM entries`)
	if err != nil {
		return fmt.Errorf("notes: failed to read index: %w", err)
	}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return fmt.Errorf("notes: failed to scan index row: %w", err)
		}
		known[name] = true
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("notes: index scan failed: %w", err)
	}
	rows.Close()

	onDisk := make(map[string]bool, len(files))
	for _, f := range files {
		onDisk[f] = true
		if known[f] {
			continue
		}
		t, err := title(f)
		if err != nil {
			return err
		}
		if err := i.insert(f, t, time.Now()); err != nil {
			return err
		}
	}

	for name := range known {
		if onDisk[name] {
			continue
		}
		if _, err := i.conn.Exec(`DELETE FROM entries WHERE filename = ?`, name); err != nil {
			return fmt.Errorf("notes: failed to prune index: %w", err)
		}
	}
	return nil
}

func (i *index) list() ([]indexRow, error) {
	rows, err := i.conn.Query(`SELECT filename, title, created_at FROM entries ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("notes: failed to list index: %w", err)
	}
	defer rows.Close()

	var out []indexRow
	for rows.Next() {
		var r indexRow
		var created string
		if err := rows.Scan(&r.filename, &r.title, &created); err != nil {
			return nil, fmt.Errorf("notes: failed to scan index row: %w", err)
		}
		ts, err := time.Parse(time.RFC3339Nano, created)
		if err != nil {
			return nil, fmt.Errorf("notes: corrupt created_at %q: %w", created, err)
		}
		r.created = ts
		out = append(out, r)
	}
	return out, rows.Err()
}
