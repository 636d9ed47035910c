// Package cache implements quackc's optional compile memoization layer, a
// SQLite-backed (modernc.org/sqlite) store keyed by source identity,
// modeled on the teacher's ext.Cache (internal/ext/cache.go) — a
// content-hash-keyed on-disk cache for a build artifact — adapted from a
// single host-binary blob to one row per emitted class per source file.
package cache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS entries (
  key        TEXT PRIMARY KEY,
  class_name TEXT NOT NULL,
  asm        TEXT NOT NULL,
  created_at TEXT NOT NULL
);
`

// Cache wraps the compile_cache.db SQLite file inside a directory.
type Cache struct {
	db *sql.DB
}

// Open creates dir if absent and opens (creating if absent)
// dir/compile_cache.db.
func Open(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cache: creating %s: %w", dir, err)
	}
	db, err := sql.Open("sqlite", filepath.Join(dir, "compile_cache.db"))
	if err != nil {
		return nil, fmt.Errorf("cache: opening db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: creating schema: %w", err)
	}
	return &Cache{db: db}, nil
}

func (c *Cache) Close() error { return c.db.Close() }

// Key derives the content-addressed cache key for a source file: its
// path and a SHA-256 of its contents, so an edited-then-reverted file
// still hits the cache (the hash matches again) rather than missing on
// mtime/size alone. The caller already has the full content in hand by
// the time it calls Key, so there's no stat-before-read short-circuit to
// gain by folding mtime/size in here too — doing so would only make an
// untouched-but-touched (mtime bumped, content unchanged) file miss.
func Key(path string, content []byte) string {
	sum := sha256.Sum256(content)
	raw := fmt.Sprintf("%s|%s", path, hex.EncodeToString(sum[:]))
	digest := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(digest[:])
}

// Entry is one cached class's emitted assembly.
type Entry struct {
	ClassName string
	ASM       []string
}

// Lookup returns every cached class for key, or ok=false on a full miss
// (any class missing counts as a miss — the whole source file's output is
// cached as one unit, not per class).
func (c *Cache) Lookup(key string, classNames []string) (map[string][]string, bool) {
	out := map[string][]string{}
	for _, name := range classNames {
		row := c.db.QueryRow(`SELECT asm FROM entries WHERE key = ?`, key+":"+name)
		var asm string
		if err := row.Scan(&asm); err != nil {
			return nil, false
		}
		out[name] = splitLines(asm)
	}
	return out, true
}

// Store writes one cache row per class in asm, all sharing key.
func (c *Cache) Store(key string, asm map[string][]string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	for name, lines := range asm {
		text := joinLines(lines)
		_, err := c.db.Exec(
			`INSERT OR REPLACE INTO entries (key, class_name, asm, created_at) VALUES (?, ?, ?, ?)`,
			key+":"+name, name, text, now,
		)
		if err != nil {
			return fmt.Errorf("cache: storing %s: %w", name, err)
		}
	}
	return nil
}

// Stat summarizes the cache's contents for `quackc cache stat`.
type Stat struct {
	Entries int
	Bytes   int64
	Oldest  time.Time
	Newest  time.Time
}

func (c *Cache) Stat() (Stat, error) {
	var st Stat
	row := c.db.QueryRow(`SELECT COUNT(*), COALESCE(SUM(LENGTH(asm)), 0) FROM entries`)
	if err := row.Scan(&st.Entries, &st.Bytes); err != nil {
		return st, err
	}
	var oldest, newest sql.NullString
	row = c.db.QueryRow(`SELECT MIN(created_at), MAX(created_at) FROM entries`)
	if err := row.Scan(&oldest, &newest); err != nil {
		return st, err
	}
	if oldest.Valid {
		st.Oldest, _ = time.Parse(time.RFC3339, oldest.String)
	}
	if newest.Valid {
		st.Newest, _ = time.Parse(time.RFC3339, newest.String)
	}
	return st, nil
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}

func joinLines(lines []string) string {
	out := ""
	for i, l := range lines {
		if i > 0 {
			out += "\n"
		}
		out += l
	}
	return out
}
