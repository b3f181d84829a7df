// Package notes manages the journal entry files: markdown documents in a
// single directory, with a small sqlite index beside them that records
// creation times and titles. The index exists because file metadata is not a
// reliable creation record (copies and migrations rewrite it); the listing
// order comes from the index, the content always from the files.
package notes

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// Ext is the entry file extension.
const Ext = ".md"

const (
	fileMode = 0600
	dirMode  = 0700
)

// ErrEmptyTitle indicates a create with no usable title.
var ErrEmptyTitle = errors.New("notes: entry title is empty")

// Entry is one journal entry as presented in the list.
type Entry struct {
	Title   string
	Path    string
	Created time.Time
}

// Store manages entries under one directory.
type Store struct {
	Dir string

	idx *index
}

// Open creates the entries directory if needed and opens the index.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return nil, fmt.Errorf("notes: failed to create entries directory: %w", err)
	}
	idx, err := openIndex(filepath.Join(dir, indexFileName))
	if err != nil {
		return nil, err
	}
	return &Store{Dir: dir, idx: idx}, nil
}

// Close releases the index.
func (s *Store) Close() error { return s.idx.close() }

// List returns all entries, newest first. The index is reconciled against the
// directory on every call: files that appeared out of band are adopted, rows
// for deleted files are dropped.
func (s *Store) List() ([]Entry, error) {
	files, err := s.scanFiles()
	if err != nil {
		return nil, err
	}
	if err := s.idx.reconcile(files, func(name string) (string, error) {
		return readTitle(filepath.Join(s.Dir, name))
	}); err != nil {
		return nil, err
	}

	rows, err := s.idx.list()
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, Entry{
			Title:   r.title,
			Path:    filepath.Join(s.Dir, r.filename),
			Created: r.created,
		})
	}
	return entries, nil
}

// Create writes a new entry skeleton ("# Title" plus a blank line) and
// records it in the index. The title is normalized to NFC so filenames are
// stable regardless of how the terminal composed the input.
func (s *Store) Create(title string) (string, error) {
	title = strings.TrimSpace(norm.NFC.String(title))
	if title == "" {
		return "", ErrEmptyTitle
	}

	now := time.Now()
	name := fmt.Sprintf("%s_%s%s", now.Format("20060102_150405"),
		strings.ReplaceAll(title, " ", "_"), Ext)
	path := filepath.Join(s.Dir, name)

	content := fmt.Sprintf("# %s\n\n", title)
	if err := os.WriteFile(path, []byte(content), fileMode); err != nil {
		return "", fmt.Errorf("notes: failed to write entry: %w", err)
	}
	if err := s.idx.insert(name, title, now); err != nil {
		return "", err
	}
	return path, nil
}

// Refresh re-reads the title of an entry after outside edits.
func (s *Store) Refresh(path string) error {
	title, err := readTitle(path)
	if err != nil {
		return err
	}
	return s.idx.updateTitle(filepath.Base(path), title)
}

func (s *Store) scanFiles() ([]string, error) {
	dirEntries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, fmt.Errorf("notes: failed to read entries directory: %w", err)
	}
	var files []string
	for _, e := range dirEntries {
		if e.IsDir() || filepath.Ext(e.Name()) != Ext {
			continue
		}
		files = append(files, e.Name())
	}
	return files, nil
}

// readTitle extracts the first markdown heading, falling back to the file
// stem.
func readTitle(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("notes: failed to read entry: %w", err)
	}
	for _, line := range strings.Split(string(content), "\n") {
		if title, ok := strings.CutPrefix(line, "# "); ok {
			return strings.TrimSpace(title), nil
		}
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, Ext), nil
}
