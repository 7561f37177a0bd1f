// Package jsonfile persists the loan collection as a single JSON
// document with a backup sibling, advisory file locks, and atomic
// replace-on-save.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"loan-tracker/internal/domain/loan"
)

const lockRetryDelay = 25 * time.Millisecond

type Store struct {
	path string
	fl   *flock.Flock
}

// New builds a store handle for the given document path. Nothing is
// touched on disk until the first load or save.
func New(path string) *Store {
	return &Store{path: path, fl: flock.New(path + ".lock")}
}

func (s *Store) backupPath() string { return s.path + ".bak" }

// LoadAll reads the full collection under a shared lock. A missing
// file is an empty collection; an unreadable or corrupt file degrades
// through the backup to an empty collection. It never fails.
func (s *Store) LoadAll(ctx context.Context) *loan.Collection {
	if _, err := s.fl.TryRLockContext(ctx, lockRetryDelay); err != nil {
		log.Printf("jsonfile: read lock %s: %v", s.path, err)
		return loan.NewCollection()
	}
	defer s.fl.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return loan.NewCollection()
	}
	if err != nil {
		log.Printf("jsonfile: read %s: %v", s.path, err)
		return loan.NewCollection()
	}

	c, err := decode(data)
	if err == nil {
		return c
	}
	log.Printf("jsonfile: %s is corrupted (%v), attempting backup recovery", s.path, err)

	data, berr := os.ReadFile(s.backupPath())
	if berr == nil {
		if c, err = decode(data); err == nil {
			log.Printf("jsonfile: recovered from %s", s.backupPath())
			return c
		}
		log.Printf("jsonfile: backup also corrupted: %v", err)
	} else if !errors.Is(berr, fs.ErrNotExist) {
		log.Printf("jsonfile: read backup %s: %v", s.backupPath(), berr)
	}
	return loan.NewCollection()
}

// SaveAll replaces the persisted document: back up the current file,
// write the new collection to a temp file in the same directory, then
// rename it over the destination. The write happens under an exclusive
// lock; the on-disk revision is checked under that lock, so a
// collection loaded before a concurrent save fails with ErrConflict
// instead of silently dropping the other writer's changes.
func (s *Store) SaveAll(ctx context.Context, c *loan.Collection) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	if _, err := s.fl.TryLockContext(ctx, lockRetryDelay); err != nil {
		return fmt.Errorf("lock %s: %w", s.path, err)
	}
	defer s.fl.Unlock()

	if rev, ok := s.diskRevision(); ok && rev != c.Revision {
		return fmt.Errorf("on-disk revision %d, have %d: %w", rev, c.Revision, loan.ErrConflict)
	}

	// Best effort: keep the previous generation around for recovery.
	if _, err := os.Stat(s.path); err == nil {
		if err := copyFile(s.path, s.backupPath()); err != nil {
			log.Printf("jsonfile: failed to create backup: %v", err)
		}
	}

	next := loan.Collection{Revision: c.Revision + 1, Loans: c.Loans}
	payload, err := json.MarshalIndent(&next, "", "  ")
	if err != nil {
		return fmt.Errorf("encode collection: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "loans-*.json.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if err := writeAndClose(tmp, payload); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	c.Revision = next.Revision
	return nil
}

// diskRevision reads the currently persisted revision. ok is false
// when there is no readable document to conflict with.
func (s *Store) diskRevision() (uint64, bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return 0, false
	}
	c, err := decode(data)
	if err != nil {
		return 0, false
	}
	return c.Revision, true
}

// decode accepts the revisioned envelope, or a legacy document keyed
// directly by loan id (loaded as revision 0).
func decode(data []byte) (*loan.Collection, error) {
	var c loan.Collection
	if err := json.Unmarshal(data, &c); err == nil && c.Loans != nil {
		return &c, nil
	}
	var legacy map[string]*loan.Loan
	if err := json.Unmarshal(data, &legacy); err != nil {
		return nil, err
	}
	if legacy == nil {
		legacy = make(map[string]*loan.Loan)
	}
	return &loan.Collection{Loans: legacy}, nil
}

func writeAndClose(f *os.File, payload []byte) error {
	defer f.Close()
	if _, err := f.Write(payload); err != nil {
		return err
	}
	if err := f.Sync(); err != nil {
		return err
	}
	return f.Chmod(0o600)
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o600)
}
