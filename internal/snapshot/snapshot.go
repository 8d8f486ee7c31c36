// Package snapshot keeps the card set of the last verified synchronization in
// a plain-text file, one zero-padded decimal card number per line.
//
// The snapshot is advisory: a run trusts it only when its size equals the
// panel's live card count.
package snapshot

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/agentstation/cardsync/pkg/cardid"
	"github.com/agentstation/cardsync/pkg/constants"
	"github.com/agentstation/cardsync/pkg/errors"
)

// Store reads and writes one snapshot file.
type Store struct {
	path string
}

// New returns a store for path, or for the default file when path is empty.
func New(path string) *Store {
	if path == "" {
		path = constants.DefaultSnapshotFile
	}
	return &Store{path: path}
}

// Path returns the snapshot file location.
func (s *Store) Path() string {
	return s.path
}

// Load returns the recorded card numbers in file order. A missing file is an
// empty snapshot.
func (s *Store) Load() ([]string, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.WrapIO("open", s.path, err)
	}
	defer func() { _ = f.Close() }()

	var cards []string
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		card, err := cardid.Canonical(text)
		if err != nil {
			return nil, &errors.ParseError{
				Format:  "snapshot",
				File:    s.path,
				Line:    line,
				Message: "invalid card number " + text,
				Err:     err,
			}
		}
		cards = append(cards, card)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.WrapIO("read", s.path, err)
	}
	return cards, nil
}

// Save replaces the snapshot with cards. The file is written next to the
// target and renamed into place.
func (s *Store) Save(cards []string) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
		return errors.WrapIO("create", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return errors.WrapIO("create", s.path, err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	w := bufio.NewWriter(tmp)
	for _, card := range cards {
		if _, err := w.WriteString(card + "\n"); err != nil {
			_ = tmp.Close()
			return errors.WrapIO("write", s.path, err)
		}
	}
	if err := w.Flush(); err != nil {
		_ = tmp.Close()
		return errors.WrapIO("write", s.path, err)
	}
	if err := tmp.Chmod(constants.FilePermissions); err != nil {
		_ = tmp.Close()
		return errors.WrapIO("chmod", s.path, err)
	}
	if err := tmp.Close(); err != nil {
		return errors.WrapIO("close", s.path, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return errors.WrapIO("rename", s.path, err)
	}
	return nil
}
