// Package fsstore implements the filesystem primitives the routing engine
// consumes on top of spf13/afero.
//
// NewOsStore targets the real disk and, on Linux, moves files with
// renameat2(RENAME_NOREPLACE) so an existing destination is never replaced
// even by a concurrent writer outside the process. NewStore wraps any afero
// filesystem, such as afero.NewMemMapFs in tests, and falls back to a
// check-then-rename that is only safe under the execution lock.
package fsstore

import (
	"io/fs"
	"os"

	"github.com/spf13/afero"
)

// Store adapts an afero.Fs to the routing filesystem contract.
type Store struct {
	fs     afero.Fs
	rename func(oldpath, newpath string) error
}

// NewStore wraps fsys. Renames use check-then-rename.
func NewStore(fsys afero.Fs) *Store {
	s := &Store{fs: fsys}
	s.rename = s.checkThenRename
	return s
}

// NewOsStore returns a Store backed by the operating system filesystem.
func NewOsStore() *Store {
	s := &Store{fs: afero.NewOsFs()}
	s.rename = func(oldpath, newpath string) error {
		return renameNoReplace(oldpath, newpath, s.checkThenRename)
	}
	return s
}

// Fs exposes the underlying afero filesystem.
func (s *Store) Fs() afero.Fs {
	return s.fs
}

// ReadDir returns the entries of dir sorted by name.
func (s *Store) ReadDir(dir string) ([]fs.FileInfo, error) {
	return afero.ReadDir(s.fs, dir)
}

func (s *Store) Stat(name string) (fs.FileInfo, error) {
	return s.fs.Stat(name)
}

func (s *Store) MkdirAll(path string, perm fs.FileMode) error {
	return s.fs.MkdirAll(path, perm)
}

// RenameNoReplace moves oldpath to newpath. If newpath exists it fails with
// an error matching fs.ErrExist and changes nothing.
func (s *Store) RenameNoReplace(oldpath, newpath string) error {
	return s.rename(oldpath, newpath)
}

func (s *Store) checkThenRename(oldpath, newpath string) error {
	if _, err := s.fs.Stat(newpath); err == nil {
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: fs.ErrExist}
	} else if !os.IsNotExist(err) {
		return err
	}
	return s.fs.Rename(oldpath, newpath)
}
