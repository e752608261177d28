// Package reports lists the destination folders under the reports root and
// the reports routed into them.
package reports

import (
	"context"
	stderrors "errors"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"report-router/internal/common/errors"
	"report-router/internal/routing"
)

// Lister is the read side of routing.Filesystem.
type Lister interface {
	ReadDir(dir string) ([]fs.FileInfo, error)
	Stat(name string) (fs.FileInfo, error)
}

// File describes one report in a destination folder.
type File struct {
	Name       string    `json:"name"`
	Folder     string    `json:"folder"`
	SizeBytes  int64     `json:"size"`
	ModifiedAt time.Time `json:"modified"`
}

// Browser reads the reports tree. It never writes.
type Browser struct {
	fs   Lister
	root string
}

func NewBrowser(fsys Lister, reportsRoot string) *Browser {
	return &Browser{fs: fsys, root: reportsRoot}
}

// Folders returns the names of the top level folders, sorted. A missing
// reports root yields an empty list.
func (b *Browser) Folders(ctx context.Context) ([]string, error) {
	entries, err := b.readDir(ctx, b.root)
	if err != nil {
		return nil, err
	}

	folders := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() && !strings.HasPrefix(entry.Name(), ".") {
			folders = append(folders, entry.Name())
		}
	}
	sort.Strings(folders)
	return folders, nil
}

// Files lists the regular files directly inside folder, sorted by name.
// folder may be nested ("finance/monthly") but must stay below the root. A
// folder that does not exist yields an empty list.
func (b *Browser) Files(ctx context.Context, folder string) ([]File, error) {
	cleaned, err := routing.CleanFolder(folder)
	if err != nil {
		return nil, errors.ValidationError(err.Error()).WithContext("folder", folder)
	}

	entries, err := b.readDir(ctx, filepath.Join(b.root, cleaned))
	if err != nil {
		return nil, err
	}

	files := make([]File, 0, len(entries))
	for _, entry := range entries {
		if !entry.Mode().IsRegular() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		files = append(files, File{
			Name:       entry.Name(),
			Folder:     filepath.ToSlash(cleaned),
			SizeBytes:  entry.Size(),
			ModifiedAt: entry.ModTime(),
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

func (b *Browser) readDir(ctx context.Context, dir string) ([]fs.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := b.fs.Stat(dir)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, errors.IOError("failed to read reports folder", err).WithContext("dir", dir)
	}
	if !info.IsDir() {
		return nil, nil
	}

	entries, err := b.fs.ReadDir(dir)
	if err != nil {
		return nil, errors.IOError("failed to read reports folder", err).WithContext("dir", dir)
	}
	return entries, nil
}
