package routing

import (
	"context"
	"sort"
	"strings"

	"report-router/internal/common/errors"
)

// Scanner lists the files waiting in the incoming directory.
type Scanner struct {
	fs          Filesystem
	incomingDir string
}

// NewScanner creates a Scanner over incomingDir.
func NewScanner(fsys Filesystem, incomingDir string) *Scanner {
	return &Scanner{fs: fsys, incomingDir: incomingDir}
}

// Scan returns the regular, non-hidden files in incoming sorted by name. The
// listing is taken fresh on every call.
func (s *Scanner) Scan(ctx context.Context) ([]IncomingFileRef, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := s.fs.ReadDir(s.incomingDir)
	if err != nil {
		return nil, errors.IOError("failed to scan incoming directory", err).
			WithContext("dir", s.incomingDir)
	}

	files := make([]IncomingFileRef, 0, len(entries))
	for _, entry := range entries {
		if !entry.Mode().IsRegular() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		files = append(files, IncomingFileRef{
			Name:       entry.Name(),
			SizeBytes:  entry.Size(),
			ModifiedAt: entry.ModTime(),
		})
	}

	sort.SliceStable(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})

	return files, nil
}
