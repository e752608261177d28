//go:build !linux

package fsstore

func renameNoReplace(oldpath, newpath string, fallback func(string, string) error) error {
	return fallback(oldpath, newpath)
}
