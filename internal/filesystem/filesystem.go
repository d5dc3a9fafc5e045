// in: internal/filesystem/filesystem.go
package filesystem

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// WritableFile is the destination handle the filter writes into.
type WritableFile interface {
	io.WriteCloser
	Name() string
}

// Filesystem is the set of file operations purelog performs. Tests substitute
// a mock to simulate missing files, permission errors and full disks.
type Filesystem interface {
	Stat(name string) (fs.FileInfo, error)
	Abs(path string) (string, error)
	Open(name string) (io.ReadCloser, error)
	Create(name string) (WritableFile, error)
	CreateTemp(dir, pattern string) (WritableFile, error)
	Rename(oldpath, newpath string) error
	Remove(name string) error
	Chmod(name string, mode fs.FileMode) error
}

// DefaultFS implements the Filesystem interface using the standard `os` and `filepath` packages.
// It represents the real, underlying filesystem of the host operating system.
type DefaultFS struct{}

func (DefaultFS) Stat(name string) (fs.FileInfo, error) {
	return os.Stat(name)
}

func (DefaultFS) Abs(path string) (string, error) {
	return filepath.Abs(path)
}

func (DefaultFS) Open(name string) (io.ReadCloser, error) {
	return os.Open(name)
}

func (DefaultFS) Create(name string) (WritableFile, error) {
	return os.Create(name)
}

func (DefaultFS) CreateTemp(dir, pattern string) (WritableFile, error) {
	return os.CreateTemp(dir, pattern)
}

func (DefaultFS) Rename(oldpath, newpath string) error {
	return os.Rename(oldpath, newpath)
}

func (DefaultFS) Remove(name string) error {
	return os.Remove(name)
}

func (DefaultFS) Chmod(name string, mode fs.FileMode) error {
	return os.Chmod(name, mode)
}

// SameFile reports whether a and b resolve to the same file. Paths that do not
// exist yet are compared by their absolute form only.
func SameFile(fsys Filesystem, a, b string) (bool, error) {
	absA, err := fsys.Abs(a)
	if err != nil {
		return false, err
	}
	absB, err := fsys.Abs(b)
	if err != nil {
		return false, err
	}
	if absA == absB {
		return true, nil
	}
	infoA, errA := fsys.Stat(absA)
	infoB, errB := fsys.Stat(absB)
	if errA != nil || errB != nil {
		return false, nil
	}
	return os.SameFile(infoA, infoB), nil
}
