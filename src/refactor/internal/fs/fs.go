package fs

import (
	"os"
	"path/filepath"

	"go.uber.org/fx"
)

// Module is the Fx module for this package.
var Module = fx.Provide(New)

const _defaultMode os.FileMode = 0644

// FS wraps the filesystem operations used by the refactor service.
type FS interface {
	ReadFile(name string) ([]byte, error)
	// WriteFileAtomic stages data into a temporary file in the target's
	// directory and atomically renames it over the target. The target's
	// existing permission bits are preserved.
	WriteFileAtomic(name string, data []byte) error
	FileExists(path string) (bool, error)
	Stat(name string) (os.FileInfo, error)
	Remove(name string) error
}

type fsImpl struct{}

// New creates a new FS.
func New() FS {
	return fsImpl{}
}

func (fsImpl) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name)
}

func (fsImpl) WriteFileAtomic(name string, data []byte) error {
	mode := _defaultMode
	if info, err := os.Stat(name); err == nil {
		mode = info.Mode().Perm()
	}

	dir, base := filepath.Split(name)
	tmp, err := os.CreateTemp(dir, "."+base+".staged-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	if err := os.Rename(tmpName, name); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

func (fsImpl) FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return !info.IsDir(), nil
}

func (fsImpl) Stat(name string) (os.FileInfo, error) {
	return os.Stat(name)
}

func (fsImpl) Remove(name string) error {
	return os.Remove(name)
}
