// Package share abstracts the remote file share the swipe log and
// monthly ledger documents live on. In production the share is an
// NFS/SMB export mounted into the filesystem, so the directory
// implementation covers it; tests use a temp directory.
package share

import (
	"fmt"
	"os"
	"path/filepath"
)

// Store is byte-oriented access to a flat namespace of remote files.
type Store interface {
	Exists(name string) (bool, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte) error
	Append(name string, data []byte) error
	List() ([]string, error)
}

// Dir is a Store rooted at a mounted share directory.
type Dir struct {
	root string
}

// NewDir opens a mounted share directory, creating it if missing and
// verifying it is writable.
func NewDir(root string) (*Dir, error) {
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("create share dir %s: %w", root, err)
	}

	probe := filepath.Join(root, ".write_test")
	if err := os.WriteFile(probe, []byte("ok"), 0o640); err != nil {
		return nil, fmt.Errorf("share dir %s is not writable: %w", root, err)
	}
	os.Remove(probe)

	return &Dir{root: root}, nil
}

func (d *Dir) path(name string) string {
	return filepath.Join(d.root, filepath.Base(name))
}

func (d *Dir) Exists(name string) (bool, error) {
	_, err := os.Stat(d.path(name))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

func (d *Dir) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(d.path(name))
}

func (d *Dir) WriteFile(name string, data []byte) error {
	return os.WriteFile(d.path(name), data, 0o640)
}

func (d *Dir) Append(name string, data []byte) error {
	f, err := os.OpenFile(d.path(name), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o640)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (d *Dir) List() ([]string, error) {
	entries, err := os.ReadDir(d.root)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}
