// Package fakefs provides an in-memory FileSystem implementation for testing.
package fakefs

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// FS is an in-memory filesystem for testing. Paths are cleaned on entry;
// use absolute slash paths in tests for predictable results.
type FS struct {
	mu    sync.RWMutex
	files map[string]*fakeFile
	dirs  map[string]bool
}

type fakeFile struct {
	data    []byte
	mode    fs.FileMode
	modTime time.Time
}

// New creates a new in-memory filesystem containing only the root.
func New() *FS {
	return &FS{
		files: make(map[string]*fakeFile),
		dirs:  map[string]bool{"/": true},
	}
}

// WriteFile stores a file, creating parent directories. Test setup helper;
// not part of the FileSystem port.
func (f *FS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	name = filepath.Clean(name)
	f.mkdirAllLocked(filepath.Dir(name))

	f.files[name] = &fakeFile{
		data:    append([]byte(nil), data...),
		mode:    perm,
		modTime: time.Now(),
	}
	return nil
}

// ReadFile reads the named file and returns its contents.
func (f *FS) ReadFile(name string) ([]byte, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	name = filepath.Clean(name)
	file, ok := f.files[name]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	return append([]byte(nil), file.data...), nil
}

// Stat returns file info for the named file.
func (f *FS) Stat(name string) (fs.FileInfo, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	name = filepath.Clean(name)
	if f.dirs[name] {
		return &fakeFileInfo{name: filepath.Base(name), mode: fs.ModeDir | 0o755, isDir: true}, nil
	}
	if file, ok := f.files[name]; ok {
		return &fakeFileInfo{
			name:    filepath.Base(name),
			size:    int64(len(file.data)),
			mode:    file.mode,
			modTime: file.modTime,
		}, nil
	}
	return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrNotExist}
}

// MkdirAll creates a directory and all parent directories.
func (f *FS) MkdirAll(path string, perm fs.FileMode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mkdirAllLocked(path)
	return nil
}

// ReadDir reads the named directory and returns its entries sorted by
// filename.
func (f *FS) ReadDir(name string) ([]fs.DirEntry, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	name = filepath.Clean(name)
	if !f.dirs[name] {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: fs.ErrNotExist}
	}

	var entries []fs.DirEntry
	for p := range f.dirs {
		if p != "/" && filepath.Dir(p) == name {
			entries = append(entries, &fakeDirEntry{name: filepath.Base(p), isDir: true})
		}
	}
	for p, file := range f.files {
		if filepath.Dir(p) == name {
			entries = append(entries, &fakeDirEntry{name: filepath.Base(p), mode: file.mode})
		}
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	return entries, nil
}

// mkdirAllLocked creates directories (must be called with lock held).
func (f *FS) mkdirAllLocked(path string) {
	path = filepath.Clean(path)
	current := ""
	for _, part := range strings.Split(path, string(filepath.Separator)) {
		if part == "" {
			current = "/"
			continue
		}
		if current == "/" || current == "" {
			current = "/" + part
		} else {
			current = current + "/" + part
		}
		f.dirs[current] = true
	}
}

type fakeFileInfo struct {
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
	isDir   bool
}

func (i *fakeFileInfo) Name() string       { return i.name }
func (i *fakeFileInfo) Size() int64        { return i.size }
func (i *fakeFileInfo) Mode() fs.FileMode  { return i.mode }
func (i *fakeFileInfo) ModTime() time.Time { return i.modTime }
func (i *fakeFileInfo) IsDir() bool        { return i.isDir }
func (i *fakeFileInfo) Sys() any           { return nil }

type fakeDirEntry struct {
	name  string
	mode  fs.FileMode
	isDir bool
}

func (e *fakeDirEntry) Name() string { return e.name }
func (e *fakeDirEntry) IsDir() bool  { return e.isDir }
func (e *fakeDirEntry) Type() fs.FileMode {
	if e.isDir {
		return fs.ModeDir
	}
	return e.mode.Type()
}
func (e *fakeDirEntry) Info() (fs.FileInfo, error) {
	return &fakeFileInfo{name: e.name, mode: e.mode, isDir: e.isDir}, nil
}
