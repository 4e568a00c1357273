// Package fakeftp provides an in-memory Remote implementation for testing.
package fakeftp

import (
	"fmt"
	"os"
	"path"
	"sort"
	"sync"

	"github.com/kestrelbio/boxsync/internal/ports"
)

// Server is an in-memory remote filesystem implementing ports.Remote.
// Remote paths are slash-separated and rooted at "/". The local side of
// Retrieve and Store goes through the real os, mirroring the production
// session.
type Server struct {
	mu    sync.Mutex
	dirs  map[string]bool
	files map[string][]byte
	other map[string]bool // unsupported entries (symlinks etc.)
}

// New creates an empty fake server containing only the root directory.
func New() *Server {
	return &Server{
		dirs:  map[string]bool{"/": true},
		files: make(map[string][]byte),
		other: make(map[string]bool),
	}
}

// MkdirAll creates a remote directory and all parents. Test setup helper.
func (s *Server) MkdirAll(dir string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir = path.Clean("/" + dir)
	cur := "/"
	for _, part := range splitPath(dir) {
		cur = path.Join(cur, part)
		s.dirs[cur] = true
	}
}

// WriteFile stores a remote file, creating parent directories. Test setup
// helper.
func (s *Server) WriteFile(p string, data []byte) {
	p = path.Clean("/" + p)
	s.MkdirAll(path.Dir(p))

	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[p] = append([]byte(nil), data...)
}

// AddUnsupported places an entry that is neither a file nor a directory,
// such as a symlink. Test setup helper.
func (s *Server) AddUnsupported(p string) {
	p = path.Clean("/" + p)
	s.MkdirAll(path.Dir(p))

	s.mu.Lock()
	defer s.mu.Unlock()
	s.other[p] = true
}

// Data returns the stored contents of a remote file, or nil.
func (s *Server) Data(p string) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.files[path.Clean("/"+p)]
	if !ok {
		return nil
	}
	return append([]byte(nil), data...)
}

// Files returns a copy of all stored files keyed by path.
func (s *Server) Files() map[string][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string][]byte, len(s.files))
	for p, data := range s.files {
		out[p] = append([]byte(nil), data...)
	}
	return out
}

// HasDir reports whether a remote directory exists.
func (s *Server) HasDir(dir string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirs[path.Clean("/"+dir)]
}

// List returns the entries of a remote directory sorted by name.
func (s *Server) List(dir string) ([]ports.RemoteEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir = path.Clean("/" + dir)
	if !s.dirs[dir] {
		return nil, fmt.Errorf("fakeftp: no such directory: %s", dir)
	}

	var entries []ports.RemoteEntry
	for p := range s.dirs {
		if p != "/" && path.Dir(p) == dir {
			entries = append(entries, ports.RemoteEntry{Name: path.Base(p), Kind: ports.KindDir})
		}
	}
	for p := range s.files {
		if path.Dir(p) == dir {
			entries = append(entries, ports.RemoteEntry{Name: path.Base(p), Kind: ports.KindFile})
		}
	}
	for p := range s.other {
		if path.Dir(p) == dir {
			entries = append(entries, ports.RemoteEntry{Name: path.Base(p), Kind: ports.KindUnsupported})
		}
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// Stat classifies a remote path.
func (s *Server) Stat(p string) (ports.EntryKind, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p = path.Clean("/" + p)
	switch {
	case s.dirs[p]:
		return ports.KindDir, nil
	case s.other[p]:
		return ports.KindUnsupported, nil
	default:
		if _, ok := s.files[p]; ok {
			return ports.KindFile, nil
		}
		return ports.KindMissing, nil
	}
}

// Retrieve writes a remote file's contents to a local path. The local
// parent directory must already exist, as with the real session.
func (s *Server) Retrieve(remotePath, localPath string) error {
	s.mu.Lock()
	data, ok := s.files[path.Clean("/"+remotePath)]
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("fakeftp: no such file: %s", remotePath)
	}
	return os.WriteFile(localPath, data, 0o644)
}

// Store reads a local file and saves it under the remote path. The remote
// parent directory must already exist.
func (s *Server) Store(localPath, remotePath string) error {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	remotePath = path.Clean("/" + remotePath)
	if !s.dirs[path.Dir(remotePath)] {
		return fmt.Errorf("fakeftp: no such directory: %s", path.Dir(remotePath))
	}
	s.files[remotePath] = append([]byte(nil), data...)
	return nil
}

// EnsureDir creates a single directory level. The parent must exist,
// matching MKD semantics on a real server.
func (s *Server) EnsureDir(dir string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir = path.Clean("/" + dir)
	if s.dirs[dir] {
		return nil
	}
	if !s.dirs[path.Dir(dir)] {
		return fmt.Errorf("fakeftp: no such directory: %s", path.Dir(dir))
	}
	s.dirs[dir] = true
	return nil
}

func splitPath(p string) []string {
	var parts []string
	for p != "/" && p != "." {
		parts = append([]string{path.Base(p)}, parts...)
		p = path.Dir(p)
	}
	return parts
}

// Ensure Server implements ports.Remote.
var _ ports.Remote = (*Server)(nil)
