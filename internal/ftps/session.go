// Package ftps manages the authenticated FTPS session and its file
// transfer primitives.
package ftps

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/textproto"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/jlaffaye/ftp"

	"github.com/kestrelbio/boxsync/internal/ports"
)

const (
	// DefaultPort is the control port of an explicit-TLS FTP endpoint.
	DefaultPort = 21

	// DefaultTimeout bounds the dial and the per-command waits.
	DefaultTimeout = 30 * time.Second
)

// ErrNotConnected is returned by session operations before a successful
// Connect, or after Close.
var ErrNotConnected = errors.New("ftps: session not connected")

// Options configure a session. Host and the credentials are write-once;
// reconnecting reuses them.
type Options struct {
	Host     string
	Port     int // defaults to DefaultPort
	User     string
	Password string

	Timeout time.Duration // defaults to DefaultTimeout

	// InsecureSkipVerify disables TLS certificate verification.
	InsecureSkipVerify bool

	// DisableTLS dials plain FTP. Intended for test servers only; Box's
	// gateway requires TLS.
	DisableTLS bool
}

// Session owns one authenticated connection to the remote server. Connect
// replaces the live connection handle; the credentials never change after
// construction. A session serves exactly one caller at a time.
type Session struct {
	opts Options

	mu   sync.Mutex
	conn *ftp.ServerConn
}

// NewSession creates a session without connecting. Call Connect before any
// remote operation.
func NewSession(opts Options) *Session {
	if opts.Port == 0 {
		opts.Port = DefaultPort
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Session{opts: opts}
}

// Addr returns the host:port the session dials.
func (s *Session) Addr() string {
	return net.JoinHostPort(s.opts.Host, strconv.Itoa(s.opts.Port))
}

// Connect establishes or re-establishes the authenticated connection.
// An existing connection is quit first; its close error is ignored in
// favor of the fresh dial.
func (s *Session) Connect(ctx context.Context) error {
	dialOptions := []ftp.DialOption{
		ftp.DialWithContext(ctx),
		ftp.DialWithTimeout(s.opts.Timeout),
	}
	if !s.opts.DisableTLS {
		dialOptions = append(dialOptions, ftp.DialWithExplicitTLS(&tls.Config{
			ServerName:         s.opts.Host,
			InsecureSkipVerify: s.opts.InsecureSkipVerify,
		}))
	}

	conn, err := ftp.Dial(s.Addr(), dialOptions...)
	if err != nil {
		return fmt.Errorf("dial %s: %w", s.Addr(), err)
	}
	if err := conn.Login(s.opts.User, s.opts.Password); err != nil {
		conn.Quit()
		return fmt.Errorf("login as %s: %w", s.opts.User, err)
	}

	s.mu.Lock()
	old := s.conn
	s.conn = conn
	s.mu.Unlock()

	if old != nil {
		old.Quit()
	}
	return nil
}

// Close quits the connection. The session can be reconnected afterwards.
func (s *Session) Close() error {
	s.mu.Lock()
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()

	if conn == nil {
		return nil
	}
	return conn.Quit()
}

// IsConnected reports whether the session holds a live connection handle.
func (s *Session) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil
}

func (s *Session) live() (*ftp.ServerConn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil, ErrNotConnected
	}
	return s.conn, nil
}

// List returns the entries of a remote directory in listing order, each
// tagged with its kind.
func (s *Session) List(dir string) ([]ports.RemoteEntry, error) {
	conn, err := s.live()
	if err != nil {
		return nil, err
	}

	raw, err := conn.List(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}

	entries := make([]ports.RemoteEntry, 0, len(raw))
	for _, e := range raw {
		if e.Name == "." || e.Name == ".." {
			continue
		}
		entries = append(entries, ports.RemoteEntry{
			Name: e.Name,
			Kind: kindOf(e.Type),
		})
	}
	return entries, nil
}

// Stat classifies a single remote path. A nonexistent path is KindMissing
// with a nil error.
func (s *Session) Stat(path string) (ports.EntryKind, error) {
	conn, err := s.live()
	if err != nil {
		return ports.KindMissing, err
	}

	entry, err := conn.GetEntry(path)
	if err != nil {
		if isNotFound(err) {
			return ports.KindMissing, nil
		}
		return ports.KindMissing, fmt.Errorf("stat %s: %w", path, err)
	}
	return kindOf(entry.Type), nil
}

// Retrieve downloads a remote file in binary mode, replacing any existing
// local file. Overwrite policy belongs to the caller.
func (s *Session) Retrieve(remotePath, localPath string) error {
	conn, err := s.live()
	if err != nil {
		return err
	}

	resp, err := conn.Retr(remotePath)
	if err != nil {
		return fmt.Errorf("retr %s: %w", remotePath, err)
	}
	defer resp.Close()

	f, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", localPath, err)
	}

	if _, err := io.Copy(f, resp); err != nil {
		f.Close()
		return fmt.Errorf("download %s: %w", remotePath, err)
	}
	return f.Close()
}

// Store uploads a local file in binary mode, replacing any existing remote
// file. Overwrite policy belongs to the caller.
func (s *Session) Store(localPath, remotePath string) error {
	conn, err := s.live()
	if err != nil {
		return err
	}

	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", localPath, err)
	}
	defer f.Close()

	if err := conn.Stor(remotePath, f); err != nil {
		return fmt.Errorf("stor %s: %w", remotePath, err)
	}
	return nil
}

// EnsureDir changes into dir, creating it first if the change fails, then
// restores the prior working directory. Only the final path component is
// created; parents must already exist.
func (s *Session) EnsureDir(dir string) error {
	conn, err := s.live()
	if err != nil {
		return err
	}

	prev, err := conn.CurrentDir()
	if err != nil {
		return fmt.Errorf("current dir: %w", err)
	}

	if err := conn.ChangeDir(dir); err != nil {
		if err := conn.MakeDir(dir); err != nil {
			return fmt.Errorf("make dir %s: %w", dir, err)
		}
		return nil
	}

	if err := conn.ChangeDir(prev); err != nil {
		return fmt.Errorf("restore dir %s: %w", prev, err)
	}
	return nil
}

// kindOf maps a protocol entry type onto the ports taxonomy. Links and
// anything else the protocol reports beyond file/folder are unsupported.
func kindOf(t ftp.EntryType) ports.EntryKind {
	switch t {
	case ftp.EntryTypeFile:
		return ports.KindFile
	case ftp.EntryTypeFolder:
		return ports.KindDir
	default:
		return ports.KindUnsupported
	}
}

// isNotFound reports whether err is the server telling us the path does
// not exist (550 "file unavailable").
func isNotFound(err error) bool {
	var proto *textproto.Error
	return errors.As(err, &proto) && proto.Code == ftp.StatusFileUnavailable
}

// Ensure Session implements ports.Remote.
var _ ports.Remote = (*Session)(nil)
