// Package boxsync mirrors directory trees between the local filesystem and
// an FTPS endpoint such as Box's FTP gateway, in both directions.
//
// A Client owns one authenticated session. The recursive copy operations
// walk one side breadth-first, map each directory onto the other side by
// substituting the root prefix, and copy files subject to the overwrite,
// dry-run and filetype policies in Options.
package boxsync

import (
	"context"
	"errors"
	"iter"
	"time"

	"github.com/kestrelbio/boxsync/internal/adapters/realfs"
	"github.com/kestrelbio/boxsync/internal/ftps"
	"github.com/kestrelbio/boxsync/internal/mirror"
	"github.com/kestrelbio/boxsync/internal/ports"
	"github.com/kestrelbio/boxsync/internal/walk"
)

// Options control how the recursive copy operations behave. The zero value
// copies everything, skips existing destination files, and logs decisions
// at debug level only.
type Options struct {
	// Overwrite replaces destination files that already exist.
	Overwrite bool

	// Verbose logs every copy and skip decision at info level.
	Verbose bool

	// DryRun performs all decision logic and logging but no mutation.
	DryRun bool

	// Filetypes restricts copying to files whose extension (the substring
	// after the last ".") is listed, case-sensitively. Empty means no
	// restriction.
	Filetypes []string

	// Exclusions are glob patterns matched against entry names; matches
	// are skipped entirely.
	Exclusions []string
}

func (o Options) mirror() mirror.Options {
	return mirror.Options{
		Overwrite:  o.Overwrite,
		Verbose:    o.Verbose,
		DryRun:     o.DryRun,
		Filetypes:  o.Filetypes,
		Exclusions: o.Exclusions,
	}
}

// Option customizes the session established by Dial.
type Option func(*ftps.Options)

// WithPort overrides the default control port (21).
func WithPort(port int) Option {
	return func(o *ftps.Options) { o.Port = port }
}

// WithTimeout overrides the default dial and command timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *ftps.Options) { o.Timeout = d }
}

// WithInsecureTLS disables TLS certificate verification.
func WithInsecureTLS() Option {
	return func(o *ftps.Options) { o.InsecureSkipVerify = true }
}

// WithoutTLS dials plain FTP. Intended for local test servers; Box's
// gateway requires TLS.
func WithoutTLS() Option {
	return func(o *ftps.Options) { o.DisableTLS = true }
}

// Client binds a mirror engine to one remote session and the local
// filesystem. A client serves one caller at a time; operations are
// sequential and a per-file failure aborts the enclosing operation.
type Client struct {
	session *ftps.Session
	remote  ports.Remote
	fs      ports.FileSystem
	engine  *mirror.Engine
}

// Dial connects and authenticates to the remote endpoint and returns a
// ready client.
func Dial(ctx context.Context, host, user, password string, opts ...Option) (*Client, error) {
	sessionOpts := ftps.Options{Host: host, User: user, Password: password}
	for _, opt := range opts {
		opt(&sessionOpts)
	}

	session := ftps.NewSession(sessionOpts)
	if err := session.Connect(ctx); err != nil {
		return nil, err
	}

	fsys := realfs.New()
	return &Client{
		session: session,
		remote:  session,
		fs:      fsys,
		engine:  mirror.NewEngine(session, fsys),
	}, nil
}

// newClient builds a client around an arbitrary remote, for tests.
func newClient(remote ports.Remote, fsys ports.FileSystem) *Client {
	return &Client{
		remote: remote,
		fs:     fsys,
		engine: mirror.NewEngine(remote, fsys),
	}
}

// Connect re-establishes the session with the stored credentials,
// replacing the live connection handle.
func (c *Client) Connect(ctx context.Context) error {
	if c.session == nil {
		return errors.New("boxsync: client has no dialable session")
	}
	return c.session.Connect(ctx)
}

// Close quits the remote session.
func (c *Client) Close() error {
	if c.session == nil {
		return nil
	}
	return c.session.Close()
}

// List returns the entry names in a remote directory, files and
// subdirectories undistinguished. An empty dir means the remote root.
func (c *Client) List(dir string) ([]string, error) {
	if dir == "" {
		dir = "/"
	}
	entries, err := c.remote.List(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name)
	}
	return names, nil
}

// WalkRemote returns a lazy breadth-first sequence of remote directory
// paths rooted at root.
func (c *Client) WalkRemote(root string) iter.Seq2[string, error] {
	return walk.Tree(root, c.engine.RemoteSubdirs(mirror.Options{}))
}

// WalkLocal returns a lazy breadth-first sequence of local directory
// paths rooted at root.
func (c *Client) WalkLocal(root string) iter.Seq2[string, error] {
	return walk.Tree(root, c.engine.LocalSubdirs(mirror.Options{}))
}

// Pull recursively copies files from the remote tree rooted at remoteRoot
// into localRoot.
func (c *Client) Pull(localRoot, remoteRoot string, opts Options) error {
	return c.engine.Pull(localRoot, remoteRoot, opts.mirror())
}

// Push recursively copies files from the local tree rooted at localRoot
// into remoteRoot.
func (c *Client) Push(remoteRoot, localRoot string, opts Options) error {
	return c.engine.Push(remoteRoot, localRoot, opts.mirror())
}

// PushFile uploads a single local file into targetRemoteDir, creating the
// remote directory chain as needed and overwriting any existing file of
// the same name.
func (c *Client) PushFile(localFile, targetRemoteDir string) error {
	return c.engine.PushFile(localFile, targetRemoteDir)
}

// ErrUnsupportedEntry is returned when a directory entry is neither a
// plain file nor a listable directory.
var ErrUnsupportedEntry = mirror.ErrUnsupportedEntry
