// Package mirror implements the recursive copy operations between a local
// directory tree and a remote one.
package mirror

import (
	"errors"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"strings"

	"github.com/kestrelbio/boxsync/internal/ports"
	"github.com/kestrelbio/boxsync/internal/walk"
)

// ErrUnsupportedEntry marks a directory entry that is neither a plain file
// nor a listable directory (symlinks, devices, sockets). The engine refuses
// to guess what such entries are and aborts instead.
var ErrUnsupportedEntry = errors.New("mirror: unsupported directory entry")

// Options control how the recursive copy operations behave.
type Options struct {
	// Overwrite replaces destination files that already exist. When false,
	// existing files are skipped untouched.
	Overwrite bool

	// Verbose logs every copy and skip decision at info level.
	Verbose bool

	// DryRun performs all decision logic and logging but no mutation: no
	// directory creation and no transfers, on either side.
	DryRun bool

	// Filetypes restricts copying to files whose extension (the substring
	// after the last ".") is in the list, case-sensitively. Empty means no
	// restriction.
	Filetypes []string

	// Exclusions are glob patterns matched against entry names; matching
	// files and directories are skipped entirely.
	Exclusions []string
}

// Engine drives the mirror operations against one remote session and the
// local filesystem. Operations are sequential; a per-file failure aborts
// the remainder of the operation.
type Engine struct {
	remote ports.Remote
	fs     ports.FileSystem
}

// NewEngine binds a mirror engine to a remote session and a local
// filesystem.
func NewEngine(remote ports.Remote, fsys ports.FileSystem) *Engine {
	return &Engine{remote: remote, fs: fsys}
}

// RemoteSubdirs returns the walker capability for the remote tree,
// honoring the exclusion options.
func (e *Engine) RemoteSubdirs(opts Options) walk.Lister {
	return func(dir string) ([]string, error) {
		entries, err := e.remote.List(dir)
		if err != nil {
			return nil, err
		}
		var dirs []string
		for _, entry := range entries {
			if entry.Kind != ports.KindDir || e.skip(entry.Name, opts) {
				continue
			}
			dirs = append(dirs, path.Join(dir, entry.Name))
		}
		return dirs, nil
	}
}

// LocalSubdirs returns the walker capability for the local tree, honoring
// the exclusion options.
func (e *Engine) LocalSubdirs(opts Options) walk.Lister {
	return func(dir string) ([]string, error) {
		entries, err := e.fs.ReadDir(dir)
		if err != nil {
			return nil, err
		}
		var dirs []string
		for _, entry := range entries {
			if !entry.IsDir() || e.skip(entry.Name(), opts) {
				continue
			}
			dirs = append(dirs, filepath.Join(dir, entry.Name()))
		}
		return dirs, nil
	}
}

// Pull mirrors the remote tree rooted at remoteRoot into localRoot.
// Directories are created as encountered; files are copied subject to the
// overwrite, dry-run and filetype policies.
func (e *Engine) Pull(localRoot, remoteRoot string, opts Options) error {
	if opts.DryRun {
		slog.Info("dry run: no files will be written")
	}

	for remoteDir, err := range walk.Tree(remoteRoot, e.RemoteSubdirs(opts)) {
		if err != nil {
			return fmt.Errorf("walk remote tree: %w", err)
		}

		mapped, err := MapPath(remoteRoot, localRoot, remoteDir)
		if err != nil {
			return err
		}
		localDir := filepath.FromSlash(mapped)

		if !opts.DryRun {
			if err := e.fs.MkdirAll(localDir, 0o755); err != nil {
				return fmt.Errorf("create local directory %s: %w", localDir, err)
			}
		}

		entries, err := e.remote.List(remoteDir)
		if err != nil {
			return fmt.Errorf("list %s: %w", remoteDir, err)
		}

		for _, entry := range entries {
			if e.skip(entry.Name, opts) {
				continue
			}
			switch entry.Kind {
			case ports.KindDir:
				continue
			case ports.KindFile:
			default:
				return fmt.Errorf("%w: %s", ErrUnsupportedEntry, path.Join(remoteDir, entry.Name))
			}
			if !allowed(entry.Name, opts.Filetypes) {
				continue
			}

			localFile := filepath.Join(localDir, entry.Name)
			if !opts.Overwrite {
				if _, err := e.fs.Stat(localFile); err == nil {
					e.logDecision(opts, "skipping existing file", "path", localFile)
					continue
				}
			}

			remoteFile := path.Join(remoteDir, entry.Name)
			e.logDecision(opts, "copying file", "from", remoteFile, "to", localFile)
			if opts.DryRun {
				continue
			}
			if err := e.remote.Retrieve(remoteFile, localFile); err != nil {
				return fmt.Errorf("retrieve %s: %w", remoteFile, err)
			}
		}
	}
	return nil
}

// Push mirrors the local tree rooted at localRoot into remoteRoot. It is
// the structural mirror of Pull: same walk, same policies, with the
// source and destination roles swapped.
func (e *Engine) Push(remoteRoot, localRoot string, opts Options) error {
	if opts.DryRun {
		slog.Info("dry run: no files will be written")
	}

	for localDir, err := range walk.Tree(localRoot, e.LocalSubdirs(opts)) {
		if err != nil {
			return fmt.Errorf("walk local tree: %w", err)
		}

		remoteDir, err := MapPath(localRoot, remoteRoot, localDir)
		if err != nil {
			return err
		}

		if !opts.DryRun {
			if err := e.remote.EnsureDir(remoteDir); err != nil {
				return fmt.Errorf("ensure remote directory %s: %w", remoteDir, err)
			}
		}

		entries, err := e.fs.ReadDir(localDir)
		if err != nil {
			return fmt.Errorf("list %s: %w", localDir, err)
		}

		for _, entry := range entries {
			if e.skip(entry.Name(), opts) {
				continue
			}
			if entry.IsDir() {
				continue
			}
			if !entry.Type().IsRegular() {
				return fmt.Errorf("%w: %s", ErrUnsupportedEntry, filepath.Join(localDir, entry.Name()))
			}
			if !allowed(entry.Name(), opts.Filetypes) {
				continue
			}

			remoteFile := path.Join(remoteDir, entry.Name())
			if !opts.Overwrite {
				kind, err := e.remote.Stat(remoteFile)
				if err != nil {
					return fmt.Errorf("stat %s: %w", remoteFile, err)
				}
				if kind != ports.KindMissing {
					e.logDecision(opts, "skipping existing file", "path", remoteFile)
					continue
				}
			}

			localFile := filepath.Join(localDir, entry.Name())
			e.logDecision(opts, "copying file", "from", localFile, "to", remoteFile)
			if opts.DryRun {
				continue
			}
			if err := e.remote.Store(localFile, remoteFile); err != nil {
				return fmt.Errorf("store %s: %w", remoteFile, err)
			}
		}
	}
	return nil
}

// PushFile uploads a single local file into targetRemoteDir, creating the
// directory chain component by component from the remote root. The remote
// file is always overwritten, so repeated calls are idempotent.
func (e *Engine) PushFile(localFile, targetRemoteDir string) error {
	info, err := e.fs.Stat(localFile)
	if err != nil {
		return fmt.Errorf("stat local file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, not a file", localFile)
	}

	target := path.Clean("/" + filepath.ToSlash(targetRemoteDir))
	dir := "/"
	for part := range strings.SplitSeq(strings.TrimPrefix(target, "/"), "/") {
		if part == "" {
			continue
		}
		dir = path.Join(dir, part)
		if err := e.remote.EnsureDir(dir); err != nil {
			return fmt.Errorf("ensure remote directory %s: %w", dir, err)
		}
	}

	remoteFile := path.Join(target, filepath.Base(localFile))
	slog.Info("copying file", "from", localFile, "to", remoteFile)
	if err := e.remote.Store(localFile, remoteFile); err != nil {
		return fmt.Errorf("store %s: %w", remoteFile, err)
	}
	return nil
}

// skip reports whether an entry name is filtered out before any copy
// decision: dotfiles always, plus anything matching an exclusion pattern.
func (e *Engine) skip(name string, opts Options) bool {
	return hidden(name) || excluded(name, opts.Exclusions)
}

// logDecision logs a per-file decision, at info level in verbose mode and
// at debug level otherwise.
func (e *Engine) logDecision(opts Options, msg string, args ...any) {
	if opts.Verbose {
		slog.Info(msg, args...)
		return
	}
	slog.Debug(msg, args...)
}
