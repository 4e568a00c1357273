package ports

// EntryKind classifies a remote path. Remote listings carry an explicit
// kind so callers never need trial-and-error directory probing.
type EntryKind int

const (
	// KindMissing means the path does not exist on the remote.
	KindMissing EntryKind = iota
	// KindFile is a plain file.
	KindFile
	// KindDir is a listable directory.
	KindDir
	// KindUnsupported covers symlinks and other special entries that are
	// neither plain files nor listable directories.
	KindUnsupported
)

// String returns a short label for the entry kind.
func (k EntryKind) String() string {
	switch k {
	case KindMissing:
		return "missing"
	case KindFile:
		return "file"
	case KindDir:
		return "dir"
	default:
		return "unsupported"
	}
}

// RemoteEntry is one name in a remote directory listing.
type RemoteEntry struct {
	Name string
	Kind EntryKind
}

// Remote abstracts the remote side of a mirror operation. The production
// implementation is an FTPS session; tests use an in-memory fake.
//
// Retrieve and Store transfer whole files between a remote path and a local
// path in binary mode. Neither enforces any overwrite policy; that is the
// mirror engine's job.
type Remote interface {
	// List returns the entries of a remote directory in listing order.
	List(dir string) ([]RemoteEntry, error)

	// Stat classifies a single remote path. A nonexistent path is reported
	// as KindMissing with a nil error.
	Stat(path string) (EntryKind, error)

	// Retrieve downloads a remote file to a local path, replacing any
	// existing local file.
	Retrieve(remotePath, localPath string) error

	// Store uploads a local file to a remote path, replacing any existing
	// remote file.
	Store(localPath, remotePath string) error

	// EnsureDir changes into dir, creating it first if the change fails,
	// and restores the prior working directory. It creates a single path
	// component only; the parent must already exist.
	EnsureDir(dir string) error
}
