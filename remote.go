package htpublish

import (
	"context"
	"errors"
	"io"
	"net"
	"os"
	"time"
)

// Remote is the set of operations mirroring needs from a remote server.
// Paths are slash-separated and interpreted by the remote;
// mirroring only ever passes paths below its destination root.
type Remote interface {
	// List produces the normalized listing of a remote directory.
	List(ctx context.Context, dir string) (Listing, error)

	// MkDir creates a remote directory.
	// The parent must already exist.
	MkDir(ctx context.Context, dir string) error

	// RemoveDir removes an empty remote directory.
	// Removing a non-empty one fails with an error
	// for which errors.Is(err, ErrNotEmpty) is true.
	RemoveDir(ctx context.Context, dir string) error

	// RemoveFile removes a remote file.
	RemoveFile(ctx context.Context, file string) error

	// Store uploads the contents of r to a remote file,
	// creating or replacing it.
	Store(ctx context.Context, file string, r io.Reader) error

	// SetModTime sets the modification time of a remote file.
	// Remotes that cannot do this fail with an error
	// for which errors.Is(err, ErrModTimeUnsupported) is true.
	SetModTime(ctx context.Context, file string, t time.Time) error

	// Close releases the connection.
	Close() error
}

var (
	// ErrNotEmpty means RemoveDir was called on a non-empty directory.
	ErrNotEmpty = errors.New("directory not empty")

	// ErrNotFound means a requested item does not exist.
	ErrNotFound = errors.New("not found")

	// ErrModTimeUnsupported means the remote cannot set modification times.
	ErrModTimeUnsupported = errors.New("setting modification times not supported")
)

// IsTimeout tells whether err is a timeout-class error,
// the kind the reconnect loop recovers from.
func IsTimeout(err error) bool {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	return os.IsTimeout(err)
}
