// Package dir implements a Remote backed by a local directory.
//
// It is the in-process stand-in for a real server,
// used by tests and for disk-to-disk mirroring.
package dir

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/dolovcak/htpublish"
	"github.com/dolovcak/htpublish/remote"
)

var _ htpublish.Remote = &Remote{}

// Remote is a local-filesystem implementation of htpublish.Remote.
// Paths passed to it are ordinary filesystem paths.
type Remote struct{}

// New produces a new Remote.
func New() *Remote {
	return &Remote{}
}

// List produces the normalized listing of a directory.
func (r *Remote) List(_ context.Context, dir string) (htpublish.Listing, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "reading dir %s", dir)
	}

	listing := make(htpublish.Listing)
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			return nil, errors.Wrapf(err, "statting %s/%s", dir, entry.Name())
		}
		e := htpublish.Entry{
			Name:    entry.Name(),
			ModTime: info.ModTime().Truncate(time.Second).UTC(),
		}
		switch {
		case entry.IsDir():
			e.Kind = htpublish.Dir
		case info.Mode().IsRegular():
			e.Kind = htpublish.File
			e.Size = uint64(info.Size())
		default:
			continue
		}
		listing[e.Name] = e
	}
	return listing, nil
}

// MkDir creates a directory.
func (r *Remote) MkDir(_ context.Context, dir string) error {
	return errors.Wrapf(os.Mkdir(dir, 0755), "making dir %s", dir)
}

// RemoveDir removes an empty directory.
func (r *Remote) RemoveDir(_ context.Context, dir string) error {
	err := os.Remove(dir)
	if err == nil {
		return nil
	}
	if entries, lerr := os.ReadDir(dir); lerr == nil && len(entries) > 0 {
		return errors.Wrapf(htpublish.ErrNotEmpty, "removing dir %s", dir)
	}
	return errors.Wrapf(err, "removing dir %s", dir)
}

// RemoveFile removes a file.
func (r *Remote) RemoveFile(_ context.Context, file string) error {
	return errors.Wrapf(os.Remove(file), "removing %s", file)
}

// Store creates or replaces a file with the contents of rd.
func (r *Remote) Store(_ context.Context, file string, rd io.Reader) error {
	f, err := os.OpenFile(file, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return errors.Wrapf(err, "opening %s for writing", file)
	}
	defer f.Close()

	_, err = io.Copy(f, rd)
	return errors.Wrapf(err, "writing %s", file)
}

// SetModTime sets a file's modification time.
func (r *Remote) SetModTime(_ context.Context, file string, t time.Time) error {
	return errors.Wrapf(os.Chtimes(file, t, t), "setting mtime of %s", file)
}

// Close implements htpublish.Remote.
func (r *Remote) Close() error {
	return nil
}

func init() {
	remote.Register("dir", func(context.Context, map[string]interface{}) (htpublish.Remote, error) {
		return New(), nil
	})
}
