// Package mirror implements the diff-and-sync algorithm:
// it walks a local directory tree and makes the matching remote tree
// look like it.
package mirror

import (
	"context"
	stderrs "errors"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/dolovcak/htpublish"
	"github.com/dolovcak/htpublish/ignore"
	"github.com/dolovcak/htpublish/status"
)

// Snapshot is the journal of already-pushed files consulted by a Mirror.
// *snapshot.Store implements Snapshot.
type Snapshot interface {
	// ModTime gets the recorded modification time of a remote path,
	// or htpublish.ErrNotFound.
	ModTime(ctx context.Context, path string) (time.Time, error)

	// Record notes that a remote path was pushed with the given modification time.
	Record(ctx context.Context, path string, mtime time.Time) error

	// Forget drops the record for a remote path, if any.
	Forget(ctx context.Context, path string) error

	// Prune drops every record whose path fails the keep predicate.
	Prune(ctx context.Context, keep func(path string) bool) error
}

// Mirror mirrors the local tree at SrcRoot to the remote tree at DestRoot.
type Mirror struct {
	Remote   htpublish.Remote
	SrcRoot  string // absolute local path
	DestRoot string // absolute remote path, slash-separated

	// Ignore filters local entries out of the sync.
	// Ignored entries are neither uploaded
	// nor deleted remotely while their local copy exists.
	Ignore ignore.Patterns

	// KeepDeleted disables deleting remote entries that no longer exist locally.
	KeepDeleted bool

	// Snapshot, when set, supplies a second source of remote modification times:
	// a file is also skipped when its local mtime is not newer
	// than the time recorded at its last successful push.
	Snapshot Snapshot

	// Remote path of the last directory created in this run.
	// A fresh directory is empty by construction,
	// so recursing into it skips the listing and the deletion scan.
	lastMkd string
}

// Run performs one full mirroring pass.
// A file is uploaded when its local modification time
// (truncated to whole seconds)
// is strictly newer than the best known remote one.
// After an upload the remote file is restamped with the local time,
// keeping future comparisons stable.
func (m *Mirror) Run(ctx context.Context) error {
	m.lastMkd = ""
	return m.syncDir(ctx, m.SrcRoot)
}

func (m *Mirror) syncDir(ctx context.Context, srcDir string) error {
	destDir, err := m.destPath(srcDir)
	if err != nil {
		return err
	}

	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return errors.Wrapf(err, "reading dir %s", srcDir)
	}

	var listing htpublish.Listing
	if destDir == m.lastMkd && m.lastMkd != "" {
		// Just created, guaranteed empty: nothing to list, nothing to delete.
		listing = htpublish.Listing{}
		status.Infof("SKIP (rmcheck) %s", destDir)
	} else {
		listing, err = m.Remote.List(ctx, destDir)
		if err != nil {
			return errors.Wrapf(err, "listing %s", destDir)
		}
		status.Okf("MLSD %s", destDir)

		if !m.KeepDeleted {
			err = m.deleteStale(ctx, destDir, listing, entries)
			if err != nil {
				return err
			}
		}
	}

	for _, entry := range entries {
		name := entry.Name()
		srcChild := filepath.Join(srcDir, name)

		if m.ignored(srcChild) {
			status.Infof("SKIP (ignore) %s", srcChild)
			continue
		}

		destChild := path.Join(destDir, name)

		if entry.IsDir() {
			if _, ok := listing[name]; ok {
				status.Infof("SKIP MKD (already exists) %s", destChild)
			} else {
				err = m.Remote.MkDir(ctx, destChild)
				if err != nil {
					return errors.Wrapf(err, "making dir %s", destChild)
				}
				m.lastMkd = destChild
				status.Okf("MKD %s", destChild)
			}
			err = m.syncDir(ctx, srcChild)
			if err != nil {
				return err
			}
			continue
		}

		info, err := entry.Info()
		if err != nil {
			return errors.Wrapf(err, "statting %s", srcChild)
		}
		if !info.Mode().IsRegular() {
			continue
		}

		srcMTime := info.ModTime().Truncate(time.Second).UTC()

		if remoteEntry, ok := listing[name]; ok && !srcMTime.After(remoteEntry.ModTime) {
			status.Infof("SKIP (mtime) %s", srcChild)
			continue
		}
		if m.Snapshot != nil {
			recorded, err := m.Snapshot.ModTime(ctx, destChild)
			switch {
			case err == nil:
				if !srcMTime.After(recorded) {
					status.Infof("SKIP (snapshot) %s", srcChild)
					continue
				}
			case stderrs.Is(err, htpublish.ErrNotFound):
			default:
				return errors.Wrapf(err, "querying snapshot for %s", destChild)
			}
		}

		err = m.upload(ctx, srcChild, destChild, srcMTime)
		if err != nil {
			return err
		}
	}

	return nil
}

// deleteStale removes remote entries with no local counterpart.
// Local names are collected before ignore filtering,
// so a remote copy of a locally present but ignored entry survives.
func (m *Mirror) deleteStale(ctx context.Context, destDir string, listing htpublish.Listing, entries []os.DirEntry) error {
	local := make(map[string]bool, len(entries))
	for _, entry := range entries {
		local[entry.Name()] = true
	}

	for _, name := range listing.Names() {
		if local[name] {
			continue
		}
		child := path.Join(destDir, name)
		if listing[name].Kind == htpublish.Dir {
			err := RemoveAll(ctx, m.Remote, child)
			if err != nil {
				return err
			}
			err = m.forgetTree(ctx, child)
			if err != nil {
				return err
			}
			continue
		}
		err := m.Remote.RemoveFile(ctx, child)
		if err != nil {
			return errors.Wrapf(err, "deleting %s", child)
		}
		status.Notef("DELE %s", child)
		err = m.forget(ctx, child)
		if err != nil {
			return err
		}
	}
	return nil
}

// forget drops the snapshot record of a deleted remote file.
// Without this, a file deleted and later restored with its original mtime
// would be skipped by the journal forever.
func (m *Mirror) forget(ctx context.Context, path string) error {
	if m.Snapshot == nil {
		return nil
	}
	return errors.Wrapf(m.Snapshot.Forget(ctx, path), "forgetting %s in snapshot", path)
}

// forgetTree drops the snapshot records at and under a deleted remote directory.
func (m *Mirror) forgetTree(ctx context.Context, dir string) error {
	if m.Snapshot == nil {
		return nil
	}
	prefix := dir + "/"
	err := m.Snapshot.Prune(ctx, func(p string) bool {
		return p != dir && !strings.HasPrefix(p, prefix)
	})
	return errors.Wrapf(err, "pruning snapshot under %s", dir)
}

func (m *Mirror) upload(ctx context.Context, srcChild, destChild string, srcMTime time.Time) error {
	f, err := os.Open(srcChild)
	if err != nil {
		return errors.Wrapf(err, "opening %s for reading", srcChild)
	}
	err = m.Remote.Store(ctx, destChild, f)
	f.Close()
	if err != nil {
		return errors.Wrapf(err, "storing %s", destChild)
	}
	status.Okf("STOR %s", srcChild)

	err = m.Remote.SetModTime(ctx, destChild, srcMTime)
	if err != nil {
		return errors.Wrapf(err, "setting mtime of %s", destChild)
	}
	status.Okf("MFMT %s", destChild)

	if m.Snapshot != nil {
		err = m.Snapshot.Record(ctx, destChild, srcMTime)
		if err != nil {
			return errors.Wrapf(err, "recording %s in snapshot", destChild)
		}
	}
	return nil
}

// destPath translates a local path into a remote one by switching roots.
func (m *Mirror) destPath(srcDir string) (string, error) {
	rel, err := filepath.Rel(m.SrcRoot, srcDir)
	if err != nil {
		return "", errors.Wrapf(err, "relativizing %s", srcDir)
	}
	return path.Join(m.DestRoot, filepath.ToSlash(rel)), nil
}

func (m *Mirror) ignored(srcChild string) bool {
	if len(m.Ignore) == 0 {
		return false
	}
	rel, err := filepath.Rel(m.SrcRoot, srcChild)
	if err != nil {
		return false
	}
	return m.Ignore.Match(filepath.ToSlash(rel))
}
