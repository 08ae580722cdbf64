package mirror

import (
	"context"
	stderrs "errors"
	"path"

	"github.com/pkg/errors"

	"github.com/dolovcak/htpublish"
	"github.com/dolovcak/htpublish/status"
)

// RemoveAll removes a remote directory and everything under it.
// It first tries a plain RemoveDir;
// servers refuse that on a non-empty directory,
// in which case the children are deleted and the RemoveDir retried.
func RemoveAll(ctx context.Context, r htpublish.Remote, dir string) error {
	err := r.RemoveDir(ctx, dir)
	if err == nil {
		status.Notef("RMD %s", dir)
		return nil
	}
	if !stderrs.Is(err, htpublish.ErrNotEmpty) {
		return err
	}

	listing, err := r.List(ctx, dir)
	if err != nil {
		return errors.Wrapf(err, "listing %s", dir)
	}

	for _, name := range listing.Names() {
		child := path.Join(dir, name)
		if listing[name].Kind == htpublish.Dir {
			err = RemoveAll(ctx, r, child)
			if err != nil {
				return err
			}
			continue
		}
		err = r.RemoveFile(ctx, child)
		if err != nil {
			return errors.Wrapf(err, "deleting %s", child)
		}
		status.Notef("DELE %s", child)
	}

	err = r.RemoveDir(ctx, dir)
	if err != nil {
		return err
	}
	status.Notef("RMD %s", dir)
	return nil
}
