// Package logging implements a Remote that delegates everything to a nested remote,
// echoing operations as they happen.
// It drives the -c (log commands) flag.
package logging

import (
	"context"
	"io"
	"time"

	"github.com/pkg/errors"

	"github.com/dolovcak/htpublish"
	"github.com/dolovcak/htpublish/remote"
	"github.com/dolovcak/htpublish/status"
)

var _ htpublish.Remote = &Remote{}

type Remote struct {
	r htpublish.Remote
}

func New(r htpublish.Remote) *Remote {
	return &Remote{r: r}
}

func (r *Remote) List(ctx context.Context, dir string) (htpublish.Listing, error) {
	status.Cmdf("MLSD %s", dir)
	return r.r.List(ctx, dir)
}

func (r *Remote) MkDir(ctx context.Context, dir string) error {
	status.Cmdf("MKD %s", dir)
	return r.r.MkDir(ctx, dir)
}

func (r *Remote) RemoveDir(ctx context.Context, dir string) error {
	status.Cmdf("RMD %s", dir)
	return r.r.RemoveDir(ctx, dir)
}

func (r *Remote) RemoveFile(ctx context.Context, file string) error {
	status.Cmdf("DELE %s", file)
	return r.r.RemoveFile(ctx, file)
}

func (r *Remote) Store(ctx context.Context, file string, rd io.Reader) error {
	status.Cmdf("STOR %s", file)
	return r.r.Store(ctx, file, rd)
}

func (r *Remote) SetModTime(ctx context.Context, file string, t time.Time) error {
	status.Cmdf("MFMT %s %s", t.UTC().Format(htpublish.MLSDTime), file)
	return r.r.SetModTime(ctx, file, t)
}

func (r *Remote) Close() error {
	status.Cmdf("QUIT")
	return r.r.Close()
}

func init() {
	remote.Register("logging", func(ctx context.Context, conf map[string]interface{}) (htpublish.Remote, error) {
		nested, ok := conf["nested"].(map[string]interface{})
		if !ok {
			return nil, errors.New(`missing "nested" parameter`)
		}
		nestedType, ok := nested["type"].(string)
		if !ok {
			return nil, errors.New(`"nested" parameter missing "type"`)
		}
		nestedRemote, err := remote.Create(ctx, nestedType, nested)
		if err != nil {
			return nil, errors.Wrap(err, "creating nested remote")
		}
		return New(nestedRemote), nil
	})
}
