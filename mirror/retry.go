package mirror

import (
	"context"

	"github.com/dolovcak/htpublish"
	"github.com/dolovcak/htpublish/status"
)

// Retry dials a remote with connect and runs one pass over it with run,
// redialing and rerunning after timeout-class errors
// for as long as reconnect is set.
// Rerunning from the top is safe:
// the modification-time rule makes a pass idempotent.
// Any other error ends the loop.
func Retry(ctx context.Context, connect func(context.Context) (htpublish.Remote, error), run func(context.Context, htpublish.Remote) error, reconnect bool) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		r, err := connect(ctx)
		if err != nil {
			if reconnect && htpublish.IsTimeout(err) {
				status.Errorf("%s", err)
				status.Notef("Reconnecting to server...")
				continue
			}
			return err
		}

		err = run(ctx, r)
		if cerr := r.Close(); cerr != nil {
			status.Errorf("closing connection: %s", cerr)
		}
		if err == nil {
			return nil
		}
		if reconnect && htpublish.IsTimeout(err) {
			status.Errorf("%s", err)
			status.Notef("Reconnecting to server...")
			continue
		}
		return err
	}
}
