package mirror

import (
	"context"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/rjeczalik/notify"
	"golang.org/x/sync/errgroup"

	"github.com/dolovcak/htpublish/status"
)

// DefaultDebounce is how long Watch waits after the last filesystem event
// before rerunning.
const DefaultDebounce = 500 * time.Millisecond

// Watch runs `run` once,
// then reruns it whenever files change under root,
// debounced so that a burst of events triggers a single rerun.
// It returns when ctx is canceled or run fails.
func Watch(ctx context.Context, root string, debounce time.Duration, run func(context.Context) error) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	if err := run(ctx); err != nil {
		return err
	}

	events := make(chan notify.EventInfo, 100)
	err := notify.Watch(filepath.Join(root, "..."), events, notify.All)
	if err != nil {
		return errors.Wrapf(err, "watching %s", root)
	}
	defer notify.Stop(events)

	g, ctx := errgroup.WithContext(ctx)
	trigger := make(chan struct{}, 1)

	// This goroutine debounces filesystem events into rerun triggers.
	g.Go(func() error {
		timer := time.NewTimer(debounce)
		if !timer.Stop() {
			<-timer.C
		}
		armed := false

		for {
			select {
			case <-ctx.Done():
				return ctx.Err()

			case ev, ok := <-events:
				if !ok {
					return nil
				}
				status.Infof("CHANGE %s", ev.Path())
				if armed && !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(debounce)
				armed = true

			case <-timer.C:
				armed = false
				select {
				case trigger <- struct{}{}:
				default:
				}
			}
		}
	})

	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-trigger:
				if err := run(ctx); err != nil {
					return err
				}
			}
		}
	})

	return g.Wait()
}
