package main

import (
	"context"
	"encoding/json"
	"flag"
	"strconv"

	"github.com/pkg/errors"

	"github.com/dolovcak/htpublish"
	"github.com/dolovcak/htpublish/ignore"
	"github.com/dolovcak/htpublish/mirror"
	"github.com/dolovcak/htpublish/remote"
	"github.com/dolovcak/htpublish/remote/logging"
	"github.com/dolovcak/htpublish/snapshot"
)

type mirrorFlags struct {
	keepDeleted *bool
	noIgnore    *bool
	noReconnect *bool
	logCommands *bool
	timeout     *int
}

func addMirrorFlags(fs *flag.FlagSet) mirrorFlags {
	return mirrorFlags{
		keepDeleted: fs.Bool("D", false, "don't delete anything on the server"),
		noIgnore:    fs.Bool("I", false, "don't read ignore patterns from config"),
		noReconnect: fs.Bool("R", false, "don't reconnect to the server after a timeout"),
		logCommands: fs.Bool("c", false, "show commands before they are sent to the server (debug)"),
		timeout:     fs.Int("t", 0, "timeout in seconds (overrides config)"),
	}
}

func (c maincmd) mirror(ctx context.Context, fs *flag.FlagSet, args []string) error {
	mf := addMirrorFlags(fs)
	err := fs.Parse(args)
	if err != nil {
		return errors.Wrap(err, "parsing args")
	}

	run, cleanup, err := c.runner(ctx, mf)
	if err != nil {
		return err
	}
	defer cleanup()

	return run(ctx)
}

func (c maincmd) watch(ctx context.Context, fs *flag.FlagSet, args []string) error {
	mf := addMirrorFlags(fs)
	debounce := fs.Duration("debounce", mirror.DefaultDebounce, "how long to wait after the last change before remirroring")
	err := fs.Parse(args)
	if err != nil {
		return errors.Wrap(err, "parsing args")
	}

	run, cleanup, err := c.runner(ctx, mf)
	if err != nil {
		return err
	}
	defer cleanup()

	err = mirror.Watch(ctx, c.conf.srcDir, *debounce, run)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// runner builds the reconnect-wrapped mirror pass shared by mirror and watch.
// The returned cleanup closes the snapshot, if one is configured.
func (c maincmd) runner(ctx context.Context, mf mirrorFlags) (func(context.Context) error, func(), error) {
	if *mf.timeout != 0 {
		if *mf.timeout < 1 || *mf.timeout > 60 {
			return nil, nil, errors.Errorf("bogus timeout value (%d)", *mf.timeout)
		}
		c.conf.remoteConf["timeout"] = json.Number(strconv.Itoa(*mf.timeout))
	}
	if *mf.logCommands {
		c.conf.remoteConf["debug"] = true
	}

	patterns := c.conf.ignored
	if *mf.noIgnore {
		patterns = ignore.Patterns(nil)
	}

	var (
		snap    *snapshot.Store
		cleanup = func() {}
		err     error
	)
	if c.conf.snapshot != "" {
		snap, err = snapshot.Open(ctx, c.conf.snapshot)
		if err != nil {
			return nil, nil, err
		}
		cleanup = func() { snap.Close() }
	}

	connect := func(ctx context.Context) (htpublish.Remote, error) {
		r, err := remote.Create(ctx, c.conf.remoteType, c.conf.remoteConf)
		if err != nil {
			return nil, err
		}
		if *mf.logCommands {
			r = logging.New(r)
		}
		return r, nil
	}

	runOnce := func(ctx context.Context, r htpublish.Remote) error {
		m := &mirror.Mirror{
			Remote:      r,
			SrcRoot:     c.conf.srcDir,
			DestRoot:    c.conf.destDir,
			Ignore:      patterns,
			KeepDeleted: *mf.keepDeleted,
		}
		if snap != nil {
			m.Snapshot = snap
		}
		return m.Run(ctx)
	}

	run := func(ctx context.Context) error {
		return mirror.Retry(ctx, connect, runOnce, !*mf.noReconnect)
	}
	return run, cleanup, nil
}
