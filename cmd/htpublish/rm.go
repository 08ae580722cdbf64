package main

import (
	"context"
	"flag"

	"github.com/pkg/errors"

	"github.com/dolovcak/htpublish/mirror"
	"github.com/dolovcak/htpublish/remote"
)

func (c maincmd) rm(ctx context.Context, fs *flag.FlagSet, args []string) error {
	recur := fs.Bool("r", false, "remove directories and their contents recursively")
	err := fs.Parse(args)
	if err != nil {
		return errors.Wrap(err, "parsing args")
	}
	if fs.NArg() == 0 {
		return errors.New("usage: rm [-r] path ...")
	}

	r, err := remote.Create(ctx, c.conf.remoteType, c.conf.remoteConf)
	if err != nil {
		return errors.Wrap(err, "creating remote")
	}
	defer r.Close()

	for _, arg := range fs.Args() {
		if *recur {
			err = mirror.RemoveAll(ctx, r, arg)
		} else {
			err = r.RemoveFile(ctx, arg)
		}
		if err != nil {
			return errors.Wrapf(err, "removing %s", arg)
		}
	}
	return nil
}
