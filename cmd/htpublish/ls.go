package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/dolovcak/htpublish"
	"github.com/dolovcak/htpublish/remote"
)

func (c maincmd) ls(ctx context.Context, fs *flag.FlagSet, args []string) error {
	err := fs.Parse(args)
	if err != nil {
		return errors.Wrap(err, "parsing args")
	}

	dir := c.conf.destDir
	if fs.NArg() > 0 {
		dir = fs.Arg(0)
	}

	r, err := remote.Create(ctx, c.conf.remoteType, c.conf.remoteConf)
	if err != nil {
		return errors.Wrap(err, "creating remote")
	}
	defer r.Close()

	listing, err := r.List(ctx, dir)
	if err != nil {
		return errors.Wrapf(err, "listing %s", dir)
	}

	for _, name := range listing.Names() {
		e := listing[name]
		if e.Kind == htpublish.Dir {
			fmt.Printf("%s\t%s/\n", e.ModTime.Format(time.RFC3339), name)
			continue
		}
		fmt.Printf("%s\t%s\t%d\n", e.ModTime.Format(time.RFC3339), name, e.Size)
	}
	return nil
}
