package main

import (
	"context"
	"flag"
	"fmt"
)

const version = "2.0.0"

func (c maincmd) version(_ context.Context, fs *flag.FlagSet, args []string) error {
	err := fs.Parse(args)
	if err != nil {
		return err
	}
	fmt.Println("htpublish", version)
	return nil
}
