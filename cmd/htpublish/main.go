// Command htpublish uploads a website (or any directory tree) to an FTP
// or SFTP server, mirroring the local tree onto the remote one.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"

	"github.com/bobg/subcmd"

	"github.com/dolovcak/htpublish/status"

	_ "github.com/dolovcak/htpublish/remote/dir"
	_ "github.com/dolovcak/htpublish/remote/ftp"
	_ "github.com/dolovcak/htpublish/remote/logging"
	_ "github.com/dolovcak/htpublish/remote/sftp"
)

type maincmd struct {
	conf *config
}

func main() {
	var (
		configPath = flag.String("config", "config.json", "path to config file")
		noColor    = flag.Bool("C", false, "disable colored output")
	)
	flag.Parse()

	if *noColor {
		status.Disable()
	}

	conf, err := loadConfig(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	args := flag.Args()
	if len(args) == 0 {
		args = []string{"mirror"}
	}

	err = subcmd.Run(ctx, maincmd{conf: conf}, args)
	if err != nil {
		log.Fatal(err)
	}
}

func (c maincmd) Subcmds() map[string]subcmd.Subcmd {
	return map[string]subcmd.Subcmd{
		"mirror":  subcmd.Subcmd{F: c.mirror},
		"watch":   subcmd.Subcmd{F: c.watch},
		"ls":      subcmd.Subcmd{F: c.ls},
		"rm":      subcmd.Subcmd{F: c.rm},
		"version": subcmd.Subcmd{F: c.version},
	}
}
