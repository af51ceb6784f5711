// Command chunksync copies backup chunks from one chunk store to another.
//
// Usage:
//
//	chunksync [-config FILE] index [flags] INDEXFILE...
//	chunksync [-config FILE] log [flags] LOGFILE...
//	chunksync [-config FILE] retry -journal DB [flags]
//
// The index subcommand copies the chunks listed in one or more chunk-index files
// (.fidx or .didx).
// The log subcommand copies the chunks mentioned in log files
// as "chunk <digest>",
// such as the missing or corrupt chunks reported by a verify job.
// It replaces chunks already in the destination unless given -overwrite=false.
// The retry subcommand copies again the chunks that failed
// in the latest run recorded in a journal.
//
// Source and destination stores are given with -chunks and -output,
// or described in a JSON config file:
//
//	{
//	  "source": {"type": "file", "root": "/mnt/old/.chunks"},
//	  "destination": {"type": "file", "root": "/mnt/new/.chunks"}
//	}
package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"
	"os/signal"

	"github.com/bobg/subcmd"
)

type maincmd struct {
	conf *config
	out  io.Writer // summary goes here
}

func main() {
	configFile := flag.String("config", "", "path to JSON config file describing the stores")
	flag.Parse()

	var (
		conf = new(config)
		err  error
	)
	if *configFile != "" {
		conf, err = loadConfig(*configFile)
		if err != nil {
			log.Fatal(err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err = subcmd.Run(ctx, maincmd{conf: conf, out: os.Stdout}, flag.Args())
	if err != nil {
		log.Fatal(err)
	}
}

func (c maincmd) Subcmds() subcmd.Map {
	return subcmd.Commands(
		"index", c.indexcmd, c.copyParams(false),
		"log", c.logcmd, c.copyParams(true),
		"retry", c.retrycmd, c.retryParams(),
	)
}
