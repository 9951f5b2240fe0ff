package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/ccollins476ad/imgfetch/download"
	log "github.com/sirupsen/logrus"
)

func printFatalError(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
}

func main() {
	cfg, err := parseArgs()
	if err != nil {
		printFatalError(err)
		flag.Usage()
		os.Exit(1)
	}

	if cfg.Verbose {
		log.SetLevel(log.DebugLevel)
	}

	ctx := context.Background()
	f := download.NewFetcher(cfg.DestDir, cfg.Timeout)

	urls, err := collectURLs(ctx, cfg, f)
	if err != nil {
		printFatalError(err)
		os.Exit(2)
	}
	if len(urls) == 0 {
		printFatalError(fmt.Errorf("no image urls to fetch"))
		os.Exit(2)
	}

	err = processURLs(ctx, cfg, f, urls)
	if err != nil {
		printFatalError(err)
		os.Exit(3)
	}
}
