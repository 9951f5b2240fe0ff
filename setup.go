package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ccollins476ad/imgfetch/download"
	"github.com/ccollins476ad/imgfetch/fileutil"
)

type Config struct {
	URLs    []string      // Image urls given as positional arguments.
	URLFile string        // Path of a text file to extract urls from.
	PageURL string        // Url of an html page to pull image urls from.
	DestDir string        // Directory to store fetched images in.
	Timeout time.Duration // Per-request timeout.
	Verbose bool          // True for verbose output.
	Jobs    int           // Number of fetches to run in parallel.
	Gallery bool          // True to write an html gallery after fetching.
}

func parseArgs() (*Config, error) {
	verbose := flag.Bool("v", false, "verbose output")
	jobs := flag.Int("j", 1, "jobs")
	destDir := flag.String("d", "Fetched_Images", "destination directory")
	timeout := flag.Duration("t", download.DefaultTimeout, "per-request timeout")
	urlFile := flag.String("f", "", "extract urls from a text file")
	pageURL := flag.String("p", "", "pull image urls from an html page")
	gallery := flag.Bool("g", false, "write an html gallery of stored images")

	flag.Usage = usage
	flag.Parse()

	cfg := &Config{
		URLs:    flag.Args(),
		URLFile: *urlFile,
		PageURL: *pageURL,
		DestDir: *destDir,
		Timeout: *timeout,
		Verbose: *verbose,
		Jobs:    *jobs,
		Gallery: *gallery,
	}

	if len(cfg.URLs) == 0 && cfg.URLFile == "" && cfg.PageURL == "" {
		return nil, fmt.Errorf("missing required argument: url")
	}

	if cfg.Jobs < 1 {
		return nil, fmt.Errorf("jobs must be at least 1")
	}

	if fileutil.FileExists(cfg.DestDir) && !fileutil.IsDir(cfg.DestDir) {
		return nil, fmt.Errorf("destination is not a directory: %s", cfg.DestDir)
	}

	return cfg, nil
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [option]... [url]...\n", filepath.Base(os.Args[0]))
	fmt.Fprintf(flag.CommandLine.Output(), "Fetches remote images and stores them in a local directory.\n")
	flag.PrintDefaults()
}
