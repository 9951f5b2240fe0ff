package main

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/ccollins476ad/imgfetch/download"
	"github.com/ccollins476ad/imgfetch/web"
	log "github.com/sirupsen/logrus"
	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"
	"mvdan.cc/xurls/v2"
)

// collectURLs gathers the urls to fetch from all configured sources:
// positional arguments, a text file (-f), and an html page (-p).
func collectURLs(ctx context.Context, cfg *Config, f *download.Fetcher) ([]string, error) {
	urls := append([]string{}, cfg.URLs...)

	if cfg.URLFile != "" {
		fromFile, err := urlsFromFile(cfg.URLFile)
		if err != nil {
			return nil, err
		}
		urls = append(urls, fromFile...)
	}

	if cfg.PageURL != "" {
		fromPage, err := urlsFromPage(ctx, cfg.PageURL, f)
		if err != nil {
			return nil, err
		}
		urls = append(urls, fromPage...)
	}

	return dedupeStrings(urls), nil
}

// urlsFromFile extracts http(s) urls embedded in an arbitrary text file.
// Plain url lists, markdown, and saved html sources all work.
func urlsFromFile(path string) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read url file: %v", err)
	}

	rx := xurls.Strict()
	links := rx.FindAllString(string(b), -1)
	log.Debugf("extracted %d urls from %s", len(links), path)

	return links, nil
}

// urlsFromPage fetches an html page and returns the image urls it
// references. It reuses the fetcher's http client and timeout.
func urlsFromPage(ctx context.Context, pageURL string, f *download.Fetcher) ([]string, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid page url: %v", err)
	}

	ctx, cancel := context.WithTimeout(ctx, f.Timeout())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", pageURL, nil)
	if err != nil {
		return nil, err
	}

	rsp, err := f.HTTPClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page: %v", err)
	}
	defer rsp.Body.Close()

	if rsp.StatusCode < 200 || rsp.StatusCode >= 300 {
		return nil, fmt.Errorf("failed to fetch page: error status: %s", rsp.Status)
	}

	doc, err := html.Parse(rsp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %v", err)
	}

	urls := web.ImageURLs(doc, base)
	log.Debugf("extracted %d image urls from %s", len(urls), pageURL)

	return urls, nil
}

// dedupeStrings removes repeated entries from a slice, keeping the first
// occurrence of each.
func dedupeStrings(ss []string) []string {
	seen := map[string]struct{}{}
	var out []string

	for _, s := range ss {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	return out
}

// processURLs fetches each url in the given slice, cfg.Jobs fetches in
// parallel, and reports one outcome line per attempt. Individual fetch
// failures are reported, not fatal.
func processURLs(ctx context.Context, cfg *Config, f *download.Fetcher, urls []string) error {
	g := &errgroup.Group{}

	var storedMtx sync.Mutex
	var stored []string

	startGoroutines := func() {
		urlChan := make(chan string)
		defer close(urlChan)

		// Create a set of goroutines to fetch urls in parallel.
		for i := 0; i < cfg.Jobs; i++ {
			g.Go(func() error {
				// Read urls from the channel and fetch them sequentially.
				// Proceed until channel closed.
				for u := range urlChan {
					res := processURL(ctx, f, u)
					if res != nil {
						storedMtx.Lock()
						stored = append(stored, res.Filename)
						storedMtx.Unlock()
					}
				}
				return nil
			})
		}

		for _, u := range urls {
			select {
			case <-ctx.Done():
				// Operation aborted. Return early to execute deferred
				// channel close.
				return

			case urlChan <- u:
			}
		}
	}

	startGoroutines()

	err := g.Wait()
	if err != nil {
		return err
	}

	if cfg.Gallery && len(stored) > 0 {
		err := writeGallery(cfg.DestDir, stored)
		if err != nil {
			return err
		}
	}

	return nil
}

// processURL runs one fetch and logs its outcome. It returns the fetch
// result on success, nil otherwise.
func processURL(ctx context.Context, f *download.Fetcher, u string) *download.Result {
	res, err := f.Fetch(ctx, u)
	if err != nil {
		switch download.Outcome(err) {
		case "duplicate", "rejected":
			log.Warnf("skipped %s: %v", u, err)
		default:
			log.WithError(err).Errorf("failed to fetch %s (%s)", u, download.Outcome(err))
		}
		return nil
	}

	log.Infof("stored %s: %s (%d bytes)", u, res.Path, res.Size)
	return res
}

// writeGallery renders an index.html in the destination directory linking
// every image stored during this run.
func writeGallery(destDir string, filenames []string) error {
	sort.Strings(filenames)
	page := web.BuildGallery(filenames)

	dest := filepath.Join(destDir, "index.html")
	log.Infof("writing gallery: %s", dest)

	return os.WriteFile(dest, []byte(page), 0644)
}
