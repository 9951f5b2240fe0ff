// Package download implements the fetch-validate-dedupe-persist pipeline
// for remote images.
package download

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ccollins476ad/imgfetch/fileutil"
)

// DefaultTimeout bounds a single fetch, connect through body read.
const DefaultTimeout = 10 * time.Second

// Fetcher retrieves remote images and stores them in a local directory. It
// owns an http client and an in-memory index of content hashes seeded by
// scanning the directory at construction.
type Fetcher struct {
	destDir string // constant
	timeout time.Duration

	hc  *http.Client
	idx *hashIndex
}

// Result describes a successfully stored image.
type Result struct {
	URL         string
	Filename    string // Relative to destination directory
	Path        string
	ContentType string
	Size        int
}

// NewFetcher creates a fetcher that stores images in destDir. It scans
// destDir for existing images so that refetched content is reported as
// duplicate. A missing destDir is not an error; it is created on first
// store.
func NewFetcher(destDir string, timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	f := &Fetcher{
		destDir: destDir,
		timeout: timeout,
		hc:      &http.Client{},
		idx:     newHashIndex(),
	}
	f.idx.scan(destDir)

	log.Debugf("fetcher ready: dir=%s indexed=%d", destDir, f.idx.size())

	return f
}

// Fetch downloads the image at url=u, validates the response, checks its
// content hash against the index, and writes it to the destination
// directory under a collision-safe name. Every anticipated failure comes
// back as an error from the taxonomy in errors.go; use Outcome to classify.
func (f *Fetcher) Fetch(ctx context.Context, u string) (*Result, error) {
	b, contentType, err := f.get(ctx, u)
	if err != nil {
		return nil, err
	}

	err = validateSignature(b)
	if err != nil {
		return nil, err
	}

	hash := hashBytes(b)
	if f.idx.seenOrAdd(hash) {
		return nil, fmt.Errorf("%w: hash=%s", ErrDuplicate, hash)
	}

	filename := deriveFilename(u, contentType, time.Now())

	err = fileutil.EnsureDir(f.destDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFilesystem, err)
	}

	dest, err := writeNew(f.destDir, filename, b)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFilesystem, err)
	}

	log.Debugf("stored %s: %s", u, dest)

	return &Result{
		URL:         u,
		Filename:    filepath.Base(dest),
		Path:        dest,
		ContentType: contentType,
		Size:        len(b),
	}, nil
}

// writeNew writes b to a fresh file under dir, trying collision-suffixed
// candidates for filename until one can be created exclusively. Creating
// with O_EXCL makes losing a naming race to a parallel fetch advance to the
// next suffix instead of overwriting the winner's file. It returns the path
// of the written file.
func writeNew(dir string, filename string, b []byte) (string, error) {
	for i := 0; ; i++ {
		dest := candidatePath(dir, filename, i)

		fh, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if os.IsExist(err) {
			continue
		}
		if err != nil {
			return "", err
		}

		_, werr := fh.Write(b)
		cerr := fh.Close()
		if werr != nil {
			return "", werr
		}
		if cerr != nil {
			return "", cerr
		}

		return dest, nil
	}
}

// HTTPClient returns the fetcher's http client.
func (f *Fetcher) HTTPClient() *http.Client {
	return f.hc
}

// Timeout returns the fetcher's per-request timeout.
func (f *Fetcher) Timeout() time.Duration {
	return f.timeout
}
