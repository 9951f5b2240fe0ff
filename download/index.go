package download

import (
	"crypto/md5"
	"encoding/hex"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
)

// imageExts is the extension allow-list used when scanning the destination
// directory for previously fetched images.
var imageExts = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
	".bmp":  {},
	".webp": {},
	".svg":  {},
	".ico":  {},
}

// hashIndex is the in-memory set of content hashes for images already on
// disk. It only grows during a run and is rebuilt from disk on each start.
type hashIndex struct {
	mtx    sync.Mutex // Protects the "hashes" field.
	hashes map[string]struct{}
}

func newHashIndex() *hashIndex {
	return &hashIndex{
		hashes: map[string]struct{}{},
	}
}

// hashBytes computes the content hash used for duplicate detection. This is
// content addressing, not security, so md5 is plenty.
func hashBytes(b []byte) string {
	sum := md5.Sum(b)
	return hex.EncodeToString(sum[:])
}

// isImageFile returns true if the given filename carries one of the
// recognized image extensions.
func isImageFile(name string) bool {
	_, ok := imageExts[strings.ToLower(filepath.Ext(name))]
	return ok
}

// scan recursively hashes every image file under dir into the index.
// Unreadable files are skipped and counted. A missing directory leaves the
// index empty; the directory is created lazily on first store.
func (idx *hashIndex) scan(dir string) {
	var indexed, skipped int

	filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Missing root or unreadable subtree. Best effort; keep going.
			return nil
		}
		if d.IsDir() || !isImageFile(d.Name()) {
			return nil
		}

		b, err := os.ReadFile(path)
		if err != nil {
			log.Debugf("skipping unreadable file: %s: %v", path, err)
			skipped++
			return nil
		}

		idx.add(hashBytes(b))
		indexed++
		return nil
	})

	log.Debugf("scanned %s: indexed=%d skipped=%d", dir, indexed, skipped)
}

// seenOrAdd returns true if the given hash is already present in the index.
// Otherwise, it records the hash and returns false. Check and insert are a
// single guarded step so the first writer wins under parallel fetches.
func (idx *hashIndex) seenOrAdd(hash string) bool {
	idx.mtx.Lock()
	defer idx.mtx.Unlock()

	_, ok := idx.hashes[hash]
	if ok {
		return true
	}

	idx.hashes[hash] = struct{}{}
	return false
}

func (idx *hashIndex) add(hash string) {
	idx.mtx.Lock()
	defer idx.mtx.Unlock()

	idx.hashes[hash] = struct{}{}
}

// size returns the number of hashes in the index.
func (idx *hashIndex) size() int {
	idx.mtx.Lock()
	defer idx.mtx.Unlock()

	return len(idx.hashes)
}
