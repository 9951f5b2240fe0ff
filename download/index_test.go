package download

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeTestFile(t *testing.T, dir string, name string, b []byte) {
	t.Helper()

	path := filepath.Join(dir, name)
	err := os.MkdirAll(filepath.Dir(path), 0755)
	if err != nil {
		t.Fatal(err)
	}
	err = os.WriteFile(path, b, 0644)
	if err != nil {
		t.Fatal(err)
	}
}

func TestScanIdempotent(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "a.jpg", []byte{0xFF, 0xD8, 0xFF, 0x01})
	writeTestFile(t, dir, "b.png", []byte{0x89, 'P', 'N', 'G', 0x02})
	writeTestFile(t, dir, "nested/c.gif", []byte("GIF89a-test"))

	idx1 := newHashIndex()
	idx1.scan(dir)

	idx2 := newHashIndex()
	idx2.scan(dir)

	if idx1.size() != 3 {
		t.Errorf("indexed %d files, want 3", idx1.size())
	}
	if !reflect.DeepEqual(idx1.hashes, idx2.hashes) {
		t.Errorf("repeated scans produced different hash sets")
	}
}

func TestScanSkipsNonImages(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "a.jpg", []byte("one"))
	writeTestFile(t, dir, "notes.txt", []byte("two"))
	writeTestFile(t, dir, "noext", []byte("three"))

	idx := newHashIndex()
	idx.scan(dir)

	if idx.size() != 1 {
		t.Errorf("indexed %d files, want 1", idx.size())
	}
}

func TestScanMissingDir(t *testing.T) {
	idx := newHashIndex()
	idx.scan(filepath.Join(t.TempDir(), "does-not-exist"))

	if idx.size() != 0 {
		t.Errorf("indexed %d files from missing dir, want 0", idx.size())
	}
}

func TestScanCaseInsensitiveExt(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "a.JPG", []byte("one"))
	writeTestFile(t, dir, "b.WebP", []byte("two"))

	idx := newHashIndex()
	idx.scan(dir)

	if idx.size() != 2 {
		t.Errorf("indexed %d files, want 2", idx.size())
	}
}

func TestSeenOrAdd(t *testing.T) {
	idx := newHashIndex()

	h := hashBytes([]byte("content"))
	if idx.seenOrAdd(h) {
		t.Errorf("first seenOrAdd() = true, want false")
	}
	if !idx.seenOrAdd(h) {
		t.Errorf("second seenOrAdd() = false, want true")
	}
	if idx.size() != 1 {
		t.Errorf("size = %d, want 1", idx.size())
	}
}

func TestHashBytesStable(t *testing.T) {
	a := hashBytes([]byte("same"))
	b := hashBytes([]byte("same"))
	c := hashBytes([]byte("different"))

	if a != b {
		t.Errorf("identical bytes hashed differently: %s vs %s", a, b)
	}
	if a == c {
		t.Errorf("distinct bytes produced the same hash: %s", a)
	}
}
