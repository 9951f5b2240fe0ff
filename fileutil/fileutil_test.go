package fileutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileExists(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "f.txt")
	if FileExists(path) {
		t.Errorf("FileExists(%q) = true before create", path)
	}

	err := os.WriteFile(path, []byte("x"), 0644)
	if err != nil {
		t.Fatal(err)
	}

	if !FileExists(path) {
		t.Errorf("FileExists(%q) = false after create", path)
	}
	if !FileExists(dir) {
		t.Errorf("FileExists(%q) = false for directory", dir)
	}
}

func TestIsDir(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "f.txt")
	err := os.WriteFile(path, []byte("x"), 0644)
	if err != nil {
		t.Fatal(err)
	}

	if !IsDir(dir) {
		t.Errorf("IsDir(%q) = false for directory", dir)
	}
	if IsDir(path) {
		t.Errorf("IsDir(%q) = true for regular file", path)
	}
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b", "c")

	err := EnsureDir(dir)
	if err != nil {
		t.Fatalf("EnsureDir() failed: %v", err)
	}
	if !IsDir(dir) {
		t.Errorf("directory not created: %s", dir)
	}

	// Idempotent.
	err = EnsureDir(dir)
	if err != nil {
		t.Errorf("EnsureDir() on existing dir failed: %v", err)
	}
}
