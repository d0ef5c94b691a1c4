package upload

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDiskStore_Save(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "uploads")
	store, err := NewDiskStore(dir, 16)
	if err != nil {
		t.Fatalf("NewDiskStore returned error: %v", err)
	}
	store.now = func() time.Time { return time.UnixMilli(1700000000000) }

	name, err := store.Save(context.Background(), "Me.JPG", strings.NewReader("image-bytes"))
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	if !strings.HasPrefix(name, "1700000000000-") || !strings.HasSuffix(name, ".jpg") {
		t.Fatalf("unexpected file name: %s", name)
	}

	b, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("failed to read stored file: %v", err)
	}
	if string(b) != "image-bytes" {
		t.Fatalf("unexpected stored content: %q", string(b))
	}
}

func TestDiskStore_SaveTooLarge(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store, err := NewDiskStore(dir, 4)
	if err != nil {
		t.Fatalf("NewDiskStore returned error: %v", err)
	}

	if _, err := store.Save(context.Background(), "a.png", strings.NewReader("12345")); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("failed to read dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected oversized file to be removed, found %d entries", len(entries))
	}
}

func TestDiskStore_SaveRejectsExtension(t *testing.T) {
	t.Parallel()

	store, err := NewDiskStore(t.TempDir(), 1024)
	if err != nil {
		t.Fatalf("NewDiskStore returned error: %v", err)
	}

	if _, err := store.Save(context.Background(), "script.sh", strings.NewReader("#!/bin/sh")); !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
}
