package dir

import (
	"context"
	stderrs "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/dolovcak/htpublish"
)

func TestList(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	mtime := time.Date(2023, 7, 14, 9, 30, 0, 0, time.UTC)

	if err := os.WriteFile(filepath.Join(root, "a.txt"), []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(filepath.Join(root, "a.txt"), mtime, mtime); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(root, "sub"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink("a.txt", filepath.Join(root, "link")); err != nil {
		t.Fatal(err)
	}

	r := New()
	listing, err := r.List(ctx, root)
	if err != nil {
		t.Fatal(err)
	}

	if _, ok := listing["link"]; ok {
		t.Error("symlink survived normalization")
	}
	got := listing["a.txt"]
	want := htpublish.Entry{Name: "a.txt", Kind: htpublish.File, Size: 5, ModTime: mtime}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("file entry mismatch (-want +got):\n%s", diff)
	}
	if e := listing["sub"]; e.Kind != htpublish.Dir {
		t.Errorf("sub is a %s, want dir", e.Kind)
	}
	if len(listing) != 2 {
		t.Errorf("listing has %d entries, want 2", len(listing))
	}
}

func TestRemoveDirNotEmpty(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()

	if err := os.WriteFile(filepath.Join(root, "a.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	r := New()
	err := r.RemoveDir(ctx, root)
	if !stderrs.Is(err, htpublish.ErrNotEmpty) {
		t.Fatalf("got %v, want ErrNotEmpty", err)
	}

	if err := r.RemoveFile(ctx, filepath.Join(root, "a.txt")); err != nil {
		t.Fatal(err)
	}
	if err := r.RemoveDir(ctx, root); err != nil {
		t.Fatal(err)
	}
}

func TestStoreAndSetModTime(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	file := filepath.Join(root, "out.txt")
	mtime := time.Date(2023, 7, 14, 9, 30, 0, 0, time.UTC)

	r := New()
	if err := r.Store(ctx, file, strings.NewReader("payload")); err != nil {
		t.Fatal(err)
	}
	if err := r.SetModTime(ctx, file, mtime); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(file)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "payload" {
		t.Errorf("file contains %q", got)
	}
	stamped, err := htpublish.LocalModTime(file)
	if err != nil {
		t.Fatal(err)
	}
	if !stamped.Equal(mtime) {
		t.Errorf("mtime is %s, want %s", stamped, mtime)
	}

	// Store replaces existing contents.
	if err := r.Store(ctx, file, strings.NewReader("v2")); err != nil {
		t.Fatal(err)
	}
	got, err = os.ReadFile(file)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "v2" {
		t.Errorf("file contains %q, want %q", got, "v2")
	}
}
