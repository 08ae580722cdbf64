package htpublish

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
)

func TestIsTimeout(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{fmt.Errorf("read tcp: %w", os.ErrDeadlineExceeded), true},
		{errors.Wrap(os.ErrDeadlineExceeded, "storing /x"), true},
		{errors.New("550 permission denied"), false},
		{os.ErrNotExist, false},
	}
	for _, c := range cases {
		if got := IsTimeout(c.err); got != c.want {
			t.Errorf("IsTimeout(%v) = %v, want %v", c.err, got, c.want)
		}
	}
}

func TestLocalModTime(t *testing.T) {
	file := filepath.Join(t.TempDir(), "f")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	precise := time.Date(2023, 7, 14, 9, 30, 0, 123456789, time.Local)
	if err := os.Chtimes(file, precise, precise); err != nil {
		t.Fatal(err)
	}

	got, err := LocalModTime(file)
	if err != nil {
		t.Fatal(err)
	}
	want := precise.Truncate(time.Second).UTC()
	if !got.Equal(want) {
		t.Errorf("got %s, want %s", got, want)
	}
	if got.Location() != time.UTC {
		t.Errorf("got location %s, want UTC", got.Location())
	}
}

func TestListingNames(t *testing.T) {
	l := Listing{
		"zebra.txt": {Name: "zebra.txt"},
		"apple.txt": {Name: "apple.txt"},
		"img":       {Name: "img", Kind: Dir},
	}
	want := []string{"apple.txt", "img", "zebra.txt"}
	if diff := cmp.Diff(want, l.Names()); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
}
