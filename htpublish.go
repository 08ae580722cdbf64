package htpublish

import (
	"os"
	"sort"
	"time"
)

// MLSDTime is the timestamp layout of the MLSD "modify" fact:
// an almost-short ISO format, missing the date/time separator.
// MLSD timestamps are always UTC.
const MLSDTime = "20060102150405"

// Kind is the kind of a remote directory entry.
type Kind int

const (
	File Kind = iota
	Dir
)

func (k Kind) String() string {
	if k == Dir {
		return "dir"
	}
	return "file"
}

// Entry is one entry of a remote directory listing.
type Entry struct {
	Name    string
	Kind    Kind
	Size    uint64
	ModTime time.Time // UTC, one-second granularity
}

// Listing is a remote directory listing, keyed by entry name.
// It never contains "." or "..",
// and it only contains files and directories
// (links and other entry types are dropped during normalization).
type Listing map[string]Entry

// Names produces the listing's entry names in lexicographic order.
func (l Listing) Names() []string {
	names := make([]string, 0, len(l))
	for name := range l {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LocalModTime is the modification time of a local file,
// truncated to whole seconds and converted to UTC,
// the granularity at which remote listings report times.
func LocalModTime(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime().Truncate(time.Second).UTC(), nil
}
