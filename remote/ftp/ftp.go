// Package ftp implements a Remote backed by an FTP or FTPS server.
//
// Listings use MLSD, uploads use STOR,
// and modification times are set with MFMT,
// so the server must support the modern listing extensions
// (RFC 3659) for mirroring to work.
package ftp

import (
	"context"
	"crypto/tls"
	"encoding/json"
	stderrs "errors"
	"io"
	"net"
	"net/textproto"
	"os"
	"strings"
	"time"

	ftplib "github.com/jlaffaye/ftp"
	"github.com/pkg/errors"

	"github.com/dolovcak/htpublish"
	"github.com/dolovcak/htpublish/remote"
	"github.com/dolovcak/htpublish/status"
)

var _ htpublish.Remote = &Remote{}

// DefaultTimeout is the control-connection timeout used when none is configured.
const DefaultTimeout = 3 * time.Second

// Config holds the connection parameters for an FTP remote.
type Config struct {
	Hostname string        // host or host:port; port 21 is assumed when missing
	Username string
	Password string
	Timeout  time.Duration // control-connection timeout; DefaultTimeout when zero
	TLS      string        // "", "explicit", or "implicit"
	Debug    io.Writer     // protocol trace destination; nil for none
}

// Remote is an FTP implementation of htpublish.Remote.
type Remote struct {
	conn *ftplib.ServerConn
}

// Dial connects and logs in to an FTP server.
func Dial(ctx context.Context, conf Config) (*Remote, error) {
	if conf.Timeout == 0 {
		conf.Timeout = DefaultTimeout
	}

	addr := conf.Hostname
	if !strings.Contains(addr, ":") {
		addr = net.JoinHostPort(addr, "21")
	}
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing address %s", addr)
	}

	opts := []ftplib.DialOption{
		ftplib.DialWithContext(ctx),
		ftplib.DialWithTimeout(conf.Timeout),
	}
	switch conf.TLS {
	case "":
	case "explicit":
		opts = append(opts, ftplib.DialWithExplicitTLS(&tls.Config{ServerName: host}))
	case "implicit":
		opts = append(opts, ftplib.DialWithTLS(&tls.Config{ServerName: host}))
	default:
		return nil, errors.Errorf("unknown tls mode %q", conf.TLS)
	}
	if conf.Debug != nil {
		opts = append(opts, ftplib.DialWithDebugOutput(conf.Debug))
	}

	conn, err := ftplib.Dial(addr, opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "dialing %s", addr)
	}
	err = conn.Login(conf.Username, conf.Password)
	if err != nil {
		conn.Quit()
		return nil, errors.Wrapf(err, "logging in as %s", conf.Username)
	}
	status.Okf("LOGIN %s@%s", conf.Username, host)

	return &Remote{conn: conn}, nil
}

// List produces the normalized listing of a remote directory.
func (r *Remote) List(_ context.Context, dir string) (htpublish.Listing, error) {
	entries, err := r.conn.List(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "listing %s", dir)
	}
	return toListing(entries), nil
}

func toListing(entries []*ftplib.Entry) htpublish.Listing {
	listing := make(htpublish.Listing)
	for _, entry := range entries {
		if entry.Name == "." || entry.Name == ".." {
			continue
		}
		e := htpublish.Entry{
			Name:    entry.Name,
			ModTime: entry.Time.UTC(),
		}
		switch entry.Type {
		case ftplib.EntryTypeFile:
			e.Kind = htpublish.File
			e.Size = entry.Size
		case ftplib.EntryTypeFolder:
			e.Kind = htpublish.Dir
		default:
			continue
		}
		listing[e.Name] = e
	}
	return listing
}

// MkDir creates a remote directory.
func (r *Remote) MkDir(_ context.Context, dir string) error {
	return errors.Wrapf(r.conn.MakeDir(dir), "making dir %s", dir)
}

// RemoveDir removes an empty remote directory.
// A 550 reply (directory not empty) maps to htpublish.ErrNotEmpty.
func (r *Remote) RemoveDir(_ context.Context, dir string) error {
	return errors.Wrapf(removeDirErr(r.conn.RemoveDir(dir)), "removing dir %s", dir)
}

func removeDirErr(err error) error {
	var te *textproto.Error
	if stderrs.As(err, &te) && te.Code == ftplib.StatusFileUnavailable {
		return htpublish.ErrNotEmpty
	}
	return err
}

// RemoveFile removes a remote file.
func (r *Remote) RemoveFile(_ context.Context, file string) error {
	return errors.Wrapf(r.conn.Delete(file), "deleting %s", file)
}

// Store uploads the contents of rd to a remote file.
func (r *Remote) Store(_ context.Context, file string, rd io.Reader) error {
	return errors.Wrapf(r.conn.Stor(file, rd), "storing %s", file)
}

// SetModTime sets a remote file's modification time with MFMT.
func (r *Remote) SetModTime(_ context.Context, file string, t time.Time) error {
	if !r.conn.IsSetTimeSupported() {
		return errors.Wrapf(htpublish.ErrModTimeUnsupported, "setting mtime of %s", file)
	}
	return errors.Wrapf(r.conn.SetTime(file, t.UTC()), "setting mtime of %s", file)
}

// Close sends QUIT and closes the connection.
func (r *Remote) Close() error {
	err := r.conn.Quit()
	if err == nil {
		status.Okf("BYE")
	}
	return err
}

func init() {
	remote.Register("ftp", func(ctx context.Context, conf map[string]interface{}) (htpublish.Remote, error) {
		hostname, ok := conf["hostname"].(string)
		if !ok {
			return nil, errors.New(`missing "hostname" parameter`)
		}
		c := Config{Hostname: hostname}
		if u, ok := conf["username"].(string); ok {
			c.Username = u
		}
		if p, ok := conf["password"].(string); ok {
			c.Password = p
		}
		if m, ok := conf["tls"].(string); ok {
			c.TLS = m
		}
		if d, ok := conf["debug"].(bool); ok && d {
			c.Debug = os.Stderr
		}
		if v, ok := conf["timeout"]; ok {
			secs, err := confSeconds(v)
			if err != nil {
				return nil, errors.Wrap(err, `parsing "timeout" parameter`)
			}
			if secs < 1 || secs > 60 {
				return nil, errors.Errorf("bogus timeout value: %d", secs)
			}
			c.Timeout = time.Duration(secs) * time.Second
		}
		return Dial(ctx, c)
	})
}

func confSeconds(v interface{}) (int, error) {
	switch n := v.(type) {
	case json.Number:
		i, err := n.Int64()
		return int(i), err
	case float64:
		return int(n), nil
	}
	return 0, errors.Errorf("unexpected type %T", v)
}
