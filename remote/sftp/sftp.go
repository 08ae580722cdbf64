// Package sftp implements a Remote backed by an SFTP server.
package sftp

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"
	sftplib "github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"github.com/dolovcak/htpublish"
	"github.com/dolovcak/htpublish/remote"
	"github.com/dolovcak/htpublish/status"
)

var _ htpublish.Remote = &Remote{}

// DefaultTimeout is the dial timeout used when none is configured.
const DefaultTimeout = 3 * time.Second

// Config holds the connection parameters for an SFTP remote.
type Config struct {
	Hostname string
	Port     int // 22 when zero
	Username string
	Password string        // password auth, used when KeyFile is empty
	KeyFile  string        // path to a private key for public-key auth
	Timeout  time.Duration // dial timeout; DefaultTimeout when zero
}

// Remote is an SFTP implementation of htpublish.Remote.
type Remote struct {
	conn   *ssh.Client
	client *sftplib.Client
}

// Dial connects to an SSH server and opens an SFTP session.
func Dial(_ context.Context, conf Config) (*Remote, error) {
	if conf.Timeout == 0 {
		conf.Timeout = DefaultTimeout
	}
	port := conf.Port
	if port == 0 {
		port = 22
	}

	var auth ssh.AuthMethod
	if conf.KeyFile != "" {
		key, err := os.ReadFile(conf.KeyFile)
		if err != nil {
			return nil, errors.Wrapf(err, "reading key file %s", conf.KeyFile)
		}
		signer, err := ssh.ParsePrivateKey(key)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing key file %s", conf.KeyFile)
		}
		auth = ssh.PublicKeys(signer)
	} else {
		auth = ssh.Password(conf.Password)
	}

	addr := net.JoinHostPort(conf.Hostname, strconv.Itoa(port))
	conn, err := ssh.Dial("tcp", addr, &ssh.ClientConfig{
		User:            conf.Username,
		Auth:            []ssh.AuthMethod{auth},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         conf.Timeout,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "dialing %s", addr)
	}

	client, err := sftplib.NewClient(conn)
	if err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "starting sftp session")
	}
	status.Okf("LOGIN %s@%s", conf.Username, conf.Hostname)

	return &Remote{conn: conn, client: client}, nil
}

// List produces the normalized listing of a remote directory.
func (r *Remote) List(_ context.Context, dir string) (htpublish.Listing, error) {
	infos, err := r.client.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "listing %s", dir)
	}

	listing := make(htpublish.Listing)
	for _, info := range infos {
		e := htpublish.Entry{
			Name:    info.Name(),
			ModTime: info.ModTime().Truncate(time.Second).UTC(),
		}
		switch {
		case info.IsDir():
			e.Kind = htpublish.Dir
		case info.Mode().IsRegular():
			e.Kind = htpublish.File
			e.Size = uint64(info.Size())
		default:
			continue
		}
		listing[e.Name] = e
	}
	return listing, nil
}

// MkDir creates a remote directory.
func (r *Remote) MkDir(_ context.Context, dir string) error {
	return errors.Wrapf(r.client.Mkdir(dir), "making dir %s", dir)
}

// RemoveDir removes an empty remote directory.
// Servers report removal of a non-empty directory as a bare failure status,
// so non-emptiness is detected by listing.
func (r *Remote) RemoveDir(_ context.Context, dir string) error {
	err := r.client.RemoveDirectory(dir)
	if err == nil {
		return nil
	}
	if infos, lerr := r.client.ReadDir(dir); lerr == nil && len(infos) > 0 {
		return errors.Wrapf(htpublish.ErrNotEmpty, "removing dir %s", dir)
	}
	return errors.Wrapf(err, "removing dir %s", dir)
}

// RemoveFile removes a remote file.
func (r *Remote) RemoveFile(_ context.Context, file string) error {
	return errors.Wrapf(r.client.Remove(file), "deleting %s", file)
}

// Store uploads the contents of rd to a remote file.
func (r *Remote) Store(_ context.Context, file string, rd io.Reader) error {
	f, err := r.client.Create(file)
	if err != nil {
		return errors.Wrapf(err, "opening %s for writing", file)
	}
	defer f.Close()

	_, err = io.Copy(f, rd)
	return errors.Wrapf(err, "writing %s", file)
}

// SetModTime sets a remote file's modification time.
func (r *Remote) SetModTime(_ context.Context, file string, t time.Time) error {
	return errors.Wrapf(r.client.Chtimes(file, t, t), "setting mtime of %s", file)
}

// Close shuts down the SFTP session and the SSH connection.
func (r *Remote) Close() error {
	err := r.client.Close()
	if cerr := r.conn.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		status.Okf("BYE")
	}
	return err
}

func init() {
	remote.Register("sftp", func(ctx context.Context, conf map[string]interface{}) (htpublish.Remote, error) {
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
		if k, ok := conf["keyFile"].(string); ok {
			c.KeyFile = k
		}
		if v, ok := conf["port"]; ok {
			port, err := confInt(v)
			if err != nil {
				return nil, errors.Wrap(err, `parsing "port" parameter`)
			}
			c.Port = port
		}
		if v, ok := conf["timeout"]; ok {
			secs, err := confInt(v)
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

func confInt(v interface{}) (int, error) {
	switch n := v.(type) {
	case json.Number:
		i, err := n.Int64()
		return int(i), err
	case float64:
		return int(n), nil
	}
	return 0, errors.Errorf("unexpected type %T", v)
}
