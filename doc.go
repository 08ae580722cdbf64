// Package htpublish mirrors a local directory tree to a remote one
// over a file-transfer protocol.
//
// The package defines the types shared by every part of the module:
// a normalized directory listing
// (the common denominator of MLSD, SFTP ReadDir, and os.ReadDir),
// and the Remote interface,
// the narrow set of operations mirroring needs from a server.
//
// Concrete remotes live in the remote subpackages
// and register themselves with the remote package's factory registry.
// The diff-and-sync algorithm lives in the mirror subpackage.
// Command htpublish (in cmd/htpublish) ties them together.
package htpublish
