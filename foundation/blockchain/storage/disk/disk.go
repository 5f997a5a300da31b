// Package disk implements the ability to read and write the ledger documents
// as JSON files in a directory.
package disk

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/ardanlabs/minicoin/foundation/blockchain/database"
)

// Set of file names used inside the database directory.
const (
	chainFile   = "chain.json"
	usersFile   = "users.json"
	pendingFile = "pending.json"
)

// Disk represents the serialization implementation for reading and storing
// the ledger documents in their own files on disk. Every write replaces the
// whole document. This implements the database.Serializer interface.
type Disk struct {
	dbPath string
}

// New constructs a Disk value for use.
func New(dbPath string) (*Disk, error) {
	if err := os.MkdirAll(dbPath, 0755); err != nil {
		return nil, err
	}

	return &Disk{dbPath: dbPath}, nil
}

// Close in this implementation has nothing to do since files are opened
// and closed for every read and write.
func (d *Disk) Close() error {
	return nil
}

// ReadChain reads the chain document. An absent document is an empty chain.
func (d *Disk) ReadChain() ([]database.Block, error) {
	var blocks []database.Block
	if err := d.read(chainFile, &blocks); err != nil {
		return nil, err
	}

	return blocks, nil
}

// WriteChain replaces the chain document with the specified blocks.
func (d *Disk) WriteChain(blocks []database.Block) error {
	if blocks == nil {
		blocks = []database.Block{}
	}

	return d.write(chainFile, blocks)
}

// ReadUsers reads the users document. An absent document has no users.
func (d *Disk) ReadUsers() (map[string]database.AccountData, error) {
	users := make(map[string]database.AccountData)
	if err := d.read(usersFile, &users); err != nil {
		return nil, err
	}

	return users, nil
}

// WriteUsers replaces the users document with the specified accounts.
func (d *Disk) WriteUsers(users map[string]database.AccountData) error {
	if users == nil {
		users = map[string]database.AccountData{}
	}

	return d.write(usersFile, users)
}

// ReadPending reads the pending transactions document.
func (d *Disk) ReadPending() ([]database.Tx, error) {
	var txs []database.Tx
	if err := d.read(pendingFile, &txs); err != nil {
		return nil, err
	}

	return txs, nil
}

// WritePending replaces the pending transactions document.
func (d *Disk) WritePending(txs []database.Tx) error {
	if txs == nil {
		txs = []database.Tx{}
	}

	return d.write(pendingFile, txs)
}

// ArchiveChain moves the chain document aside so a corrupt chain is kept for
// inspection instead of being overwritten. It returns the new file name.
func (d *Disk) ArchiveChain() (string, error) {
	name := fmt.Sprintf("%s.corrupt-%d", d.getPath(chainFile), time.Now().UTC().Unix())
	if err := os.Rename(d.getPath(chainFile), name); err != nil {
		return "", err
	}

	return name, nil
}

// =============================================================================

// read decodes the named document into the value. A missing file leaves the
// value untouched.
func (d *Disk) read(name string, v any) error {
	f, err := os.Open(d.getPath(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(v); err != nil {
		return fmt.Errorf("decoding %s: %w", name, err)
	}

	return nil
}

// write replaces the named document. The data is written to a temporary file
// in the same directory, synced and then renamed over the old document so a
// reader never sees a partial write.
func (d *Disk) write(name string, v any) error {

	// Marshal the document for writing to disk in a more human readable format.
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	f, err := os.CreateTemp(d.dbPath, "."+name+"-*.tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}

	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}

	if err := os.Rename(tmp, d.getPath(name)); err != nil {
		os.Remove(tmp)
		return err
	}

	return nil
}

// getPath forms the path to the specified document.
func (d *Disk) getPath(name string) string {
	return filepath.Join(d.dbPath, name)
}
