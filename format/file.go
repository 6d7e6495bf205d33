package format

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"

	"github.com/milk9111/sonicstage/stage"
)

var ErrClosed = errors.New("format: file already committed or discarded")

// Stage writes the engine's .stage binary.
var Stage = MapFormat{
	Name:        stage.FormatName,
	Description: stage.Description,
	Extension:   stage.Extension,
	Write:       WriteStage,
}

// BinaryFile is a write-once output file. Data goes to a pending file in
// the destination directory and only replaces path on Commit.
type BinaryFile struct {
	pending *renameio.PendingFile
}

func CreateBinaryFile(path string) (*BinaryFile, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	pending, err := renameio.NewPendingFile(path,
		renameio.WithTempDir(dir),
		renameio.WithStaticPermissions(0644),
	)
	if err != nil {
		return nil, err
	}
	return &BinaryFile{pending: pending}, nil
}

func (f *BinaryFile) Write(p []byte) (int, error) {
	if f.pending == nil {
		return 0, ErrClosed
	}
	return f.pending.Write(p)
}

func (f *BinaryFile) Commit() error {
	if f.pending == nil {
		return ErrClosed
	}
	pending := f.pending
	f.pending = nil

	if err := pending.CloseAtomicallyReplace(); err != nil {
		pending.Cleanup()
		return err
	}
	return nil
}

// Discard drops uncommitted data. It is a no-op after Commit.
func (f *BinaryFile) Discard() error {
	if f.pending == nil {
		return nil
	}
	pending := f.pending
	f.pending = nil
	return pending.Cleanup()
}

// WriteStage encodes m and commits it to path. The file at path is left
// untouched when encoding fails.
func WriteStage(m stage.Map, path string) error {
	if _, err := stage.Validate(m); err != nil {
		return err
	}
	f, err := CreateBinaryFile(path)
	if err != nil {
		return fmt.Errorf("format: create %s: %w", path, err)
	}
	defer f.Discard()
	return stage.Export(m, f)
}
