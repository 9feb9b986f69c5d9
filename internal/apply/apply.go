package apply

import (
	"io/fs"
	"os"
	"path/filepath"

	"gitlab.com/tozd/go/errors"
)

// Options controls how a new file is written.
// Mode is the permission of the created file; zero means 0o644.
// Data is written to a temp file in the target directory, fsynced, and then
// hard-linked into place, so the target either appears complete or not at all
// and an existing file is never replaced. Where hard links are unsupported
// the file is created with O_EXCL and removed again if writing fails.
type Options struct {
	Mode fs.FileMode
}

// WriteNew creates path with data. It fails with an error matching
// fs.ErrExist if path already exists, and never creates parent directories.
//  1. refuse an existing target
//  2. write temp in the same dir, fsync, close
//  3. link temp to target (fails if the target appeared meanwhile)
//  4. remove temp, fsync the parent directory (best-effort)
func WriteNew(path string, data []byte, opts Options) error {
	mode := opts.Mode
	if mode == 0 {
		mode = 0o644
	}

	// 1) refuse existing target
	if _, err := os.Lstat(path); err == nil {
		return errors.Errorf("apply: %s: %w", path, fs.ErrExist)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return errors.Errorf("apply: stat: %w", err)
	}

	dir := filepath.Dir(path)
	base := filepath.Base(path)

	// 2) write temp in same dir
	tf, err := os.CreateTemp(dir, "."+base+".tmp-*")
	if err != nil {
		return errors.Errorf("apply: temp: %w", err)
	}
	defer func(name string) { _ = os.Remove(name) }(tf.Name())

	if _, err := tf.Write(data); err != nil {
		return errors.Join(errors.Errorf("apply: write temp: %w", err), tf.Close())
	}
	if err := tf.Chmod(mode); err != nil {
		return errors.Join(errors.Errorf("apply: chmod temp: %w", err), tf.Close())
	}
	if err := tf.Sync(); err != nil {
		return errors.Join(errors.Errorf("apply: fsync temp: %w", err), tf.Close())
	}
	if err := tf.Close(); err != nil {
		return errors.Errorf("apply: close temp: %w", err)
	}

	// 3) publish without clobbering
	if err := os.Link(tf.Name(), path); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return errors.Errorf("apply: %s: %w", path, fs.ErrExist)
		}
		if err := writeExclusive(path, data, mode); err != nil {
			return err
		}
	}

	// 4) fsync parent dir (best effort; may not work on Windows)
	_ = syncDir(dir)

	return nil
}

// writeExclusive is the fallback for filesystems without hard links.
func writeExclusive(path string, data []byte, mode fs.FileMode) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, mode)
	if err != nil {
		return errors.Errorf("apply: create: %w", err)
	}
	ok := false
	defer func() {
		if !ok {
			_ = os.Remove(path)
		}
	}()
	if _, err := f.Write(data); err != nil {
		return errors.Join(errors.Errorf("apply: write: %w", err), f.Close())
	}
	if err := f.Sync(); err != nil {
		return errors.Join(errors.Errorf("apply: fsync: %w", err), f.Close())
	}
	if err := f.Close(); err != nil {
		return errors.Errorf("apply: close: %w", err)
	}
	ok = true
	return nil
}

func syncDir(dir string) error {
	df, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer func() { _ = df.Close() }()
	return df.Sync()
}
