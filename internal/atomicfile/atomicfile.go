// Package atomicfile replaces a file's contents in one step.
//
// Data goes to a temporary file created next to the destination. Commit
// syncs it, renames it over the destination and syncs the directory, so a
// reader sees either the old file or the new one. Discard (or any write
// error) removes the temporary file and leaves the destination untouched.
// A crash before the rename leaves at most an orphan temporary file.
package atomicfile

import (
	"errors"
	"io"
	"os"
	"path/filepath"
)

// ErrDiscarded is returned by calls made after Discard.
var ErrDiscarded = errors.New("atomic file discarded")

var _ io.Writer = &File{}

type File struct {
	dstPath string
	dir     string
	tmp     *os.File
	tmpPath string
	err     error
}

// New creates the temporary file for path. The directory must exist.
func New(path string) (*File, error) {
	dir, name := filepath.Split(path)
	if name == "" {
		return nil, &os.PathError{Op: "open", Path: path, Err: os.ErrInvalid}
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	tmp, err := os.CreateTemp(dir, "."+name+"-*")
	if err != nil {
		return nil, err
	}
	return &File{
		dstPath: path,
		dir:     dir,
		tmp:     tmp,
		tmpPath: tmp.Name(),
	}, nil
}

// TempPath is the path of the temporary file, for diagnostics.
func (f *File) TempPath() string {
	return f.tmpPath
}

func (f *File) closed() bool {
	return f.tmp == nil
}

func (f *File) fail(err error) error {
	if err == nil {
		return nil
	}
	if f.err == nil {
		f.err = err
	}
	f.abort()
	return err
}

func (f *File) abort() {
	if f.closed() {
		return
	}
	_ = f.tmp.Close()
	_ = os.Remove(f.tmpPath)
	f.tmp = nil
}

func (f *File) Write(d []byte) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	n, err := f.tmp.Write(d)
	return n, f.fail(err)
}

// Discard removes the temporary file without touching the destination.
// Safe to defer; a no-op after Commit.
func (f *File) Discard() {
	if f == nil || f.closed() {
		return
	}
	f.err = ErrDiscarded
	f.abort()
}

// Commit makes the written data visible at the destination path.
// Calling it again returns the first result.
func (f *File) Commit() error {
	if f.closed() {
		return f.err
	}
	tmp := f.tmp
	f.tmp = nil

	// https://www.joeshaw.org/dont-defer-close-on-writable-files/
	errSync := tmp.Sync()
	errClose := tmp.Close()

	renamed := false
	defer func() {
		if !renamed {
			_ = os.Remove(f.tmpPath)
		}
	}()

	if f.err != nil {
		return f.err
	}
	err := errSync
	if err == nil {
		err = errClose
	}
	if err == nil {
		err = os.Rename(f.tmpPath, f.dstPath)
		renamed = err == nil
	}
	if renamed {
		// best effort, the rename already happened
		if d, _ := os.Open(f.dir); d != nil {
			_ = d.Sync()
			_ = d.Close()
		}
	}
	if f.err == nil {
		f.err = err
	}
	return f.err
}

// WriteFile writes data to path atomically.
func WriteFile(path string, data []byte) error {
	f, err := New(path)
	if err != nil {
		return err
	}
	defer f.Discard()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Commit()
}

// CopyFile copies src to dst atomically.
func CopyFile(dst, src string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	f, err := New(dst)
	if err != nil {
		return err
	}
	defer f.Discard()
	if _, err := io.Copy(f, in); err != nil {
		return err
	}
	return f.Commit()
}
