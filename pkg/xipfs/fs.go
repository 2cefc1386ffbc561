package xipfs

import (
	"io"
	"io/fs"
	"time"
)

// FS returns the store as a single-file fs.FS rooted at ".".
func (s *Store) FS() fs.FS {
	return storeFS{s}
}

type storeFS struct {
	s *Store
}

var (
	_ fs.StatFS    = storeFS{}
	_ fs.ReadDirFS = storeFS{}
)

func (fsys storeFS) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	if name == "." {
		return &rootDir{fsys: fsys}, nil
	}
	if name != fsys.s.name {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}

	f, err := fsys.s.Open(name, "r")
	if err != nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: err}
	}
	return fsFile{f}, nil
}

func (fsys storeFS) Stat(name string) (fs.FileInfo, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrInvalid}
	}
	switch name {
	case ".":
		return dirInfo{}, nil
	case fsys.s.name:
		return fileInfo{name: fsys.s.name, size: fsys.s.blob.Len()}, nil
	}
	return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrNotExist}
}

func (fsys storeFS) ReadDir(name string) ([]fs.DirEntry, error) {
	if name != "." {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: fs.ErrNotExist}
	}
	info := fileInfo{name: fsys.s.name, size: fsys.s.blob.Len()}
	return []fs.DirEntry{fs.FileInfoToDirEntry(info)}, nil
}

type fsFile struct {
	*File
}

func (f fsFile) Stat() (fs.FileInfo, error) {
	return fileInfo{name: f.name, size: f.Size()}, nil
}

type rootDir struct {
	fsys storeFS
	done bool
}

func (d *rootDir) Stat() (fs.FileInfo, error) { return dirInfo{}, nil }
func (d *rootDir) Close() error               { return nil }

func (d *rootDir) Read([]byte) (int, error) {
	return 0, &fs.PathError{Op: "read", Path: ".", Err: fs.ErrInvalid}
}

func (d *rootDir) ReadDir(n int) ([]fs.DirEntry, error) {
	if d.done {
		if n > 0 {
			return nil, io.EOF
		}
		return nil, nil
	}
	d.done = true
	return d.fsys.ReadDir(".")
}

type fileInfo struct {
	name string
	size int64
}

func (fi fileInfo) Name() string       { return fi.name }
func (fi fileInfo) Size() int64        { return fi.size }
func (fi fileInfo) Mode() fs.FileMode  { return 0o444 }
func (fi fileInfo) ModTime() time.Time { return time.Time{} }
func (fi fileInfo) IsDir() bool        { return false }
func (fi fileInfo) Sys() any           { return nil }

type dirInfo struct{}

func (dirInfo) Name() string       { return "." }
func (dirInfo) Size() int64        { return 0 }
func (dirInfo) Mode() fs.FileMode  { return fs.ModeDir | 0o555 }
func (dirInfo) ModTime() time.Time { return time.Time{} }
func (dirInfo) IsDir() bool        { return true }
func (dirInfo) Sys() any           { return nil }
