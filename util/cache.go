// util/cache.go
// Copyright(c) 2025 viperops2miz contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
)

const cacheDirName = "ViperOps2MIZ"

func cacheRoot() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, cacheDirName), nil
}

func cacheFile(name string) (string, error) {
	root, err := cacheRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, name), nil
}

// CacheStoreObject saves obj, msgpack-encoded and zstd-compressed, under
// name in the user's cache directory. A reader never sees a partially
// written entry.
func CacheStoreObject(name string, obj any) error {
	path, err := cacheFile(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".store-*")
	if err != nil {
		return err
	}
	if err := encodeCompressed(tmp, obj); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func encodeCompressed(f *os.File, obj any) error {
	zw, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return err
	}
	if err := msgpack.NewEncoder(zw).Encode(obj); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}

// CacheRetrieveObject decodes the entry stored under name into obj and
// returns when it was written. A missing entry gives an error satisfying
// os.IsNotExist.
func CacheRetrieveObject(name string, obj any) (time.Time, error) {
	path, err := cacheFile(name)
	if err != nil {
		return time.Time{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return time.Time{}, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return time.Time{}, err
	}

	zr, err := zstd.NewReader(f, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return time.Time{}, err
	}
	defer zr.Close()

	if err := msgpack.NewDecoder(zr).Decode(obj); err != nil {
		return time.Time{}, err
	}
	return fi.ModTime(), nil
}

type cacheEntry struct {
	path    string
	size    int64
	modTime time.Time
}

// CacheCullObjects deletes entries, least recently written first, until
// the cache holds at most maxBytes.
func CacheCullObjects(maxBytes int64) error {
	root, err := cacheRoot()
	if err != nil {
		return err
	}

	var entries []cacheEntry
	var total int64
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root && os.IsNotExist(err) {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if info, err := d.Info(); err == nil {
			entries = append(entries, cacheEntry{path: path, size: info.Size(), modTime: info.ModTime()})
			total += info.Size()
		}
		return nil
	})
	if err != nil {
		return err
	}

	slices.SortFunc(entries, func(a, b cacheEntry) int { return a.modTime.Compare(b.modTime) })
	for _, e := range entries {
		if total <= maxBytes {
			break
		}
		if os.Remove(e.path) == nil {
			total -= e.size
		}
	}
	return nil
}
