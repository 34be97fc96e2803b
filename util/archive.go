// util/archive.go
// Copyright(c) 2025 viperops2miz contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zip"
)

var ErrArchiveMemberNotFound = errors.New("Archive member not found")

func findMember(zr *zip.Reader, member string) *zip.File {
	for _, f := range zr.File {
		if f.Name == member {
			return f
		}
	}
	return nil
}

// ReadArchiveMember returns the contents of the named member of the zip
// archive at path.
func ReadArchiveMember(path, member string) (string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", err
	}
	defer zr.Close()

	f := findMember(&zr.Reader, member)
	if f == nil {
		return "", fmt.Errorf("%s: %q: %w", path, member, ErrArchiveMemberNotFound)
	}

	r, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("%s: %q: %w", path, member, err)
	}
	defer r.Close()

	b, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("%s: %q: %w", path, member, err)
	}
	return string(b), nil
}

// ReplaceArchiveMember rewrites the zip archive at path with the named
// member's contents replaced by text, with line endings normalized to
// "\n". All other members are copied without recompression, so their
// bytes are unchanged. The new archive is written to a temporary file
// in the same directory and then renamed over path; on error path is
// left untouched.
func ReplaceArchiveMember(path, member, text string) error {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return err
	}
	zrClosed := false
	defer func() {
		if !zrClosed {
			zr.Close()
		}
	}()

	if findMember(&zr.Reader, member) == nil {
		return fmt.Errorf("%s: %q: %w", path, member, ErrArchiveMemberNotFound)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	renamed := false
	defer func() {
		if !renamed {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	zw := zip.NewWriter(tmp)
	if zr.Comment != "" {
		if err := zw.SetComment(zr.Comment); err != nil {
			return err
		}
	}

	for _, f := range zr.File {
		if f.Name != member {
			if err := zw.Copy(f); err != nil {
				return fmt.Errorf("%s: %q: %w", path, f.Name, err)
			}
			continue
		}

		hdr := &zip.FileHeader{
			Name:     f.Name,
			Comment:  f.Comment,
			Method:   f.Method,
			Modified: f.Modified,
		}
		hdr.SetMode(f.Mode())
		if hdr.Method != zip.Store {
			hdr.Method = zip.Deflate
		}
		w, err := zw.CreateHeader(hdr)
		if err != nil {
			return err
		}
		if _, err := io.WriteString(w, NormalizeNewlines(text)); err != nil {
			return err
		}
	}

	if err := zw.Close(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	zrClosed = true
	if err := zr.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return err
	}
	renamed = true
	return nil
}

// CopyFile copies src to dst, replacing dst if it exists.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	fi, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fi.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
