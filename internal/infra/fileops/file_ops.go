// Where: cli/internal/infra/fileops/file_ops.go
// What: Shared filesystem operations for staging directory trees.
// Why: Keep copy, delete and close behavior consistent across build steps.
package fileops

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/poruru/f3asm/cli/internal/ctxlog"
)

var errNotRegularFile = errors.New("not a regular file")

func EnsureDir(path string) error {
	return os.MkdirAll(path, 0o755)
}

func RemoveDir(path string) error {
	if path == "" {
		return nil
	}
	if err := os.RemoveAll(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// RemoveFile deletes a single file. A missing file is an error.
func RemoveFile(path string) error {
	info, err := os.Lstat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("remove %s: %w", path, errNotRegularFile)
	}
	return os.Remove(path)
}

// CloseQuietly closes c and logs a failure instead of returning it, so a
// close error never masks the error that ended the operation.
func CloseQuietly(ctx context.Context, c io.Closer, what string) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		ctxlog.FromContext(ctx).Warn("close failed", "target", what, "error", err)
	}
}

func CopyFile(ctx context.Context, src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("copy %s: %w", src, errNotRegularFile)
	}
	return copyFileWithMode(ctx, src, dst, info.Mode())
}

// CopyFileToDir copies src into dir under its own base name and returns the target path.
func CopyFileToDir(ctx context.Context, src, dir string) (string, error) {
	target := filepath.Join(dir, filepath.Base(src))
	if err := CopyFile(ctx, src, target); err != nil {
		return "", err
	}
	return target, nil
}

// CopyFileToDirIfModified copies src into dir unless the existing target is
// at least as new as src. It reports whether a copy happened.
func CopyFileToDirIfModified(ctx context.Context, src, dir string) (bool, error) {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return false, err
	}
	target := filepath.Join(dir, filepath.Base(src))
	if dstInfo, err := os.Stat(target); err == nil && !dstInfo.ModTime().Before(srcInfo.ModTime()) {
		return false, nil
	}
	if err := copyFileWithMode(ctx, src, target, srcInfo.Mode()); err != nil {
		return false, err
	}
	return true, nil
}

func CopyDir(ctx context.Context, src, dst string) error {
	if err := EnsureDir(dst); err != nil {
		return err
	}
	return filepath.WalkDir(src, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if entry.IsDir() {
			return EnsureDir(target)
		}
		info, err := entry.Info()
		if err != nil {
			return err
		}
		return copyFileWithMode(ctx, path, target, info.Mode())
	})
}

// WriteStream writes r to path, creating parent directories.
func WriteStream(ctx context.Context, path string, r io.Reader) error {
	if err := EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		CloseQuietly(ctx, out, path)
		return err
	}
	return out.Close()
}

func copyFileWithMode(ctx context.Context, src, dst string, mode fs.FileMode) error {
	if err := EnsureDir(filepath.Dir(dst)); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer CloseQuietly(ctx, in, src)

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		CloseQuietly(ctx, out, dst)
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Chmod(dst, mode.Perm())
}

func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

func DirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
