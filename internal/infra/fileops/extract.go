// Where: cli/internal/infra/fileops/extract.go
// What: Zip/jar extraction into a staging directory.
// Why: Every build step unpacks distributions and profiles the same way.
package fileops

import (
	"archive/zip"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/poruru/f3asm/cli/internal/ctxlog"
)

const manifestSuffix = ".MF"

// Extract unpacks every entry of the archive at src into dst. Directory
// entries become directories, file entries are written with their parents
// created as needed, and entries ending in .MF (any case) are skipped.
// Output written before a failure is left in place.
func Extract(ctx context.Context, src, dst string) error {
	if err := EnsureDir(dst); err != nil {
		return err
	}
	reader, err := zip.OpenReader(src)
	if err != nil {
		return err
	}
	defer CloseQuietly(ctx, reader, src)

	logger := ctxlog.FromContext(ctx)
	for _, file := range reader.File {
		//nolint:gosec // Path traversal is checked with cleaned prefix validation.
		targetPath := filepath.Join(dst, file.Name)
		if !withinDir(dst, targetPath) {
			return fmt.Errorf("zip path escapes target: %s", file.Name)
		}

		if isDirEntry(file) {
			if err := EnsureDir(targetPath); err != nil {
				return err
			}
			continue
		}
		if IsManifestEntry(file.Name) {
			logger.Debug("skip manifest entry", "archive", src, "entry", file.Name)
			continue
		}
		if err := extractEntry(ctx, file, targetPath); err != nil {
			return fmt.Errorf("extract %s: %w", file.Name, err)
		}
	}
	return nil
}

// IsManifestEntry reports whether name is a manifest entry that extraction skips.
func IsManifestEntry(name string) bool {
	return strings.HasSuffix(strings.ToUpper(name), manifestSuffix)
}

func extractEntry(ctx context.Context, file *zip.File, targetPath string) error {
	in, err := file.Open()
	if err != nil {
		return err
	}
	defer CloseQuietly(ctx, in, file.Name)
	return WriteStream(ctx, targetPath, in)
}

func isDirEntry(file *zip.File) bool {
	return strings.HasSuffix(file.Name, "/") || file.FileInfo().IsDir()
}

func withinDir(dir, target string) bool {
	cleanDir := filepath.Clean(dir)
	cleanTarget := filepath.Clean(target)
	return cleanTarget == cleanDir || strings.HasPrefix(cleanTarget, cleanDir+string(os.PathSeparator))
}
