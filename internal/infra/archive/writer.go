// Where: cli/internal/infra/archive/writer.go
// What: Jar/zip writer for packaged build outputs.
// Why: Contribution archives, bundled extension jars and deflated jars share one writer.
package archive

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/poruru/f3asm/cli/internal/ctxlog"
	"github.com/poruru/f3asm/cli/internal/infra/fileops"
	"github.com/poruru/f3asm/cli/internal/meta"
)

// Kind selects jar or plain zip output.
type Kind int

const (
	// KindZip writes entries exactly as added.
	KindZip Kind = iota
	// KindJar additionally writes META-INF/MANIFEST.MF as the first entry.
	KindJar
)

// ManifestName is the jar manifest entry name.
const ManifestName = "META-INF/MANIFEST.MF"

var errDuplicateEntry = errors.New("duplicate entry")

// Writer streams entries into a new archive file.
type Writer struct {
	ctx      context.Context
	path     string
	kind     Kind
	file     *os.File
	zw       *zip.Writer
	written  map[string]struct{}
	manifest bool
}

// Create opens path for writing, creating parent directories.
func Create(ctx context.Context, path string, kind Kind) (*Writer, error) {
	if err := fileops.EnsureDir(filepath.Dir(path)); err != nil {
		return nil, err
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &Writer{
		ctx:     ctx,
		path:    path,
		kind:    kind,
		file:    file,
		zw:      zip.NewWriter(file),
		written: map[string]struct{}{},
	}, nil
}

// Path returns the archive file path.
func (w *Writer) Path() string {
	return w.path
}

// Has reports whether an entry named name was already written.
func (w *Writer) Has(name string) bool {
	_, ok := w.written[name]
	return ok
}

// AddDir adds every entry below root at its slash-separated relative path.
// Files whose base name or relative path matches one of excludes are skipped.
func (w *Writer) AddDir(root string, excludes []string) error {
	info, err := os.Stat(root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", root)
	}
	supplied := filepath.Join(root, filepath.FromSlash(ManifestName))
	if w.kind == KindJar && !w.manifest && fileops.FileExists(supplied) {
		if err := w.AddFile(supplied, ManifestName); err != nil {
			return err
		}
	}

	return filepath.WalkDir(root, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		name := filepath.ToSlash(rel)
		if entry.IsDir() {
			return w.addDirEntry(name + "/")
		}
		if Excluded(name, excludes) {
			ctxlog.FromContext(w.ctx).Debug("exclude entry", "archive", w.path, "entry", name)
			return nil
		}
		if name == ManifestName && w.kind == KindJar {
			// already written ahead of the walk
			return nil
		}
		return w.AddFile(p, name)
	})
}

// AddFile adds the file at src under the entry name.
func (w *Writer) AddFile(src, name string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if err := w.begin(name); err != nil {
		return err
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = name
	header.Method = zip.Deflate

	out, err := w.zw.CreateHeader(header)
	if err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer fileops.CloseQuietly(w.ctx, in, src)
	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// CopyEntry copies an entry of another archive without recompressing it.
func (w *Writer) CopyEntry(f *zip.File) error {
	if err := w.begin(f.Name); err != nil {
		return err
	}
	return w.zw.Copy(f)
}

// Close finishes the archive and closes the file.
func (w *Writer) Close() error {
	if w.kind == KindJar && !w.manifest {
		if err := w.writeManifest(); err != nil {
			fileops.CloseQuietly(w.ctx, w.file, w.path)
			return err
		}
	}
	if err := w.zw.Close(); err != nil {
		fileops.CloseQuietly(w.ctx, w.file, w.path)
		return err
	}
	return w.file.Close()
}

func (w *Writer) addDirEntry(name string) error {
	if _, ok := w.written[name]; ok {
		return nil
	}
	if err := w.begin(name); err != nil {
		return err
	}
	_, err := w.zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Store})
	return err
}

// begin records name and writes the default manifest ahead of the first
// entry of a jar.
func (w *Writer) begin(name string) error {
	if _, ok := w.written[name]; ok {
		return fmt.Errorf("%s in %s: %w", name, w.path, errDuplicateEntry)
	}
	if w.kind == KindJar && !w.manifest {
		if name == ManifestName {
			w.manifest = true
		} else if err := w.writeManifest(); err != nil {
			return err
		}
	}
	w.written[name] = struct{}{}
	return nil
}

func (w *Writer) writeManifest() error {
	w.manifest = true
	w.written[ManifestName] = struct{}{}
	out, err := w.zw.CreateHeader(&zip.FileHeader{Name: ManifestName, Method: zip.Deflate})
	if err != nil {
		return err
	}
	_, err = io.WriteString(out, "Manifest-Version: 1.0\r\nCreated-By: "+meta.AppName+"\r\n\r\n")
	return err
}

// Excluded reports whether name (slash separated) matches one of patterns,
// either by base name or by full relative path.
func Excluded(name string, patterns []string) bool {
	base := path.Base(name)
	for _, pattern := range patterns {
		pattern = strings.TrimPrefix(strings.TrimSpace(pattern), "**/")
		if pattern == "" {
			continue
		}
		if ok, _ := path.Match(pattern, base); ok {
			return true
		}
		if ok, _ := path.Match(pattern, name); ok {
			return true
		}
	}
	return false
}

// IsDuplicateEntry reports whether err came from adding an entry twice.
func IsDuplicateEntry(err error) bool {
	return errors.Is(err, errDuplicateEntry)
}
