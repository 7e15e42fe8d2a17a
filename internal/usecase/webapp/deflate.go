// Where: cli/internal/usecase/webapp/deflate.go
// What: Extension deflation and embedded library hoisting.
// Why: A servlet container only loads top-level jars from WEB-INF/lib.
package webapp

import (
	"archive/zip"
	"context"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/magiconair/properties"

	"github.com/poruru/f3asm/cli/internal/infra/archive"
	"github.com/poruru/f3asm/cli/internal/infra/fileops"
)

const embeddedLibPrefix = "META-INF/lib/"

// Deflater splits extension jars into a slim jar plus hoisted libraries.
type Deflater struct {
	LibDir string
	// Excludes lists library base names that are never hoisted.
	Excludes []string
}

// Deflate writes <LibDir>/<base of src> with every entry of src except
// META-INF/lib/*.jar. Those libraries are extracted to LibDir under their
// base name unless excluded or already present.
func (d Deflater) Deflate(ctx context.Context, src string) error {
	reader, err := zip.OpenReader(src)
	if err != nil {
		return err
	}
	defer fileops.CloseQuietly(ctx, reader, src)

	target := filepath.Join(d.LibDir, filepath.Base(src))
	out, err := archive.Create(ctx, target, archive.KindZip)
	if err != nil {
		return err
	}
	for _, f := range reader.File {
		if IsEmbeddedLibrary(f.Name) {
			if err := d.hoist(ctx, f); err != nil {
				fileops.CloseQuietly(ctx, out, target)
				return err
			}
			continue
		}
		if err := out.CopyEntry(f); err != nil {
			fileops.CloseQuietly(ctx, out, target)
			return err
		}
	}
	return out.Close()
}

func (d Deflater) hoist(ctx context.Context, f *zip.File) error {
	name := path.Base(f.Name)
	if slices.Contains(d.Excludes, name) {
		return nil
	}
	target := filepath.Join(d.LibDir, name)
	if fileops.FileExists(target) {
		return nil
	}
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer fileops.CloseQuietly(ctx, rc, f.Name)
	return fileops.WriteStream(ctx, target, rc)
}

// IsEmbeddedLibrary reports whether an entry is a jar bundled under META-INF/lib.
func IsEmbeddedLibrary(name string) bool {
	return strings.HasPrefix(name, embeddedLibPrefix) && strings.HasSuffix(name, ".jar")
}

// WriteIndex writes one name=name entry per extension in properties format.
func WriteIndex(ctx context.Context, target string, names []string) error {
	props := properties.NewProperties()
	for _, name := range names {
		if _, _, err := props.Set(name, name); err != nil {
			return err
		}
	}
	file, err := os.Create(target)
	if err != nil {
		return err
	}
	if _, err := props.Write(file, properties.ISO_8859_1); err != nil {
		fileops.CloseQuietly(ctx, file, target)
		return err
	}
	return file.Close()
}
