package packager

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-coursepack/internal/introspect"
	"github.com/klauspost/compress/zip"
)

// ArchiveProject zips the project directory into zipPath. Entries are rooted
// under the archive's base name so the zip unpacks into a single folder.
func ArchiveProject(projectDir, zipPath string) error {
	if err := os.MkdirAll(filepath.Dir(zipPath), 0o755); err != nil {
		return fmt.Errorf("packager: archive dir: %w", err)
	}

	out, err := os.Create(zipPath)
	if err != nil {
		return fmt.Errorf("packager: create archive: %w", err)
	}
	defer out.Close()

	root := strings.TrimSuffix(filepath.Base(zipPath), filepath.Ext(zipPath))
	writer := zip.NewWriter(out)

	err = filepath.WalkDir(projectDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if _, skip := introspect.ProjectSkipDirs[d.Name()]; skip {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(projectDir, path)
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		header, err := zip.FileInfoHeader(info)
		if err != nil {
			return err
		}
		header.Name = root + "/" + filepath.ToSlash(rel)
		header.Method = zip.Deflate

		entry, err := writer.CreateHeader(header)
		if err != nil {
			return err
		}
		file, err := os.Open(path)
		if err != nil {
			return err
		}
		defer file.Close()
		_, err = io.Copy(entry, file)
		return err
	})
	if err != nil {
		writer.Close()
		return fmt.Errorf("packager: archive %s: %w", projectDir, err)
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("packager: finalize archive: %w", err)
	}
	return out.Close()
}
