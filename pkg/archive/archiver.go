// Package archive bundles the receipt PDFs of a run into one zip file.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/gobwas/glob"

	"github.com/entrhq/robotorder/pkg/logging"
)

// Result describes a written archive.
type Result struct {
	Path    string
	Members []string
}

// Archiver zips the regular files of one directory.
type Archiver struct {
	sourceDir string
	target    string
	include   []glob.Glob
	logger    *logging.Logger
}

// New creates an archiver for sourceDir writing to target. Include patterns are
// matched against file names; no patterns means every file.
func New(sourceDir, target string, include []string, logger *logging.Logger) (*Archiver, error) {
	a := &Archiver{
		sourceDir: sourceDir,
		target:    target,
		logger:    logger,
	}
	if a.logger == nil {
		a.logger = logging.Discard()
	}

	for _, pattern := range include {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid include pattern '%s': %w", pattern, err)
		}
		a.include = append(a.include, g)
	}
	return a, nil
}

// ArchiveAll writes every matching file currently in the source directory to the
// target archive, replacing any previous archive. Members are flat and sorted by name.
func (a *Archiver) ArchiveAll() (*Result, error) {
	names, err := a.collect()
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(a.target), 0755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}

	tmpPath := a.target + ".tmp"
	if err := a.write(tmpPath, names); err != nil {
		os.Remove(tmpPath)
		return nil, err
	}
	if err := os.Rename(tmpPath, a.target); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("failed to finalize archive: %w", err)
	}

	a.logger.Infof("Archived %d receipts to %s", len(names), a.target)
	return &Result{Path: a.target, Members: names}, nil
}

func (a *Archiver) collect() ([]string, error) {
	entries, err := os.ReadDir(a.sourceDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", a.sourceDir, err)
	}

	targetAbs, _ := filepath.Abs(a.target)

	var names []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		name := entry.Name()
		if abs, _ := filepath.Abs(filepath.Join(a.sourceDir, name)); abs == targetAbs || abs == targetAbs+".tmp" {
			continue
		}
		if !a.matches(name) {
			continue
		}
		names = append(names, name)
	}

	sort.Strings(names)
	return names, nil
}

func (a *Archiver) matches(name string) bool {
	if len(a.include) == 0 {
		return true
	}
	for _, g := range a.include {
		if g.Match(name) {
			return true
		}
	}
	return false
}

func (a *Archiver) write(path string, names []string) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}

	zw := zip.NewWriter(out)
	for _, name := range names {
		if err := addFile(zw, filepath.Join(a.sourceDir, name), name); err != nil {
			zw.Close()
			out.Close()
			return err
		}
	}

	if err := zw.Close(); err != nil {
		out.Close()
		return fmt.Errorf("failed to write archive: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to write archive: %w", err)
	}
	return nil
}

func addFile(zw *zip.Writer, path, name string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return fmt.Errorf("failed to build header for %s: %w", path, err)
	}
	header.Name = name
	header.Method = zip.Deflate

	w, err := zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("failed to add %s: %w", name, err)
	}
	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("failed to add %s: %w", name, err)
	}
	return nil
}

// Members lists the member names of a zip archive in stored order.
func Members(path string) ([]string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	defer r.Close()

	names := make([]string, 0, len(r.File))
	for _, f := range r.File {
		names = append(names, f.Name)
	}
	return names, nil
}
