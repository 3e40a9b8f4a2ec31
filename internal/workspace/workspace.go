// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package workspace reads source documents and writes rendered documents
// on the local filesystem.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// DirSource reads sources by path. Relative identities resolve against
// Root when it is set.
type DirSource struct {
	Root string
}

// Read returns the content of the source document id.
func (s DirSource) Read(ctx context.Context, id string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := id
	if s.Root != "" && !filepath.IsAbs(id) {
		path = filepath.Join(s.Root, id)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading source: %w", err)
	}
	return data, nil
}

// DirSink writes rendered documents into Dir and never replaces an
// existing file.
type DirSink struct {
	Dir string
}

// Path returns where name is written.
func (s DirSink) Path(name string) string {
	return filepath.Join(s.Dir, name)
}

// Exists reports whether name is already present in the directory.
func (s DirSink) Exists(name string) bool {
	_, err := os.Stat(s.Path(name))
	return err == nil
}

// Write stores data under name. The content goes to a temporary file
// first and is then linked into place, so readers never see a partial
// document. An existing file yields an error matching fs.ErrExist.
func (s DirSink) Write(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if name == "" || name != filepath.Base(name) {
		return fmt.Errorf("invalid output name %q", name)
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	dest := s.Path(name)

	tmpFile, err := os.CreateTemp(s.Dir, ".render-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath)

	_, writeErr := tmpFile.Write(data)
	closeErr := tmpFile.Close()
	if writeErr != nil {
		return fmt.Errorf("writing %s: %w", name, writeErr)
	}
	if closeErr != nil {
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	err = os.Link(tmpPath, dest)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, fs.ErrExist):
		return fmt.Errorf("writing %s: %w", name, err)
	}
	// Filesystems without hard links fall back to an exclusive create.
	return writeExclusive(dest, data)
}

func writeExclusive(dest string, data []byte) error {
	f, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Base(dest), err)
	}
	_, writeErr := f.Write(data)
	closeErr := f.Close()
	if writeErr != nil || closeErr != nil {
		os.Remove(dest)
		return fmt.Errorf("writing %s: %w", filepath.Base(dest), errors.Join(writeErr, closeErr))
	}
	return nil
}

// TemplateInfo describes one template document on disk.
type TemplateInfo struct {
	Name     string    `json:"name" yaml:"name"`
	Path     string    `json:"path" yaml:"path"`
	Size     int64     `json:"size" yaml:"size"`
	Modified time.Time `json:"modified" yaml:"modified"`
}

// ListTemplates returns the .docx files directly inside dir sorted by
// name. Hidden files and editor lock files ("~$...") are skipped.
func ListTemplates(dir string) ([]TemplateInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading templates directory: %w", err)
	}
	out := []TemplateInfo{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~$") {
			continue
		}
		if !strings.EqualFold(filepath.Ext(name), ".docx") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}
		out = append(out, TemplateInfo{
			Name:     strings.TrimSuffix(name, filepath.Ext(name)),
			Path:     filepath.Join(dir, name),
			Size:     info.Size(),
			Modified: info.ModTime(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ExpandSources turns arguments into source paths: directories contribute
// their .docx files (sorted), files are taken as given.
func ExpandSources(args []string) ([]string, error) {
	var out []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("resolving source: %w", err)
		}
		if !info.IsDir() {
			out = append(out, arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", arg, err)
		}
		for _, e := range entries {
			name := e.Name()
			if e.IsDir() || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~$") {
				continue
			}
			if strings.EqualFold(filepath.Ext(name), ".docx") {
				out = append(out, filepath.Join(arg, name))
			}
		}
	}
	return out, nil
}
