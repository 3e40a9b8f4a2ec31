// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package docx reads word-processing packages into ordered block sequences
// and rewrites selected parts of a package while copying every other entry
// byte for byte.
package docx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"sort"

	"github.com/pdiddy/datasheet-engine/pkg/types"
)

// Package part names.
const (
	PartContentTypes = "[Content_Types].xml"
	PartDocument     = "word/document.xml"
	PartStyles       = "word/styles.xml"
	PartCore         = "docProps/core.xml"
)

var (
	headerPart = regexp.MustCompile(`^word/header\d*\.xml$`)
	footerPart = regexp.MustCompile(`^word/footer\d*\.xml$`)
)

// Package is an opened word-processing package held in memory.
type Package struct {
	zr    *zip.Reader
	files map[string]*zip.File
}

// OpenPackage validates data as a word-processing package. Any failure is
// returned as a *types.MalformedInputError.
func OpenPackage(data []byte) (*Package, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &types.MalformedInputError{Reason: "not a zip package", Err: err}
	}

	p := &Package{zr: zr, files: make(map[string]*zip.File, len(zr.File))}
	for _, f := range zr.File {
		p.files[f.Name] = f
	}

	for _, name := range []string{PartContentTypes, PartDocument} {
		if _, ok := p.files[name]; !ok {
			return nil, &types.MalformedInputError{Reason: fmt.Sprintf("missing required part %s", name)}
		}
	}
	return p, nil
}

// Has reports whether the package contains the named part.
func (p *Package) Has(name string) bool {
	_, ok := p.files[name]
	return ok
}

// Part returns the uncompressed content of a part.
func (p *Package) Part(name string) ([]byte, error) {
	f, ok := p.files[name]
	if !ok {
		return nil, fmt.Errorf("part not found: %s", name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("opening part %s: %w", name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("reading part %s: %w", name, err)
	}
	return data, nil
}

// HeaderFooterParts returns the names of header and footer parts in sorted order.
func (p *Package) HeaderFooterParts() []string {
	var names []string
	for name := range p.files {
		if headerPart.MatchString(name) || footerPart.MatchString(name) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// HeaderParts returns the names of page header parts in sorted order.
func (p *Package) HeaderParts() []string {
	var names []string
	for name := range p.files {
		if headerPart.MatchString(name) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Write emits the package to w. Parts present in replaced are written with
// the new content; every other entry is copied without recompression.
// Entry order and timestamps follow the source package, so identical
// inputs produce identical bytes.
func (p *Package) Write(w io.Writer, replaced map[string][]byte) error {
	zw := zip.NewWriter(w)
	for _, f := range p.zr.File {
		data, ok := replaced[f.Name]
		if !ok {
			if err := zw.Copy(f); err != nil {
				return fmt.Errorf("copying %s: %w", f.Name, err)
			}
			continue
		}

		hdr := &zip.FileHeader{
			Name:     f.Name,
			Method:   f.Method,
			Modified: f.Modified,
		}
		fw, err := zw.CreateHeader(hdr)
		if err != nil {
			return fmt.Errorf("creating %s: %w", f.Name, err)
		}
		if _, err := fw.Write(data); err != nil {
			return fmt.Errorf("writing %s: %w", f.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("closing package: %w", err)
	}
	return nil
}
