// CLAUDE:SUMMARY CSV reader for deck and lesson catalogs with manifest-declared delimiter, encoding and tag separator.
package content

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// Required and optional catalog columns.
const (
	colSlug     = "slug"
	colTitle    = "title"
	colCategory = "category"
	colTags     = "tags"
	colCount    = "count"
)

// loadItemFile reads a deck or lesson catalog. An empty name means the
// collection is absent from this corpus.
func loadItemFile(dir, name string, format FormatSpec, kind Kind, r *LoadReport) ([]Item, error) {
	if name == "" {
		return nil, nil
	}
	path := filepath.Join(dir, name)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s catalog: %w", kind, err)
	}
	defer f.Close()

	items, err := readItems(f, path, format, kind, r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return items, nil
}

func readItems(src io.Reader, path string, format FormatSpec, kind Kind, r *LoadReport) ([]Item, error) {
	// Transcode non-UTF-8 encodings declared in the manifest.
	reader := src
	if enc := format.Encoding; enc != "" && !isUTF8(enc) {
		e, err := htmlindex.Get(enc)
		if err != nil {
			return nil, fmt.Errorf("unsupported encoding %q: %w", enc, err)
		}
		reader = transform.NewReader(src, e.NewDecoder())
	}

	cr := csv.NewReader(reader)
	if delim := format.Delimiter; delim != "" {
		cr.Comma = []rune(delim)[0]
	}
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{colSlug, colTitle} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("column %q not found in header %v", required, header)
		}
	}

	sep := format.TagSeparator
	var items []Item
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			r.warn(kind, path, "", err)
			continue
		}
		line, _ := cr.FieldPos(0)
		source := fmt.Sprintf("%s:%d", path, line)

		field := func(name string) string {
			idx, ok := cols[name]
			if !ok || idx >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[idx])
		}

		it := Item{
			Slug:     field(colSlug),
			Title:    field(colTitle),
			Category: field(colCategory),
		}
		if it.Slug == "" {
			r.warn(kind, source, "", ErrMissingID)
			continue
		}
		if it.Title == "" {
			r.warn(kind, source, it.Slug, ErrMissingTitle)
			continue
		}
		if raw := field(colCount); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				r.warn(kind, source, it.Slug, ErrBadCount)
				continue
			}
			it.Count = n
		}
		if raw := field(colTags); raw != "" && sep != "" {
			it.Tags = cleanList(strings.Split(raw, sep))
		}
		items = append(items, it)
	}
	return items, nil
}

func isUTF8(enc string) bool {
	e := strings.ToLower(strings.ReplaceAll(enc, "-", ""))
	return e == "utf8" || e == ""
}
