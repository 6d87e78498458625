package statement

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// PageKey identifies one page of one statement document.
type PageKey struct {
	DocumentID string `json:"document_id"`
	PageNumber int    `json:"page_number"`
}

// Less orders page keys by document ID, then page number.
func (k PageKey) Less(other PageKey) bool {
	if k.DocumentID != other.DocumentID {
		return k.DocumentID < other.DocumentID
	}
	return k.PageNumber < other.PageNumber
}

// Page is an enumerated page image on disk.
type Page struct {
	Key         PageKey
	Path        string
	ContentType string
}

var pageNamePattern = regexp.MustCompile(`^(.+)_page_(\d+)$`)

// ParsePageKey derives a PageKey from a page image filename following the
// <documentID>_page_<n>.<ext> convention. Filenames that do not match fall
// back to the stripped filename as document ID and page 1.
func ParsePageKey(filename string) PageKey {
	stem := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))

	m := pageNamePattern.FindStringSubmatch(stem)
	if m == nil {
		return PageKey{DocumentID: stem, PageNumber: 1}
	}

	n, err := strconv.Atoi(m[2])
	if err != nil || n < 1 {
		return PageKey{DocumentID: stem, PageNumber: 1}
	}

	return PageKey{DocumentID: m[1], PageNumber: n}
}

var imageContentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".heic": "image/heic",
	".heif": "image/heif",
}

// EnumeratePages lists the page images in dir, sorted by PageKey so that
// processing order is deterministic regardless of directory listing order.
// It returns a NoInputError when no candidate pages exist.
func EnumeratePages(dir string) ([]Page, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	pages := make([]Page, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		contentType, ok := imageContentTypes[strings.ToLower(filepath.Ext(entry.Name()))]
		if !ok {
			continue
		}
		pages = append(pages, Page{
			Key:         ParsePageKey(entry.Name()),
			Path:        filepath.Join(dir, entry.Name()),
			ContentType: contentType,
		})
	}

	if len(pages) == 0 {
		return nil, &NoInputError{Dir: dir}
	}

	sort.Slice(pages, func(i, j int) bool {
		return pages[i].Key.Less(pages[j].Key)
	})

	return pages, nil
}
