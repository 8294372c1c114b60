// Package archive packs thumbnails into a ZIP download and unpacks ZIP uploads.
package archive

import (
	"fmt"
	"path"
	"strings"
)

var entryNameReplacer = strings.NewReplacer(" ", "_", "/", "_", "\\", "_")

// EntryName turns an uploaded document name into a flat archive entry name:
// the final extension is replaced by ext and spaces and path separators
// become underscores. "Report A.pdf" and "Report/A.pdf" both give "Report_A.jpg".
func EntryName(original, ext string) string {
	base := strings.TrimSuffix(original, path.Ext(strings.ReplaceAll(original, "\\", "/")))
	base = entryNameReplacer.Replace(base)
	if strings.Trim(base, "_.") == "" {
		base = "document"
	}
	return base + normalizeExt(ext)
}

func normalizeExt(ext string) string {
	if ext == "" || strings.HasPrefix(ext, ".") {
		return ext
	}
	return "." + ext
}

// Namer hands out unique entry names within one archive or workbook. The
// first request for a name gets it unchanged; later requests get _2, _3, ...
// inserted before the extension. Names are compared case-insensitively.
type Namer struct {
	used map[string]bool
}

// NewNamer creates an empty Namer
func NewNamer() *Namer {
	return &Namer{used: make(map[string]bool)}
}

// Unique reserves and returns a name derived from name that has not been handed out before
func (n *Namer) Unique(name string) string {
	candidate := n.Next(name)
	n.Reserve(candidate)
	return candidate
}

// Next returns the name Unique would hand out, without reserving it
func (n *Namer) Next(name string) string {
	if !n.used[strings.ToLower(name)] {
		return name
	}

	ext := path.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s_%d%s", stem, i, ext)
		if !n.used[strings.ToLower(candidate)] {
			return candidate
		}
	}
}

// Reserve marks name as taken
func (n *Namer) Reserve(name string) {
	n.used[strings.ToLower(name)] = true
}

// Len is the number of names handed out
func (n *Namer) Len() int {
	return len(n.used)
}
