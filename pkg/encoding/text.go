// Package encoding provides text encoding utilities for scene documents
// and the asset paths they reference.
package encoding

import (
	"io"
	"path"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// NewUTF8Reader returns a reader that strips a UTF-8 byte order mark and
// transcodes UTF-16 input that starts with a BOM. Input without a BOM is
// passed through untouched, so a legacy charset declared in the XML prolog
// still reaches the decoder intact.
func NewUTF8Reader(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(transform.Nop))
}

// ToUTF8 converts BOM-marked bytes to UTF-8.
// Returns the original bytes if conversion fails.
func ToUTF8(data []byte) []byte {
	result, _, err := transform.Bytes(unicode.BOMOverride(transform.Nop), data)
	if err != nil {
		return data
	}
	return result
}

// IsUTF16Label reports whether an XML encoding label names UTF-16.
func IsUTF16Label(label string) bool {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "utf-16", "utf16", "utf-16le", "utf-16be", "ucs-2":
		return true
	}
	return false
}

// NormalizePath normalizes an asset path from a scene document so that
// references written with backslashes or redundant elements compare equal.
func NormalizePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	if p == "" {
		return p
	}
	return path.Clean(p)
}

// Stem returns the base name of p up to its first dot.
// "textures/wood.grain.png" has stem "wood".
func Stem(p string) string {
	base := path.Base(NormalizePath(p))
	stem, _, _ := strings.Cut(base, ".")
	return stem
}
