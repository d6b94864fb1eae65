package classify

import (
	"bytes"
	"unicode/utf8"
)

// DefaultPreviewBytes bounds how much of an object is read for a content
// preview.
const DefaultPreviewBytes int64 = 200_000

// Binary signatures that disqualify a preview. PDF text lives behind a
// layout layer; keyword matching against raw PDF bytes is noise.
var binaryMagics = [][]byte{
	[]byte("%PDF"),
	{0x50, 0x4b, 0x03, 0x04},       // zip, docx, pptx, xlsx
	{0x89, 0x50, 0x4e, 0x47},       // png
	{0xff, 0xd8, 0xff},             // jpeg
	{0x47, 0x49, 0x46, 0x38},       // gif
	{0x1f, 0x8b},                   // gzip
	{0xd0, 0xcf, 0x11, 0xe0},       // legacy office
}

// NeedsPreview reports whether the filename alone does not reveal a year, in
// which case a bounded content peek may supply one.
func NeedsPreview(filename string) bool {
	return !yearRe.MatchString(filename)
}

// TextPreview returns data when it is plausibly text, nil otherwise. Objects
// carrying a binary document signature are skipped; extraction from those
// formats belongs to the optional enrichment providers.
func TextPreview(data []byte) []byte {
	if len(data) == 0 {
		return nil
	}
	for _, magic := range binaryMagics {
		if bytes.HasPrefix(data, magic) {
			return nil
		}
	}
	if !looksLikeText(data) {
		return nil
	}
	return data
}

// looksLikeText samples the leading bytes for NUL bytes and invalid UTF-8.
func looksLikeText(data []byte) bool {
	sample := data
	if len(sample) > 1024 {
		sample = sample[:1024]
	}
	if bytes.IndexByte(sample, 0) >= 0 {
		return false
	}
	// Tolerate a truncated rune at the end of the sample.
	for len(sample) > 0 {
		r, size := utf8.DecodeRune(sample)
		if r == utf8.RuneError && size == 1 {
			return len(sample) < utf8.UTFMax
		}
		sample = sample[size:]
	}
	return true
}
