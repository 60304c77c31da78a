package upload

import (
	"bytes"
	"encoding/binary"
	"errors"
	"strings"
)

// MaxFileSize is the hard cap for a single upload.
const MaxFileSize = 20 * 1024 * 1024 // 20 MiB

// SniffLen is how many leading bytes the caller must provide for signature
// verification.
const SniffLen = 20

// Rejection reasons, surfaced verbatim to the client.
var (
	ErrTooLarge = errors.New("File too large. Maximum size is 20MB")
	ErrBadType  = errors.New("Invalid file type. Only images and videos are allowed")
	ErrMismatch = errors.New("File type mismatch. File content does not match declared type")
	ErrSVG      = errors.New("SVG files are not allowed for security reasons")
)

// allowedTypes is the full allow-list of upload MIME types.
var allowedTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/webp":      true,
	"image/gif":       true,
	"video/mp4":       true,
	"video/quicktime": true,
	"video/webm":      true,
}

// signatures maps a declared MIME type to accepted leading-byte prefixes.
// ISO base-media containers (mp4, quicktime) are not in this table; they are
// identified by the ftyp box at offset 4 instead, since their first bytes are
// a length field shared with many other container formats.
var signatures = map[string][][]byte{
	"image/jpeg": {{0xFF, 0xD8, 0xFF}},
	"image/png":  {{0x89, 0x50, 0x4E, 0x47}},
	"image/webp": {{0x52, 0x49, 0x46, 0x46}}, // RIFF
	"image/gif":  {{0x47, 0x49, 0x46, 0x38}}, // GIF8
	"video/webm": {{0x1A, 0x45, 0xDF, 0xA3}}, // EBML
}

// Validate applies the upload gate in short-circuit order: size, allow-list,
// content signature, SVG denial. declaredSize is the client-reported size of
// the full payload; head holds at least the first SniffLen bytes (or the
// whole payload when shorter).
func Validate(filename, declaredType string, declaredSize int64, head []byte) error {
	if declaredSize > MaxFileSize {
		return ErrTooLarge
	}
	if !allowedTypes[declaredType] {
		return ErrBadType
	}
	if !matchesSignature(declaredType, head) {
		return ErrMismatch
	}
	// SVG is denied unconditionally (stored XSS vector), regardless of how
	// the file is declared or named.
	if declaredType == "image/svg+xml" || strings.HasSuffix(strings.ToLower(filename), ".svg") {
		return ErrSVG
	}
	return nil
}

func matchesSignature(declaredType string, head []byte) bool {
	if declaredType == "video/mp4" || declaredType == "video/quicktime" {
		return isISOBaseMedia(head)
	}
	sigs, ok := signatures[declaredType]
	if !ok {
		return false
	}
	for _, sig := range sigs {
		if bytes.HasPrefix(head, sig) {
			return true
		}
	}
	return false
}

// isISOBaseMedia verifies the ftyp box that opens every mp4/quicktime file:
// a 32-bit box size at offset 0 followed by the literal "ftyp" at offset 4.
func isISOBaseMedia(head []byte) bool {
	if len(head) < 8 {
		return false
	}
	if !bytes.Equal(head[4:8], []byte("ftyp")) {
		return false
	}
	boxSize := binary.BigEndian.Uint32(head[0:4])
	// The ftyp box holds at least size, type, major brand and minor version.
	return boxSize >= 16
}
