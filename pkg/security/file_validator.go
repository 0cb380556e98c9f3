package security

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
)

// MaxResumeSize is the largest resume upload accepted, in bytes.
const MaxResumeSize = 5 << 20

var (
	ErrFileEmpty        = errors.New("file is empty")
	ErrFileTooLarge     = fmt.Errorf("file exceeds %d MiB", MaxResumeSize>>20)
	ErrFileExtension    = errors.New("file extension not allowed")
	ErrFileContent      = errors.New("file content does not match extension")
	ErrFileTypeNotFound = errors.New("file type could not be determined")
)

// resumeTypes maps an allowed extension to its content type and magic prefixes.
var resumeTypes = map[string]struct {
	contentType string
	magic       [][]byte
}{
	// %PDF
	".pdf": {"application/pdf", [][]byte{{0x25, 0x50, 0x44, 0x46}}},

	// OLE compound document
	".doc": {"application/msword", [][]byte{{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}}},

	// zip container
	".docx": {"application/vnd.openxmlformats-officedocument.wordprocessingml.document", [][]byte{{0x50, 0x4B, 0x03, 0x04}}},
}

// Sniffed MIME types accepted for each resume extension. DOC and DOCX are
// often sniffed as octet-stream or zip; the magic check has already run by then.
var sniffedMIME = map[string][]string{
	".pdf":  {"application/pdf"},
	".doc":  {"application/msword", "application/octet-stream"},
	".docx": {"application/zip", "application/octet-stream"},
}

// ValidateResume runs the extension whitelist, the size limit, the magic byte
// check and the sniffed MIME whitelist. It returns the content type to store.
func ValidateResume(filename string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	format, ok := resumeTypes[ext]
	if !ok {
		return "", fmt.Errorf("%w: %q (allowed: %s)", ErrFileExtension, ext, strings.Join(AllowedResumeExtensions(), ", "))
	}
	if len(data) == 0 {
		return "", ErrFileEmpty
	}
	if len(data) > MaxResumeSize {
		return "", ErrFileTooLarge
	}

	if !hasMagic(data, format.magic) {
		return "", ErrFileContent
	}

	detected := http.DetectContentType(data)
	if i := strings.IndexByte(detected, ';'); i >= 0 {
		detected = detected[:i]
	}
	for _, allowed := range sniffedMIME[ext] {
		if detected == allowed {
			return format.contentType, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrFileTypeNotFound, detected)
}

func hasMagic(data []byte, signatures [][]byte) bool {
	for _, sig := range signatures {
		if bytes.HasPrefix(data, sig) {
			return true
		}
	}
	return false
}

// AllowedResumeExtensions lists accepted extensions for error messages.
func AllowedResumeExtensions() []string {
	return []string{".pdf", ".doc", ".docx"}
}
