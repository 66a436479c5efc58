package valueprovider

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
)

// FileSource looks up uploaded files by form field name.
type FileSource interface {
	Files(ctx context.Context, name string) ([]*multipart.FileHeader, error)
}

// RequestFiles reads files from a multipart request, parsing the form lazily.
type RequestFiles struct {
	r         *http.Request
	maxMemory int64
}

func NewRequestFiles(r *http.Request, maxMemory int64) *RequestFiles {
	if maxMemory <= 0 {
		maxMemory = DefaultMaxMemory
	}
	return &RequestFiles{r: r, maxMemory: maxMemory}
}

// Files returns the files posted under name. Names match case-insensitively.
// Non-multipart requests have no files. The context is checked before the
// form is read so an aborted request stops binding.
func (f *RequestFiles) Files(ctx context.Context, name string) ([]*multipart.FileHeader, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.r == nil || mediaTypeOf(f.r.Header.Get("Content-Type")) != "multipart/form-data" {
		return nil, nil
	}
	if f.r.MultipartForm == nil {
		if err := f.r.ParseMultipartForm(f.maxMemory); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidForm, err)
		}
	}
	if f.r.MultipartForm == nil {
		return nil, nil
	}

	var headers []*multipart.FileHeader
	for key, fhs := range f.r.MultipartForm.File {
		if strings.EqualFold(key, name) {
			headers = append(headers, fhs...)
		}
	}
	for _, fh := range headers {
		fh.Filename = SanitizeFilename(fh.Filename)
	}
	return headers, nil
}

// FileMap is an in-memory FileSource.
type FileMap map[string][]*multipart.FileHeader

func (m FileMap) Files(ctx context.Context, name string) ([]*multipart.FileHeader, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for key, fhs := range m {
		if strings.EqualFold(key, name) {
			return fhs, nil
		}
	}
	return nil, nil
}

// SanitizeFilename removes directory components and null bytes from a client
// supplied filename.
func SanitizeFilename(filename string) string {
	filename = strings.ReplaceAll(filename, "\\", "/")
	filename = filepath.Base(filename)
	filename = strings.ReplaceAll(filename, "\x00", "")

	if filename == "." || filename == ".." || filename == "" || filename == "/" {
		filename = "unnamed"
	}
	return filename
}
