package handler

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
)

// uploadField is the multipart field carrying the document.
const uploadField = "file"

// upload is one received document. File is positioned at the start.
type upload struct {
	Name     string
	MIMEType string
	File     multipart.File
}

// openUpload caps the request body, pulls the "file" part and settles its
// mime type. The part's Content-Type wins unless it is missing or the
// generic application/octet-stream, in which case the bytes are sniffed.
// Callers must Close the returned file.
func openUpload(c *gin.Context, maxBytes int64) (*upload, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)

	header, err := c.FormFile(uploadField)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, err
		}
		return nil, badRequest(`attach a document in the "file" form field`)
	}

	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("opening upload: %w", err)
	}

	mimeType := baseMediaType(header.Header.Get("Content-Type"))
	if mimeType == "" || mimeType == "application/octet-stream" {
		detected, err := mimetype.DetectReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("detecting document type: %w", err)
		}
		mimeType = baseMediaType(detected.String())
		if _, err := file.Seek(0, io.SeekStart); err != nil {
			file.Close()
			return nil, fmt.Errorf("rewinding upload: %w", err)
		}
	}

	return &upload{Name: header.Filename, MIMEType: mimeType, File: file}, nil
}

// baseMediaType drops parameters: "text/plain; charset=utf-8" -> "text/plain".
func baseMediaType(v string) string {
	if v == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(v)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(strings.Split(v, ";")[0]))
	}
	return mediaType
}
