package utils

import (
	"io"
	"mime/multipart"

	"elearning/apperr"

	"github.com/gabriel-vasile/mimetype"
)

// ReadUploadedFile reads a multipart file, rejecting anything over maxBytes.
func ReadUploadedFile(file *multipart.FileHeader, maxBytes int64) ([]byte, error) {
	if file.Size > maxBytes {
		return nil, apperr.Validation("File is too large", apperr.Ctx("size", file.Size), apperr.Ctx("maxSize", maxBytes))
	}

	// Open the uploaded file
	src, err := file.Open()
	if err != nil {
		return nil, apperr.Internal("Failed to open uploaded file", err)
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxBytes+1))
	if err != nil {
		return nil, apperr.Internal("Failed to read uploaded file", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, apperr.Validation("File is too large", apperr.Ctx("maxSize", maxBytes))
	}
	return data, nil
}

// DetectMime sniffs data and returns its MIME type when it is one of allowed.
func DetectMime(data []byte, allowed ...string) (*mimetype.MIME, error) {
	mt := mimetype.Detect(data)
	if !mimetype.EqualsAny(mt.String(), allowed...) {
		return nil, apperr.UnsupportedMediaType("Unsupported file type", apperr.Ctx("mimeType", mt.String()))
	}
	return mt, nil
}
