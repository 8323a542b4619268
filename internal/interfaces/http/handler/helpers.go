package handler

import (
	"errors"
	"io"
	"mime/multipart"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// maxEvidenceSize caps uploaded evidence files at 10 MiB
const maxEvidenceSize = 10 << 20

var errEvidenceTooLarge = errors.New("evidence file exceeds maximum size")

// parseUUIDParam parses a UUID path parameter
func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// readEvidenceFile reads an optional multipart evidence file. Returns nil
// content when the form has no evidence part.
func readEvidenceFile(c *gin.Context) ([]byte, string, error) {
	fileHeader, err := c.FormFile("evidence")
	if err != nil {
		// gin returns http.ErrMissingFile wrapped; absent evidence is fine
		return nil, "", nil
	}
	if fileHeader.Size > maxEvidenceSize {
		return nil, "", errEvidenceTooLarge
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, "", err
	}
	defer func() { _ = file.Close() }()

	content, err := io.ReadAll(io.LimitReader(file, maxEvidenceSize+1))
	if err != nil {
		return nil, "", err
	}
	if len(content) > maxEvidenceSize {
		return nil, "", errEvidenceTooLarge
	}

	return content, evidenceContentType(fileHeader), nil
}

func evidenceContentType(h *multipart.FileHeader) string {
	if ct := h.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
