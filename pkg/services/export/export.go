package export

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"

	"github.com/de-tools/ems-atlas/pkg/models/domain"
)

// File is a decoded spreadsheet ready to be downloaded.
type File struct {
	Name     string
	MIMEType string
	Data     []byte
}

// Export decodes payload. The payload is left untouched so the same result can be
// exported again.
func Export(payload *domain.ExportPayload) (File, error) {
	if payload == nil || payload.Base64 == "" {
		return File{}, domain.ErrNoExportPayload
	}

	data, err := base64.StdEncoding.DecodeString(payload.Base64)
	if err != nil {
		return File{}, fmt.Errorf("%w: export payload is not base64: %v", domain.ErrMalformedResponse, err)
	}

	mimeType := payload.MIMEType
	if mimeType == "" {
		mimeType = domain.SpreadsheetMIMEType
	}
	return File{Name: payload.FileName, MIMEType: mimeType, Data: data}, nil
}

// WriteFile stores file in dir and returns its path.
func WriteFile(dir string, file File) (string, error) {
	if file.Name == "" {
		return "", fmt.Errorf("export file has no name")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	path := filepath.Join(dir, filepath.Base(file.Name))
	if err := os.WriteFile(path, file.Data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
