package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/de-tools/ems-atlas/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExport(t *testing.T) {
	payload := &domain.ExportPayload{
		Base64:   "UEsDBBQ=",
		MIMEType: domain.SpreadsheetMIMEType,
		FileName: "storecarbon.xlsx",
	}

	file, err := Export(payload)
	require.NoError(t, err)
	assert.Equal(t, "storecarbon.xlsx", file.Name)
	assert.Equal(t, domain.SpreadsheetMIMEType, file.MIMEType)
	assert.Equal(t, []byte{'P', 'K', 0x03, 0x04, 0x14}, file.Data)

	again, err := Export(payload)
	require.NoError(t, err)
	assert.Equal(t, file, again)
	assert.Equal(t, "UEsDBBQ=", payload.Base64)
}

func TestExport_Errors(t *testing.T) {
	tests := []struct {
		name    string
		payload *domain.ExportPayload
		want    error
	}{
		{"nil payload", nil, domain.ErrNoExportPayload},
		{"empty data", &domain.ExportPayload{FileName: "x.xlsx"}, domain.ErrNoExportPayload},
		{"not base64", &domain.ExportPayload{Base64: "%%%", FileName: "x.xlsx"}, domain.ErrMalformedResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Export(tt.payload)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestWriteFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "downloads")

	path, err := WriteFile(dir, File{Name: "../meterenergy.xlsx", Data: []byte("PK")})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "meterenergy.xlsx"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("PK"), data)

	_, err = WriteFile(dir, File{})
	assert.Error(t, err)
}
