package utils

import (
	"bytes"
	"mime/multipart"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestFileHeader creates a mock multipart.FileHeader for testing
func createTestFileHeader(filename string, size int64, content []byte) *multipart.FileHeader {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	h.Set("Content-Type", "application/octet-stream")
	part, _ := writer.CreatePart(h)
	part.Write(content)
	writer.Close()

	reader := multipart.NewReader(body, writer.Boundary())
	form, _ := reader.ReadForm(int64(len(content)) + 1024)
	defer form.RemoveAll()

	if len(form.File["file"]) > 0 {
		fileHeader := form.File["file"][0]
		// Override size for testing purposes
		fileHeader.Size = size
		return fileHeader
	}

	return nil
}

func TestValidateUploadFile_Success(t *testing.T) {
	content := []byte("fake file content")

	for _, filename := range []string{"photo.png", "photo.jpg", "photo.jpeg", "certificate.pdf", "SHOUTY.PNG"} {
		fileHeader := createTestFileHeader(filename, int64(len(content)), content)
		require.NotNil(t, fileHeader)

		assert.NoError(t, ValidateUploadFile(fileHeader), filename)
	}
}

func TestValidateUploadFile_FileTooLarge(t *testing.T) {
	content := []byte("fake file content")
	fileHeader := createTestFileHeader("large.png", 11*1024*1024, content)
	require.NotNil(t, fileHeader)

	err := ValidateUploadFile(fileHeader)
	require.Error(t, err)

	var uploadErr *FileUploadError
	require.ErrorAs(t, err, &uploadErr)
	assert.Equal(t, "FILE_TOO_LARGE", uploadErr.Code)
}

func TestValidateUploadFile_InvalidFormat(t *testing.T) {
	content := []byte("#!/bin/sh")

	for _, filename := range []string{"script.sh", "archive.zip", "noextension"} {
		fileHeader := createTestFileHeader(filename, int64(len(content)), content)
		require.NotNil(t, fileHeader)

		err := ValidateUploadFile(fileHeader)
		require.Error(t, err, filename)

		var uploadErr *FileUploadError
		require.ErrorAs(t, err, &uploadErr)
		assert.Equal(t, "INVALID_FILE_FORMAT", uploadErr.Code)
	}
}

func TestValidateUploadFile_AtSizeLimit(t *testing.T) {
	content := []byte("x")
	fileHeader := createTestFileHeader("edge.png", MaxFileSize, content)
	require.NotNil(t, fileHeader)

	assert.NoError(t, ValidateUploadFile(fileHeader))
}
