package services

import (
	"fmt"
	"mime/multipart"
)

// MockMediaService is a mock implementation of MediaService for testing
type MockMediaService struct {
	UploadFileFunc  func(fileHeader *multipart.FileHeader) (string, error)
	GetFileURLFunc  func(key string) (string, error)
	DeleteFileFunc  func(key string) error
	UploadedFiles   []string
	DeletedFiles    []string
}

// NewMockMediaService creates a new mock media service with default behavior
func NewMockMediaService() *MockMediaService {
	m := &MockMediaService{}
	m.UploadFileFunc = func(fileHeader *multipart.FileHeader) (string, error) {
		key := fmt.Sprintf("uploads/mock_%s", fileHeader.Filename)
		m.UploadedFiles = append(m.UploadedFiles, key)
		return key, nil
	}
	m.GetFileURLFunc = func(key string) (string, error) {
		if key == "" {
			return "", nil
		}
		return "https://mock-bucket.s3.amazonaws.com/" + key, nil
	}
	m.DeleteFileFunc = func(key string) error {
		m.DeletedFiles = append(m.DeletedFiles, key)
		return nil
	}
	return m
}

// UploadFile calls the mocked upload function
func (m *MockMediaService) UploadFile(fileHeader *multipart.FileHeader) (string, error) {
	return m.UploadFileFunc(fileHeader)
}

// GetFileURL calls the mocked URL function
func (m *MockMediaService) GetFileURL(key string) (string, error) {
	return m.GetFileURLFunc(key)
}

// DeleteFile calls the mocked delete function
func (m *MockMediaService) DeleteFile(key string) error {
	return m.DeleteFileFunc(key)
}
