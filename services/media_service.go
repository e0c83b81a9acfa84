package services

import (
	"fmt"
	"mime/multipart"

	"github.com/handyhub-dev/handyhub-api/utils"
)

// MediaService handles profile pictures and technician certificates: upload,
// URL generation and deletion against the media host.
type MediaService interface {
	// UploadFile validates and uploads a file, returns the storage key
	UploadFile(fileHeader *multipart.FileHeader) (string, error)

	// GetFileURL generates a URL for accessing an uploaded file
	GetFileURL(key string) (string, error)

	// DeleteFile removes a file from storage
	DeleteFile(key string) error
}

// S3MediaService implements MediaService using AWS S3 for storage
type S3MediaService struct {
	s3Service S3Interface
}

var mediaServiceInstance MediaService

// InitMediaService initializes the media service with S3 backend
func InitMediaService(s3Service S3Interface) MediaService {
	mediaServiceInstance = &S3MediaService{
		s3Service: s3Service,
	}
	return mediaServiceInstance
}

// GetMediaService returns the initialized media service instance
func GetMediaService() MediaService {
	return mediaServiceInstance
}

// SetMediaService sets the media service instance (primarily for testing)
func SetMediaService(service MediaService) {
	mediaServiceInstance = service
}

// UploadFile validates and uploads a file to S3
func (s *S3MediaService) UploadFile(fileHeader *multipart.FileHeader) (string, error) {
	if err := utils.ValidateUploadFile(fileHeader); err != nil {
		return "", err
	}

	key, err := s.s3Service.UploadFile(fileHeader)
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}

	return key, nil
}

// GetFileURL generates a presigned URL for accessing a file
func (s *S3MediaService) GetFileURL(key string) (string, error) {
	if key == "" {
		return "", nil
	}

	url, err := s.s3Service.GetPresignedURL(key)
	if err != nil {
		return "", fmt.Errorf("failed to generate file URL: %w", err)
	}

	return url, nil
}

// DeleteFile deletes a file from S3
func (s *S3MediaService) DeleteFile(key string) error {
	if key == "" {
		return nil
	}

	if err := s.s3Service.DeleteFile(key); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}

	return nil
}
