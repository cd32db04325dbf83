package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/freelance-platform/marketplace-api/utils"
	"github.com/google/uuid"
)

// ImageService stores avatar images
type ImageService interface {
	// UploadImage validates and stores an image owned by ownerID, returns the storage key
	UploadImage(ctx context.Context, ownerID uint, fileHeader *multipart.FileHeader) (string, error)

	// GetImageURL returns a URL clients can fetch the image from
	GetImageURL(ctx context.Context, imageKey string) (string, error)

	// DeleteImage removes an image from storage
	DeleteImage(ctx context.Context, imageKey string) error
}

func validateImage(fileHeader *multipart.FileHeader) (string, error) {
	contentType, err := utils.ValidateImageFile(fileHeader)
	if err != nil {
		var uploadErr *utils.FileUploadError
		if errors.As(err, &uploadErr) {
			return "", &Error{Kind: KindPrecondition, Code: uploadErr.Code, Message: uploadErr.Message}
		}
		return "", err
	}
	return contentType, nil
}

// S3ImageService implements ImageService using AWS S3 for storage
type S3ImageService struct {
	s3Service S3Interface
}

// NewS3ImageService creates an S3 backed image service
func NewS3ImageService(s3Service S3Interface) *S3ImageService {
	return &S3ImageService{s3Service: s3Service}
}

// UploadImage stores the image under avatars/<owner>/<uuid>.<ext>
func (s *S3ImageService) UploadImage(ctx context.Context, ownerID uint, fileHeader *multipart.FileHeader) (string, error) {
	contentType, err := validateImage(fileHeader)
	if err != nil {
		return "", err
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	key := fmt.Sprintf("avatars/%d/%s%s", ownerID, uuid.NewString(), utils.ImageExtension(fileHeader.Filename))
	if err := s.s3Service.UploadFile(ctx, key, contentType, file); err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}
	return key, nil
}

// GetImageURL returns a presigned URL for the image
func (s *S3ImageService) GetImageURL(ctx context.Context, imageKey string) (string, error) {
	if imageKey == "" {
		return "", nil
	}

	url, err := s.s3Service.GetPresignedURL(ctx, imageKey)
	if err != nil {
		return "", fmt.Errorf("failed to generate image URL: %w", err)
	}
	return url, nil
}

// DeleteImage deletes an image from S3
func (s *S3ImageService) DeleteImage(ctx context.Context, imageKey string) error {
	if imageKey == "" {
		return nil
	}
	if err := s.s3Service.DeleteFile(ctx, imageKey); err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}

// LocalImageService keeps images on local disk, served by GET /api/uploads/:filename
type LocalImageService struct {
	dir string
}

// NewLocalImageService creates an image service writing under dir
func NewLocalImageService(dir string) *LocalImageService {
	return &LocalImageService{dir: dir}
}

// Dir returns the directory images are stored in
func (s *LocalImageService) Dir() string {
	return s.dir
}

// UploadImage stores the image as <owner>_<uuid>.<ext>
func (s *LocalImageService) UploadImage(_ context.Context, ownerID uint, fileHeader *multipart.FileHeader) (string, error) {
	if _, err := validateImage(fileHeader); err != nil {
		return "", err
	}

	filename := fmt.Sprintf("%d_%s%s", ownerID, uuid.NewString(), utils.ImageExtension(fileHeader.Filename))
	if err := utils.SaveUploadedFile(fileHeader, s.dir, filename); err != nil {
		return "", fmt.Errorf("failed to save image: %w", err)
	}
	return filename, nil
}

// GetImageURL returns the API path of the image
func (s *LocalImageService) GetImageURL(_ context.Context, imageKey string) (string, error) {
	return utils.GetImageURL(imageKey), nil
}

// DeleteImage removes the image file. A missing file is not an error.
func (s *LocalImageService) DeleteImage(_ context.Context, imageKey string) error {
	if imageKey == "" {
		return nil
	}
	if !utils.IsSafeFilename(imageKey) {
		return fmt.Errorf("invalid image key %q", imageKey)
	}
	if err := os.Remove(filepath.Join(s.dir, imageKey)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}
