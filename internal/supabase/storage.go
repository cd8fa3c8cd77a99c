package supabase

import (
	"bytes"
	"fmt"
	"time"

	"github.com/google/uuid"
	storage "github.com/supabase-community/storage-go"
)

type StorageClient struct {
	client  *storage.Client
	bucket  string
	baseURL string
}

func NewStorageClient(supabaseURL, serviceRoleKey, bucket string) (*StorageClient, error) {
	// Ensure URL doesn't have trailing slash
	baseURL := supabaseURL
	if len(baseURL) > 0 && baseURL[len(baseURL)-1] == '/' {
		baseURL = baseURL[:len(baseURL)-1]
	}
	client := storage.NewClient(baseURL+"/storage/v1", serviceRoleKey, nil)

	return &StorageClient{
		client:  client,
		bucket:  bucket,
		baseURL: baseURL,
	}, nil
}

// SlideImagePath builds the storage key for a slide image. The timestamp
// keeps a retried upload from colliding with an earlier attempt's object.
func SlideImagePath(presentationID uuid.UUID, slideNumber int, now time.Time) string {
	return fmt.Sprintf("presentations/%s/slides/slide_%d_%d.png",
		presentationID.String(), slideNumber, now.UnixNano())
}

// UploadSlideImage stores the image bytes and returns the storage path and
// durable public URL.
func (s *StorageClient) UploadSlideImage(presentationID uuid.UUID, slideNumber int, data []byte) (string, string, error) {
	storagePath := SlideImagePath(presentationID, slideNumber, time.Now())

	contentType := "image/png"
	upsert := true
	_, err := s.client.UploadFile(s.bucket, storagePath, bytes.NewReader(data), storage.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to upload slide image: %w", err)
	}

	return storagePath, s.GetPublicURL(storagePath), nil
}

func (s *StorageClient) GetPublicURL(storagePath string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s",
		s.baseURL, s.bucket, storagePath)
}

func (s *StorageClient) DeleteFile(storagePath string) error {
	_, err := s.client.RemoveFile(s.bucket, []string{storagePath})
	return err
}

// DeletePresentationFiles removes every stored object under a
// presentation's prefix.
func (s *StorageClient) DeletePresentationFiles(presentationID uuid.UUID) error {
	prefix := fmt.Sprintf("presentations/%s/", presentationID.String())

	files, err := s.client.ListFiles(s.bucket, prefix, storage.FileSearchOptions{
		Limit: 1000,
	})
	if err != nil {
		return fmt.Errorf("failed to list files: %w", err)
	}

	if len(files) > 0 {
		filePaths := make([]string, len(files))
		for i, file := range files {
			filePaths[i] = file.Name
		}
		_, err = s.client.RemoveFile(s.bucket, filePaths)
		if err != nil {
			return fmt.Errorf("failed to delete files: %w", err)
		}
	}

	return nil
}
