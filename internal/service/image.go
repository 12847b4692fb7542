package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/IstyxI/foodgram/config"
)

// MediaService stores recipe images and user avatars in S3. Clients send
// images inline as base64 data URIs.
type MediaService struct {
	s3Config *config.S3Config
}

func NewMediaService(s3Config *config.S3Config) *MediaService {
	return &MediaService{s3Config: s3Config}
}

// UploadDataURI decodes a "data:image/...;base64," payload, uploads it
// under the given key prefix and returns the public URL.
func (s *MediaService) UploadDataURI(ctx context.Context, dataURI, keyPrefix string) (string, error) {
	data, ext, err := decodeDataURI(dataURI)
	if err != nil {
		return "", err
	}

	fileName := fmt.Sprintf("%s/%s.%s", keyPrefix, uuid.New().String(), ext)
	return s.upload(ctx, data, fileName, "image/"+ext)
}

func (s *MediaService) upload(ctx context.Context, data []byte, fileName, contentType string) (string, error) {
	_, err := s.s3Config.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Config.BucketName),
		Key:         aws.String(fileName),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	publicURL := fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.s3Config.BucketName, fileName)
	log.Printf("[MediaService] Uploaded image to %s", publicURL)
	return publicURL, nil
}

func decodeDataURI(dataURI string) ([]byte, string, error) {
	header, encoded, found := strings.Cut(dataURI, ",")
	if !found || !strings.HasPrefix(header, "data:image/") || !strings.HasSuffix(header, ";base64") {
		return nil, "", validationErrorf("image must be a base64 data URI")
	}

	ext := strings.TrimSuffix(strings.TrimPrefix(header, "data:image/"), ";base64")
	if ext == "" {
		return nil, "", validationErrorf("image must be a base64 data URI")
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, "", validationErrorf("image payload is not valid base64")
	}
	return data, ext, nil
}
