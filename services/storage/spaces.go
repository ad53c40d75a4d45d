package storage

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/EnmanuelReynoso23/el-pensum/config"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
)

// Key prefixes for every object the API writes
const (
	PrefixLogos    = "logos/"
	PrefixCampus   = "campus/"
	PrefixSyllabi  = "syllabi/"
	ContentTypePDF = "application/pdf"
	ContentTypeJPG = "image/jpeg"
)

// Object is one stored object
type Object struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// ObjectStore is the object storage the handlers and cron jobs use
type ObjectStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) ([]Object, error)
	URL(key string) string
	KeyFromURL(url string) (string, bool)
}

// SpacesClient talks to DigitalOcean Spaces through the S3 API
type SpacesClient struct {
	s3Client *s3.S3
	bucket   string
	endpoint string
	cdnURL   string
}

// NewSpacesClient creates a new Spaces client
func NewSpacesClient(cfg config.SpacesConfig) (*SpacesClient, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("spaces is not configured: SPACES_BUCKET, SPACES_REGION, SPACES_ACCESS_KEY and SPACES_SECRET_KEY are required")
	}

	sess, err := session.NewSession(&aws.Config{
		Credentials:      credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, ""),
		Endpoint:         aws.String(cfg.Endpoint),
		Region:           aws.String(cfg.Region),
		S3ForcePathStyle: aws.Bool(false),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Spaces session: %w", err)
	}

	return &SpacesClient{
		s3Client: s3.New(sess),
		bucket:   cfg.Bucket,
		endpoint: cfg.Endpoint,
		cdnURL:   strings.TrimRight(cfg.CDNURL, "/"),
	}, nil
}

// Upload stores data publicly under key and returns its URL
func (s *SpacesClient) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.s3Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ACL:         aws.String("public-read"),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return s.URL(key), nil
}

// Delete removes key
func (s *SpacesClient) Delete(ctx context.Context, key string) error {
	_, err := s.s3Client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// List returns every object under prefix, following pagination
func (s *SpacesClient) List(ctx context.Context, prefix string) ([]Object, error) {
	var objects []Object
	err := s.s3Client.ListObjectsV2PagesWithContext(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	}, func(page *s3.ListObjectsV2Output, lastPage bool) bool {
		for _, obj := range page.Contents {
			objects = append(objects, Object{
				Key:          aws.StringValue(obj.Key),
				Size:         aws.Int64Value(obj.Size),
				LastModified: aws.TimeValue(obj.LastModified),
			})
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", prefix, err)
	}
	return objects, nil
}

func (s *SpacesClient) baseURL() string {
	if s.cdnURL != "" {
		return s.cdnURL + "/"
	}
	return fmt.Sprintf("https://%s.%s/", s.bucket, s.endpoint)
}

// URL returns the public URL for key
func (s *SpacesClient) URL(key string) string {
	return s.baseURL() + key
}

// KeyFromURL reverses URL. It reports false for URLs outside the bucket.
func (s *SpacesClient) KeyFromURL(url string) (string, bool) {
	return TrimBase(s.baseURL(), url)
}

// TrimBase strips base from url
func TrimBase(base, url string) (string, bool) {
	if !strings.HasPrefix(url, base) {
		return "", false
	}
	key := strings.TrimPrefix(url, base)
	return key, key != ""
}

// GenerateKey returns a unique key under prefix keeping the extension of filename
func GenerateKey(prefix, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return fmt.Sprintf("%s%s%s", prefix, uuid.New().String(), ext)
}
