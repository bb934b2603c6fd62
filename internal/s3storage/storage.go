// Package s3storage wraps MinIO/S3 for the two things the site keeps in
// object storage: project and blog media, and archived contact leads.
package s3storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/pqui/archstudio/internal/config"
	"github.com/pqui/archstudio/internal/model"
)

// Storage wraps MinIO/S3 interactions for media and lead archives.
type Storage struct {
	client      *minio.Client
	mediaBucket string
	leadsBucket string
	region      string
	presignTTL  time.Duration
}

// New creates a MinIO client from the storage config. No request is made.
func New(cfg config.StorageConfig) (*Storage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		// A fixed region keeps presigning offline.
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio: %w", err)
	}
	ttl := cfg.PresignTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Storage{
		client:      client,
		mediaBucket: cfg.MediaBucket,
		leadsBucket: cfg.LeadsBucket,
		region:      cfg.Region,
		presignTTL:  ttl,
	}, nil
}

// EnsureBuckets makes sure the media and leads buckets exist before use.
func (s *Storage) EnsureBuckets(ctx context.Context) error {
	for _, bucket := range []string{s.mediaBucket, s.leadsBucket} {
		exists, err := s.client.BucketExists(ctx, bucket)
		if err != nil {
			return fmt.Errorf("check bucket %s: %w", bucket, err)
		}
		if !exists {
			if err := s.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
				return fmt.Errorf("make bucket %s: %w", bucket, err)
			}
		}
	}
	return nil
}

// ImageURL turns an image reference into something a browser can load.
// Absolute URLs pass through; anything else is an object key in the media
// bucket and gets a presigned GET URL. Presigning failures yield "".
func (s *Storage) ImageURL(ctx context.Context, ref string) string {
	if ref == "" || IsAbsolute(ref) {
		return ref
	}
	u, err := s.client.PresignedGetObject(ctx, s.mediaBucket, strings.TrimPrefix(ref, "/"), s.presignTTL, url.Values{})
	if err != nil {
		return ""
	}
	return u.String()
}

// LeadKey is the object key a submission is archived under.
func LeadKey(sub model.ContactSubmission) string {
	return path.Join("leads", sub.CreatedAt.UTC().Format("2006/01/02"), sub.ID+".json")
}

// UploadLead archives a contact submission as JSON and returns its key.
func (s *Storage) UploadLead(ctx context.Context, sub model.ContactSubmission) (string, error) {
	data, err := json.MarshalIndent(sub, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode lead: %w", err)
	}
	key := LeadKey(sub)
	opts := minio.PutObjectOptions{ContentType: "application/json"}
	if _, err := s.client.PutObject(ctx, s.leadsBucket, key, bytes.NewReader(data), int64(len(data)), opts); err != nil {
		return "", fmt.Errorf("upload lead: %w", err)
	}
	return key, nil
}

// UploadMedia stores an image or document under key in the media bucket.
func (s *Storage) UploadMedia(ctx context.Context, key string, data []byte, contentType string) error {
	opts := minio.PutObjectOptions{ContentType: contentType}
	if _, err := s.client.PutObject(ctx, s.mediaBucket, key, bytes.NewReader(data), int64(len(data)), opts); err != nil {
		return fmt.Errorf("upload media object: %w", err)
	}
	return nil
}

// StaticURLs resolves object keys against a fixed base URL. It is used when
// no object storage is configured.
type StaticURLs struct {
	Base string
}

// ImageURL joins relative references onto Base.
func (s StaticURLs) ImageURL(_ context.Context, ref string) string {
	if ref == "" || IsAbsolute(ref) {
		return ref
	}
	return strings.TrimRight(s.Base, "/") + "/" + strings.TrimLeft(ref, "/")
}

// IsAbsolute reports whether ref is a full http(s) URL.
func IsAbsolute(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}
