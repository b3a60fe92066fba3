package mirror

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"subburn/internal/config"
	"subburn/internal/jobs"
	"subburn/internal/logging"
)

// objectStore is the subset of *minio.Client the mirror uses.
type objectStore interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	FPutObject(ctx context.Context, bucketName, objectName, filePath string, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// Counter receives one count per upload attempt.
type Counter interface {
	MirrorUpload(ok bool)
}

// Mirror uploads a completed job's video and caption file.
type Mirror struct {
	client  objectStore
	bucket  string
	prefix  string
	counter Counter
	logger  *slog.Logger

	mu          sync.Mutex
	bucketReady bool
}

// New returns nil when mirroring is disabled.
func New(cfg *config.Config, counter Counter, logger *slog.Logger) (*Mirror, error) {
	if cfg == nil || !cfg.Mirror.Enabled {
		return nil, nil
	}
	client, err := minio.New(cfg.Mirror.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Mirror.AccessKey, cfg.Mirror.SecretKey, ""),
		Secure: cfg.Mirror.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}
	return newWithClient(client, cfg.Mirror.Bucket, cfg.Mirror.Prefix, counter, logger), nil
}

func newWithClient(client objectStore, bucket, prefix string, counter Counter, logger *slog.Logger) *Mirror {
	return &Mirror{
		client:  client,
		bucket:  strings.TrimSpace(bucket),
		prefix:  strings.Trim(strings.TrimSpace(prefix), "/"),
		counter: counter,
		logger:  logging.NewComponentLogger(logger, "mirror"),
	}
}

// ObjectKey returns the bucket key for a local artifact of jobID.
func (m *Mirror) ObjectKey(jobID, localPath string) string {
	parts := []string{jobID, filepath.Base(localPath)}
	if m.prefix != "" {
		parts = append([]string{m.prefix}, parts...)
	}
	return path.Join(parts...)
}

// Mirror uploads the processed video and caption file of a completed job.
func (m *Mirror) Mirror(ctx context.Context, job *jobs.Job) error {
	if m == nil {
		return nil
	}
	if job == nil || !job.HasArtifacts() {
		return errors.New("mirror: job has no artifacts")
	}
	if err := m.ensureBucket(ctx); err != nil {
		return err
	}

	uploads := []struct {
		path        string
		contentType string
	}{
		{job.ProcessedPath, "video/mp4"},
		{job.CaptionPath, "application/x-subrip"},
	}
	var errs []error
	for _, upload := range uploads {
		key := m.ObjectKey(job.ID, upload.path)
		info, err := m.client.FPutObject(ctx, m.bucket, key, upload.path, minio.PutObjectOptions{
			ContentType:  upload.contentType,
			UserMetadata: map[string]string{"job-id": job.ID},
		})
		m.count(err == nil)
		if err != nil {
			errs = append(errs, fmt.Errorf("upload %s: %w", key, err))
			continue
		}
		m.logger.Info("artifact mirrored",
			logging.JobID(job.ID),
			logging.String("object_key", key),
			logging.Int64("size_bytes", info.Size),
		)
	}
	return errors.Join(errs...)
}

// Check reports whether the configured bucket is reachable and present.
func (m *Mirror) Check(ctx context.Context) (bool, error) {
	if m == nil {
		return false, errors.New("mirror disabled")
	}
	return m.client.BucketExists(ctx, m.bucket)
}

// Bucket returns the destination bucket name.
func (m *Mirror) Bucket() string {
	if m == nil {
		return ""
	}
	return m.bucket
}

func (m *Mirror) ensureBucket(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.bucketReady {
		return nil
	}
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", m.bucket, err)
	}
	if !exists {
		if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket %s: %w", m.bucket, err)
		}
	}
	m.bucketReady = true
	return nil
}

func (m *Mirror) count(ok bool) {
	if m.counter != nil {
		m.counter.MirrorUpload(ok)
	}
}
