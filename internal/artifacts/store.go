// Package artifacts persists diagnostic artifacts (screenshots and
// traces) captured on test failure. The local reports directory is the
// source of truth; an object-storage mirror is attached when configured
// and is strictly best-effort.
package artifacts

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/storeqa/storeqa/internal/config"
	"github.com/storeqa/storeqa/internal/observability"
)

// Store writes artifacts locally and optionally mirrors them to object
// storage. Every method in the failure path is best-effort: errors are
// returned for logging but must never replace the test's own failure.
type Store struct {
	dir    string
	mirror *minio.Client
	bucket string
	log    *zap.Logger
}

// NewStore creates an artifact store rooted at the configured
// screenshot folder. When the artifacts config names an endpoint, a
// MinIO mirror is attached; a mirror that fails to construct degrades
// to local-only with a warning, since diagnostics must not block tests.
func NewStore(cfg *config.Config, logger *zap.Logger) *Store {
	if logger == nil {
		logger, _ = zap.NewDevelopment()
	}
	s := &Store{
		dir: cfg.ScreenshotFolder(),
		log: logger,
	}

	if cfg.Artifacts.Endpoint != "" {
		client, err := minio.New(cfg.Artifacts.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.Artifacts.AccessKey, cfg.Artifacts.SecretKey, ""),
			Secure: cfg.Artifacts.UseSSL,
		})
		if err != nil {
			logger.Warn("artifact mirror unavailable", zap.Error(err))
		} else {
			s.mirror = client
			s.bucket = cfg.Artifacts.Bucket
		}
	}

	return s
}

// Dir returns the local artifacts directory.
func (s *Store) Dir() string { return s.dir }

// Name builds the canonical artifact name for a test:
// <test>_<timestamp><ext>. Subtest separators are flattened so the
// name stays a single path element.
func Name(testName, ext string) string {
	flat := strings.NewReplacer("/", "_", "[", "_", "]", "").Replace(testName)
	return fmt.Sprintf("%s_%s%s", flat, time.Now().Format("20060102_150405"), ext)
}

// SaveScreenshot writes screenshot bytes under the store directory and
// mirrors them when a mirror is attached.
func (s *Store) SaveScreenshot(ctx context.Context, testName string, data []byte) (string, error) {
	name := Name(testName, ".png")
	path := filepath.Join(s.dir, name)

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		observability.Default().ArtifactFailures.Inc()
		return "", fmt.Errorf("creating artifact dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		observability.Default().ArtifactFailures.Inc()
		return "", fmt.Errorf("writing screenshot: %w", err)
	}

	s.upload(ctx, name, path, "image/png")
	return path, nil
}

// Attach mirrors an artifact that already exists on disk, such as a
// trace zip.
func (s *Store) Attach(ctx context.Context, path, contentType string) {
	s.upload(ctx, filepath.Base(path), path, contentType)
}

// upload mirrors one file to object storage. Failures are logged and
// counted, never raised.
func (s *Store) upload(ctx context.Context, key, path, contentType string) {
	if s.mirror == nil {
		return
	}
	_, err := s.mirror.FPutObject(ctx, s.bucket, key, path, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		observability.Default().ArtifactFailures.Inc()
		s.log.Warn("mirroring artifact failed",
			zap.String("key", key),
			zap.Error(err),
		)
		return
	}
	s.log.Debug("artifact mirrored", zap.String("key", fmt.Sprintf("s3://%s/%s", s.bucket, key)))
}
