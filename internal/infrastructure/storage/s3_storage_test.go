package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/smartfertilizer/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig(endpoint string) *config.StorageConfig {
	return &config.StorageConfig{
		Bucket:       "reports",
		AccessKey:    "test-key",
		SecretKey:    "test-secret",
		Region:       "us-east-1",
		Endpoint:     endpoint,
		UsePathStyle: true,
	}
}

func TestNewS3ObjectStorage_Validation(t *testing.T) {
	t.Run("nil config returns error", func(t *testing.T) {
		_, err := NewS3ObjectStorage(nil)
		require.ErrorContains(t, err, "configuration is required")
	})

	t.Run("missing bucket returns error", func(t *testing.T) {
		cfg := testConfig("http://localhost:9000")
		cfg.Bucket = ""
		_, err := NewS3ObjectStorage(cfg)
		require.ErrorContains(t, err, "bucket is required")
	})

	t.Run("missing credentials return error", func(t *testing.T) {
		cfg := testConfig("http://localhost:9000")
		cfg.SecretKey = ""
		_, err := NewS3ObjectStorage(cfg)
		require.ErrorContains(t, err, "secret key are required")
	})

	t.Run("default presign expiration", func(t *testing.T) {
		s, err := NewS3ObjectStorage(testConfig("http://localhost:9000"))
		require.NoError(t, err)
		assert.Equal(t, "reports", s.Bucket())
		assert.Equal(t, defaultPresignExpiration, s.presignExpiration)
	})

	t.Run("option overrides configured expiration", func(t *testing.T) {
		cfg := testConfig("http://localhost:9000")
		cfg.PresignExpiration = time.Hour
		s, err := NewS3ObjectStorage(cfg, WithPresignExpiration(5*time.Minute), WithLogger(zap.NewNop()))
		require.NoError(t, err)
		assert.Equal(t, 5*time.Minute, s.presignExpiration)
	})
}

func TestNormalizeEndpoint(t *testing.T) {
	for _, tc := range []struct {
		in     string
		ssl    bool
		want   string
		hasErr bool
	}{
		{"", false, "", false},
		{"minio:9000", false, "http://minio:9000", false},
		{"minio:9000", true, "https://minio:9000", false},
		{"https://s3.example.com", false, "https://s3.example.com", false},
		{"http://", false, "", true},
	} {
		got, err := normalizeEndpoint(tc.in, tc.ssl)
		if tc.hasErr {
			assert.Error(t, err, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got)
	}
}

func TestS3ObjectStorage_GenerateDownloadURL(t *testing.T) {
	s, err := NewS3ObjectStorage(testConfig("http://localhost:9000"))
	require.NoError(t, err)

	link, expiresAt, err := s.GenerateDownloadURL(context.Background(), "reports/u1/r1.pdf", 0)
	require.NoError(t, err)

	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "localhost:9000", u.Host)
	assert.Equal(t, "/reports/reports/u1/r1.pdf", u.Path)
	assert.Equal(t, "900", u.Query().Get("X-Amz-Expires"))
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
	assert.WithinDuration(t, time.Now().Add(defaultPresignExpiration), expiresAt, 5*time.Second)

	_, _, err = s.GenerateDownloadURL(context.Background(), "", time.Minute)
	assert.ErrorContains(t, err, "storage key is required")
}

type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	buckets map[string]bool
}

func newFakeS3(t *testing.T) (*fakeS3, *httptest.Server) {
	f := &fakeS3{objects: map[string][]byte{}, types: map[string]string{}, buckets: map[string]bool{}}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		switch {
		case r.Method == http.MethodHead && r.URL.Path == "/reports":
			if !f.buckets["reports"] {
				w.WriteHeader(http.StatusNotFound)
			}
		case r.Method == http.MethodPut && r.URL.Path == "/reports":
			f.buckets["reports"] = true
		case r.Method == http.MethodPut:
			body, _ := io.ReadAll(r.Body)
			f.objects[r.URL.Path] = body
			f.types[r.URL.Path] = r.Header.Get("Content-Type")
			w.Header().Set("ETag", `"etag"`)
		default:
			w.WriteHeader(http.StatusNotImplemented)
		}
	}))
	t.Cleanup(server.Close)
	return f, server
}

func TestS3ObjectStorage_Upload(t *testing.T) {
	fake, server := newFakeS3(t)
	s, err := NewS3ObjectStorage(testConfig(server.URL))
	require.NoError(t, err)

	err = s.Upload(context.Background(), "reports/u1/r1.pdf", []byte("%PDF-1.4 report"), "application/pdf")
	require.NoError(t, err)

	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.Contains(t, string(fake.objects["/reports/reports/u1/r1.pdf"]), "%PDF-1.4 report")
	assert.Equal(t, "application/pdf", fake.types["/reports/reports/u1/r1.pdf"])
}

func TestS3ObjectStorage_Upload_RequiresKey(t *testing.T) {
	s, err := NewS3ObjectStorage(testConfig("http://localhost:9000"))
	require.NoError(t, err)

	err = s.Upload(context.Background(), "", []byte("x"), "text/plain")
	assert.ErrorContains(t, err, "storage key is required")
}

func TestS3ObjectStorage_EnsureBucket(t *testing.T) {
	fake, server := newFakeS3(t)
	s, err := NewS3ObjectStorage(testConfig(server.URL))
	require.NoError(t, err)

	require.NoError(t, s.EnsureBucket(context.Background()))
	fake.mu.Lock()
	assert.True(t, fake.buckets["reports"])
	fake.mu.Unlock()

	require.NoError(t, s.EnsureBucket(context.Background()))
	require.NoError(t, s.Ping(context.Background()))
}

// TestIntegration_UploadAndLink runs against a real S3-compatible server when STORAGE_TEST_ENDPOINT is set
func TestIntegration_UploadAndLink(t *testing.T) {
	endpoint := os.Getenv("STORAGE_TEST_ENDPOINT")
	if endpoint == "" {
		t.Skip("STORAGE_TEST_ENDPOINT not set")
	}

	cfg := testConfig(endpoint)
	cfg.AccessKey = os.Getenv("STORAGE_TEST_ACCESS_KEY")
	cfg.SecretKey = os.Getenv("STORAGE_TEST_SECRET_KEY")
	s, err := NewS3ObjectStorage(cfg)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, s.EnsureBucket(ctx))
	require.NoError(t, s.Upload(ctx, "integration/report.pdf", []byte("%PDF-1.4"), "application/pdf"))

	link, _, err := s.GenerateDownloadURL(ctx, "integration/report.pdf", time.Minute)
	require.NoError(t, err)

	resp, err := http.Get(link)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
