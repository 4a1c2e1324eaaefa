package usecase_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"strings"
	"testing"

	"go-recruitment-platform/internal/cache"
	"go-recruitment-platform/internal/domain"
	"go-recruitment-platform/internal/repository/memory"
	"go-recruitment-platform/internal/usecase"
	"go-recruitment-platform/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockFileStorage struct {
	mock.Mock
}

func (m *MockFileStorage) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	args := m.Called(ctx, key, contentType, data)
	return args.String(0), args.Error(1)
}

func (m *MockFileStorage) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

var pdf = append([]byte("%PDF-1.4\n"), bytes.Repeat([]byte("x"), 64)...)

func pngImage(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 40, 20))
	for x := 0; x < 40; x++ {
		img.Set(x, 10, color.RGBA{R: 255, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestUpload(t *testing.T) {
	ctx := context.Background()
	user := candidate("c1")

	t.Run("Rejected before reaching storage", func(t *testing.T) {
		files := new(MockFileStorage)
		uc := usecase.NewUploadUsecase(files, 1024, nil)

		_, err := uc.Upload(ctx, domain.Anonymous(), domain.FileTypeCV, "cv.pdf", pdf)
		assertCode(t, err, http.StatusUnauthorized)
		_, err = uc.Upload(ctx, user, domain.FileTypeCV, "cv.pdf", nil)
		assertCode(t, err, http.StatusBadRequest)
		_, err = uc.Upload(ctx, user, domain.FileTypeCV, "cv.pdf", append(pdf, make([]byte, 2048)...))
		assertCode(t, err, http.StatusRequestEntityTooLarge)
		_, err = uc.Upload(ctx, user, domain.FileTypeCV, "cv.exe", pdf)
		assertCode(t, err, http.StatusBadRequest)
		_, err = uc.Upload(ctx, user, domain.FileTypeImage, "photo.png", pdf)
		assertCode(t, err, http.StatusBadRequest)

		files.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Storage not configured", func(t *testing.T) {
		uc := usecase.NewUploadUsecase(nil, 1024, nil)
		_, err := uc.Upload(ctx, user, domain.FileTypeCV, "cv.pdf", pdf)
		assertCode(t, err, http.StatusServiceUnavailable)
	})

	t.Run("CV is stored under its type prefix", func(t *testing.T) {
		files := new(MockFileStorage)
		audit := &auditRecorder{}
		uc := usecase.NewUploadUsecase(files, 1024, audit)

		files.On("Put", mock.Anything, mock.MatchedBy(func(key string) bool {
			return strings.HasPrefix(key, "cv/") && strings.HasSuffix(key, "_My_CV.pdf")
		}), "application/pdf", pdf).Return("https://cdn.example.com/object", nil).Once()

		stored, err := uc.Upload(ctx, user, domain.FileTypeCV, "My CV.pdf", pdf)
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example.com/object", stored.URL)
		assert.Equal(t, domain.FileTypeCV, stored.FileType)
		assert.NotContains(t, stored.Key, "/")
		assert.Equal(t, int64(len(pdf)), stored.Size)
		assert.Equal(t, []string{domain.AuditFileUploaded}, audit.actions())
		files.AssertExpectations(t)
	})

	t.Run("Images are re-encoded as JPEG", func(t *testing.T) {
		files := new(MockFileStorage)
		uc := usecase.NewUploadUsecase(files, 1<<20, nil)
		files.On("Put", mock.Anything, mock.MatchedBy(func(key string) bool {
			return strings.HasPrefix(key, "image/") && strings.HasSuffix(key, ".jpg")
		}), "image/jpeg", mock.Anything).Return("https://cdn.example.com/img", nil).Once()

		stored, err := uc.Upload(ctx, user, domain.FileTypeImage, "avatar.png", pngImage(t))
		require.NoError(t, err)
		assert.Equal(t, "image/jpeg", stored.ContentType)
		files.AssertExpectations(t)
	})

	t.Run("Storage failure is reported as unavailable", func(t *testing.T) {
		files := new(MockFileStorage)
		uc := usecase.NewUploadUsecase(files, 1024, nil)
		files.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("timeout"))

		_, err := uc.Upload(ctx, user, domain.FileTypeCV, "cv.pdf", pdf)
		assertCode(t, err, http.StatusServiceUnavailable)
	})
}

type scannerFunc func(data []byte) (string, error)

func (f scannerFunc) Scan(_ context.Context, _ string, data []byte) (string, error) { return f(data) }

func TestUploadMalwareScan(t *testing.T) {
	ctx := context.Background()
	user := candidate("c1")

	t.Run("Infected files are rejected and audited", func(t *testing.T) {
		files := new(MockFileStorage)
		audit := &auditRecorder{}
		uc := usecase.NewUploadUsecase(files, 1024, audit, usecase.WithScanner(scannerFunc(func([]byte) (string, error) {
			return "Eicar-Test-Signature", nil
		})))

		_, err := uc.Upload(ctx, user, domain.FileTypeCV, "cv.pdf", pdf)
		assertCode(t, err, http.StatusBadRequest)
		assert.Equal(t, []string{domain.AuditFileRejected}, audit.actions())
		files.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Scan failures block the upload", func(t *testing.T) {
		files := new(MockFileStorage)
		uc := usecase.NewUploadUsecase(files, 1024, nil, usecase.WithScanner(scannerFunc(func([]byte) (string, error) {
			return "", errors.New("clamd down")
		})))

		_, err := uc.Upload(ctx, user, domain.FileTypeCV, "cv.pdf", pdf)
		assertCode(t, err, http.StatusServiceUnavailable)
		files.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Clean files are stored", func(t *testing.T) {
		files := new(MockFileStorage)
		var scanned []byte
		uc := usecase.NewUploadUsecase(files, 1024, nil, usecase.WithScanner(scannerFunc(func(data []byte) (string, error) {
			scanned = data
			return "", nil
		})))
		files.On("Put", mock.Anything, mock.Anything, "application/pdf", pdf).Return("https://cdn.example.com/cv", nil).Once()

		_, err := uc.Upload(ctx, user, domain.FileTypeCV, "cv.pdf", pdf)
		require.NoError(t, err)
		assert.Equal(t, pdf, scanned)
		files.AssertExpectations(t)
	})
}

func TestDeleteUpload(t *testing.T) {
	ctx := context.Background()
	r := domain.Viewer{ID: "r1", Role: domain.RoleRecruiter}

	files := new(MockFileStorage)
	uc := usecase.NewUploadUsecase(files, 1024, nil)

	assertCode(t, uc.Delete(ctx, candidate("c1"), domain.FileTypeCV, "a.pdf"), http.StatusForbidden)
	assertCode(t, uc.Delete(ctx, r, "video", "a.pdf"), http.StatusBadRequest)
	assertCode(t, uc.Delete(ctx, r, domain.FileTypeCV, "../secrets"), http.StatusBadRequest)

	files.On("Delete", mock.Anything, "cv/a.pdf").Return(nil).Once()
	require.NoError(t, uc.Delete(ctx, r, domain.FileTypeCV, "a.pdf"))
	files.AssertExpectations(t)
}

func TestCheckUpload(t *testing.T) {
	ctx := context.Background()
	uc := usecase.NewUploadUsecase(nil, 1024, nil)

	t.Run("Passes without storage or content", func(t *testing.T) {
		require.NoError(t, uc.Check(ctx, candidate("c1"), domain.FileTypeCV, "cv.pdf", 512))
		require.NoError(t, uc.Check(ctx, candidate("c1"), domain.FileTypeImage, "me.JPG", 1024))
	})

	t.Run("Requires a signed in user", func(t *testing.T) {
		assertCode(t, uc.Check(ctx, domain.Anonymous(), domain.FileTypeCV, "cv.pdf", 512), http.StatusUnauthorized)
	})

	t.Run("Reports every problem at once", func(t *testing.T) {
		err := uc.Check(ctx, candidate("c1"), domain.FileTypeCV, "cv.exe", 4096)
		assertCode(t, err, http.StatusBadRequest)
		msg := apperror.As(err).Message
		assert.Contains(t, msg, "extension .exe not allowed")
		assert.Contains(t, msg, "1024 byte limit")
	})

	for name, tc := range map[string]struct {
		fileType domain.FileType
		fileName string
		size     int64
	}{
		"Empty file":        {domain.FileTypeCV, "cv.pdf", 0},
		"Missing name":      {domain.FileTypeCV, "  ", 10},
		"Unknown file type": {"video", "clip.mp4", 10},
		"Wrong extension":   {domain.FileTypeImage, "cv.pdf", 10},
	} {
		t.Run(name, func(t *testing.T) {
			assertCode(t, uc.Check(ctx, candidate("c1"), tc.fileType, tc.fileName, tc.size), http.StatusBadRequest)
		})
	}
}

type downStore struct {
	*memory.DocumentStore
}

func (downStore) Ping(context.Context) error { return errors.New("connection refused") }

type downCache struct {
	*cache.MemoryStore
}

func (downCache) Ping(context.Context) error { return errors.New("connection refused") }

func TestHealth(t *testing.T) {
	ctx := context.Background()

	ok := usecase.NewHealthUsecase(memory.NewDocumentStore(), cache.NewMemoryStore()).Check(ctx)
	assert.Equal(t, map[string]string{"status": "ok", "database": "up", "cache": "up"}, ok)

	noCache := usecase.NewHealthUsecase(memory.NewDocumentStore(), nil).Check(ctx)
	assert.Equal(t, "disabled", noCache["cache"])

	cacheDown := usecase.NewHealthUsecase(memory.NewDocumentStore(), downCache{cache.NewMemoryStore()}).Check(ctx)
	assert.Equal(t, "ok", cacheDown["status"])
	assert.Equal(t, "down", cacheDown["cache"])

	dbDown := usecase.NewHealthUsecase(downStore{memory.NewDocumentStore()}, nil).Check(ctx)
	assert.Equal(t, "degraded", dbDown["status"])
	assert.Equal(t, "down", dbDown["database"])
}
