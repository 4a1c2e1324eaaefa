package storage

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"go-recruitment-platform/internal/domain"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestValidate(t *testing.T) {
	pdf := append([]byte("%PDF-1.7\n"), make([]byte, 32)...)

	t.Run("Accepts a PDF resume", func(t *testing.T) {
		ext, ct, err := Validate(domain.FileTypeCV, "Resume.PDF", pdf)
		require.NoError(t, err)
		assert.Equal(t, ".pdf", ext)
		assert.Equal(t, "application/pdf", ct)
	})

	t.Run("Rejects spoofed content", func(t *testing.T) {
		_, _, err := Validate(domain.FileTypeCV, "resume.pdf", []byte("MZ\x90\x00 not a pdf"))
		assert.ErrorIs(t, err, ErrInvalidFile)
	})

	t.Run("Rejects an image extension for a CV", func(t *testing.T) {
		_, _, err := Validate(domain.FileTypeCV, "photo.png", pngBytes(t, 2, 2))
		assert.ErrorIs(t, err, ErrInvalidFile)
	})

	t.Run("Accepts a PNG image", func(t *testing.T) {
		_, ct, err := Validate(domain.FileTypeImage, "logo.png", pngBytes(t, 2, 2))
		require.NoError(t, err)
		assert.Equal(t, "image/png", ct)
	})

	t.Run("Rejects missing extension", func(t *testing.T) {
		_, _, err := Validate(domain.FileTypeImage, "logo", pngBytes(t, 2, 2))
		assert.ErrorIs(t, err, ErrInvalidFile)
	})
}

func TestCheckName(t *testing.T) {
	ext, ct, err := CheckName(domain.FileTypeCV, "cv.DOCX")
	require.NoError(t, err)
	assert.Equal(t, ".docx", ext)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.wordprocessingml.document", ct)

	for _, tc := range []struct {
		fileType domain.FileType
		name     string
	}{
		{domain.FileTypeCV, "cv.exe"},
		{domain.FileTypeImage, "cv.pdf"},
		{domain.FileTypeImage, "noext"},
		{"video", "clip.mp4"},
	} {
		_, _, err := CheckName(tc.fileType, tc.name)
		assert.ErrorIs(t, err, ErrInvalidFile, tc.name)
	}
}

func TestCompressImage(t *testing.T) {
	out, err := CompressImage(pngBytes(t, 400, 100), 200, DefaultJPEGQuality)
	require.NoError(t, err)

	img, format, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 200, img.Bounds().Dx())
	assert.Equal(t, 50, img.Bounds().Dy())

	_, err = CompressImage([]byte("nope"), 200, 80)
	assert.Error(t, err)
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "My_CV_2024", SanitizeFilename("My CV 2024.pdf"))
	assert.Equal(t, "file", SanitizeFilename("日本.pdf"))
	assert.True(t, ValidObjectName("abc.pdf"))
	assert.False(t, ValidObjectName("../etc/passwd"))
	assert.False(t, ValidObjectName("noext"))
}

type fakeObjects struct {
	put    *s3.PutObjectInput
	delKey string
	err    error
}

func (f *fakeObjects) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.put = in
	return &s3.PutObjectOutput{}, f.err
}

func (f *fakeObjects) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.delKey = aws.ToString(in.Key)
	return &s3.DeleteObjectOutput{}, f.err
}

func TestS3Storage(t *testing.T) {
	ctx := context.Background()

	t.Run("Put returns the public URL", func(t *testing.T) {
		api := &fakeObjects{}
		s := &S3Storage{api: api, cfg: Config{Provider: ProviderWasabi, Region: "eu-west-1", Bucket: "uploads"}}

		url, err := s.Put(ctx, "cv/abc.pdf", "application/pdf", []byte("%PDF"))
		require.NoError(t, err)
		assert.Equal(t, "https://s3.eu-west-1.wasabisys.com/uploads/cv/abc.pdf", url)
		assert.Equal(t, "application/pdf", aws.ToString(api.put.ContentType))
	})

	t.Run("Public base URL wins", func(t *testing.T) {
		cfg := Config{Bucket: "b", Region: "us-east-1", PublicBaseURL: "https://cdn.example.com"}
		assert.Equal(t, "https://cdn.example.com/image/x.jpg", cfg.ObjectURL("image/x.jpg"))
		assert.Equal(t, "https://b.s3.us-east-1.amazonaws.com/k", Config{Bucket: "b", Region: "us-east-1"}.ObjectURL("k"))
	})

	t.Run("Errors are wrapped", func(t *testing.T) {
		boom := errors.New("denied")
		s := &S3Storage{api: &fakeObjects{err: boom}, cfg: Config{Bucket: "b"}}
		assert.ErrorIs(t, s.Delete(ctx, "k"), boom)
	})
}
