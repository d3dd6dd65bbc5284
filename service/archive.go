package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/rs/zerolog"
)

// Archiver copies a provider-hosted recording into our own storage so the
// file survives the provider's retention window.
type Archiver interface {
	Archive(ctx context.Context, sessionId uuid.UUID, downloadUrl string) (objectName string, err error)
}

type minioArchiver struct {
	storage *minio.Client
	bucket  string
	http    *http.Client
}

func NewArchiver(storage *minio.Client, bucket string) Archiver {
	return &minioArchiver{
		storage: storage,
		bucket:  bucket,
		http:    &http.Client{Timeout: 5 * time.Minute},
	}
}

func (a *minioArchiver) Archive(ctx context.Context, sessionId uuid.UUID, downloadUrl string) (string, error) {
	tempDir := filepath.Join("temp", sessionId.String())
	defer os.RemoveAll(tempDir)

	if err := os.MkdirAll(tempDir, os.ModePerm); err != nil {
		return "", err
	}
	localPath := filepath.Join(tempDir, "recording.mp4")

	zerolog.Ctx(ctx).Info().Str("session_id", sessionId.String()).Msg("downloading recording from provider")
	if err := a.download(ctx, downloadUrl, localPath); err != nil {
		return "", err
	}

	objectName := fmt.Sprintf("recordings/%s/recording.mp4", sessionId.String())
	_, err := a.storage.FPutObject(ctx, a.bucket, objectName, localPath, minio.PutObjectOptions{
		ContentType: "video/mp4",
	})
	if err != nil {
		return "", err
	}

	zerolog.Ctx(ctx).Info().
		Str("session_id", sessionId.String()).
		Str("object_name", objectName).
		Msg("recording archived")

	return objectName, nil
}

func (a *minioArchiver) download(ctx context.Context, url, localPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	res, err := a.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("recording download returned %d", res.StatusCode)
	}

	out, err := os.Create(localPath)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, res.Body)
	return err
}
