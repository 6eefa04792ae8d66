// media — загрузка фото собак и аватаров в S3/MinIO.
// media.go — конструктор клиента MinIO: нормализует endpoint,
// настраивает Secure/creds и проверяет наличие целевого бакета.
// Upload — валидация файла, ключ "<kind>/<owner>/<uuid><ext>", PUT и публичный URL.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"path"
	"slices"
	"strings"

	"github.com/google/uuid"
	mclient "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/pribylovaa/dog-directory/internal/config"
	"github.com/pribylovaa/dog-directory/internal/pkg/log"
)

// Kind — назначение файла, первый сегмент ключа.
type Kind string

const (
	KindDogs    Kind = "dogs"
	KindAvatars Kind = "avatars"
)

var (
	ErrDisabled        = errors.New("media upload is disabled")
	ErrInvalidArgument = errors.New("invalid argument")
)

// Uploader — адаптер MinIO для загрузки изображений.
type Uploader struct {
	cfg    config.MediaConfig
	client *mclient.Client
}

// New создаёт и инициализирует клиент MinIO.
// Пустой endpoint — ErrDisabled. Бакет должен существовать (fail-fast).
func New(ctx context.Context, cfg config.MediaConfig) (*Uploader, error) {
	const op = "media.New"

	if !cfg.Enabled() {
		return nil, ErrDisabled
	}

	if cfg.PublicBaseURL == "" {
		return nil, fmt.Errorf("%s: public_base_url is required", op)
	}

	endpoint := cfg.Endpoint
	secure := strings.HasPrefix(endpoint, "https://")

	if u, err := url.Parse(endpoint); err == nil && u.Scheme != "" {
		endpoint = u.Host
		secure = u.Scheme == "https"
	}

	client, err := mclient.New(endpoint, &mclient.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !exists {
		return nil, fmt.Errorf("%s: bucket %q does not exist", op, cfg.Bucket)
	}

	return &Uploader{cfg: cfg, client: client}, nil
}

// Upload кладёт файл в бакет и возвращает его публичный URL.
func (u *Uploader) Upload(ctx context.Context, kind Kind, owner uuid.UUID, r io.Reader, size int64, contentType string) (string, error) {
	const op = "media.Upload"

	key, err := u.objectKey(kind, owner, size, contentType)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	_, err = u.client.PutObject(ctx, u.cfg.Bucket, key, r, size, mclient.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	log.From(ctx).Info("media_uploaded",
		slog.String("kind", string(kind)),
		slog.String("key", key),
		slog.Int64("size", size),
	)

	return u.PublicURL(key), nil
}

// PublicURL — публичный адрес объекта по ключу.
func (u *Uploader) PublicURL(key string) string {
	return strings.TrimRight(u.cfg.PublicBaseURL, "/") + "/" + key
}

// objectKey валидирует параметры и формирует ключ вида <kind>/<owner>/<uuid><ext>.
func (u *Uploader) objectKey(kind Kind, owner uuid.UUID, size int64, contentType string) (string, error) {
	if kind != KindDogs && kind != KindAvatars {
		return "", fmt.Errorf("%w: unknown kind %q", ErrInvalidArgument, kind)
	}

	if owner == uuid.Nil {
		return "", fmt.Errorf("%w: owner is required", ErrInvalidArgument)
	}

	if size <= 0 || size > u.cfg.MaxSizeBytes {
		return "", fmt.Errorf("%w: size %d out of range (max %d)", ErrInvalidArgument, size, u.cfg.MaxSizeBytes)
	}

	if !slices.Contains(u.cfg.AllowedContentTypes, contentType) {
		return "", fmt.Errorf("%w: content type %q is not allowed", ErrInvalidArgument, contentType)
	}

	return path.Join(string(kind), owner.String(), uuid.NewString()+extension(contentType)), nil
}

func extension(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ""
	}
}

// ContentTypeByName — тип содержимого по расширению файла (для CLI).
func ContentTypeByName(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	default:
		return ""
	}
}
