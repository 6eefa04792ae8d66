package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pribylovaa/dog-directory/internal/pkg/log"
)

const defaultTokensFile = "tokens.json"

// FileStore хранит пару токенов в JSON-файле (права 0600), переживая перезапуски CLI.
// Запись атомарна: временный файл в том же каталоге + rename.
type FileStore struct {
	path string
}

// NewFileStore создаёт хранилище по пути path.
// Пустой path — <UserConfigDir>/dog-directory/tokens.json.
func NewFileStore(path string) (*FileStore, error) {
	const op = "apiclient.NewFileStore"

	if path == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		path = filepath.Join(dir, "dog-directory", defaultTokensFile)
	}

	return &FileStore{path: path}, nil
}

// Path — итоговый путь к файлу.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Get(ctx context.Context) (TokenPair, bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.From(ctx).Warn("token_file_read_failed",
				slog.String("path", s.path),
				slog.String("err", err.Error()),
			)
		}

		return TokenPair{}, false
	}

	var pair TokenPair
	if err := json.Unmarshal(data, &pair); err != nil {
		log.From(ctx).Warn("token_file_corrupted",
			slog.String("path", s.path),
			slog.String("err", err.Error()),
		)

		return TokenPair{}, false
	}

	if !pair.Complete() {
		return TokenPair{}, false
	}

	return pair, true
}

func (s *FileStore) Set(_ context.Context, pair TokenPair) error {
	const op = "apiclient.FileStore.Set"

	if !pair.Complete() {
		return fmt.Errorf("%s: %w", op, ErrPartialPair)
	}

	data, err := json.Marshal(pair)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("%s: mkdir: %w", op, err)
	}

	tmp, err := os.CreateTemp(dir, ".tokens-*")
	if err != nil {
		return fmt.Errorf("%s: temp file: %w", op, err)
	}

	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("%s: chmod: %w", op, err)
	}

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("%s: write: %w", op, err)
	}

	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("%s: sync: %w", op, err)
	}

	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("%s: close: %w", op, err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		cleanup()
		return fmt.Errorf("%s: rename: %w", op, err)
	}

	return nil
}

func (s *FileStore) Clear(_ context.Context) error {
	const op = "apiclient.FileStore.Clear"

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

var _ CredentialStore = (*FileStore)(nil)
