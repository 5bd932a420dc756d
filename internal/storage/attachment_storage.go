package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/h2non/filetype"

	"github.com/ignatzorin/freelance-jobs/internal/pkg/apperror"
)

// PublicPrefix: URL-префикс, под которым раздаются вложения.
const PublicPrefix = "/uploads"

// сколько байт нужно filetype для определения типа
const sniffLen = 261

var allowedMIME = map[string]bool{
	"image/jpeg":         true,
	"image/png":          true,
	"image/gif":          true,
	"image/webp":         true,
	"application/pdf":    true,
	"application/zip":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         true,
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": true,
	"application/vnd.ms-excel": true,
	"application/rtf":          true,
}

// StoredFile описывает сохранённое вложение.
type StoredFile struct {
	// Ref: строка, которую клиент кладёт в attachments заказа или отклика.
	Ref          string `json:"ref"`
	OriginalName string `json:"originalName"`
	MIME         string `json:"mime"`
	Size         int64  `json:"size"`
}

// AttachmentStorage хранит вложения на диске, по каталогу на пользователя.
type AttachmentStorage struct {
	rootPath       string
	maxUploadBytes int64
}

func NewAttachmentStorage(rootPath string, maxUploadMB int64) (*AttachmentStorage, error) {
	if err := os.MkdirAll(rootPath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: не удалось создать каталог %s: %w", rootPath, err)
	}
	return &AttachmentStorage{
		rootPath:       rootPath,
		maxUploadBytes: maxUploadMB * 1024 * 1024,
	}, nil
}

func (s *AttachmentStorage) RootPath() string {
	return s.rootPath
}

// Save определяет тип файла по сигнатуре и сохраняет его под случайным именем.
func (s *AttachmentStorage) Save(ctx context.Context, userID uuid.UUID, originalName string, r io.Reader) (*StoredFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, fmt.Errorf("storage: не удалось прочитать файл: %w", err)
	}
	head = head[:n]
	if n == 0 {
		return nil, apperror.New(apperror.ErrCodeValidation, "файл пустой")
	}

	kind, err := filetype.Match(head)
	if err != nil || kind == filetype.Unknown {
		return nil, apperror.New(apperror.ErrCodeValidation, "не удалось определить тип файла")
	}
	if !allowedMIME[kind.MIME.Value] {
		return nil, apperror.New(apperror.ErrCodeValidation, fmt.Sprintf("неподдерживаемый тип файла: %s", kind.MIME.Value))
	}

	userDir := filepath.Join(s.rootPath, userID.String())
	if err := os.MkdirAll(userDir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: не удалось создать каталог пользователя: %w", err)
	}

	fileName := uuid.NewString() + "." + kind.Extension
	targetPath := filepath.Join(userDir, fileName)
	tempPath := targetPath + ".tmp"

	f, err := os.Create(tempPath)
	if err != nil {
		return nil, fmt.Errorf("storage: не удалось создать файл: %w", err)
	}
	defer f.Close()

	limited := io.LimitedReader{R: io.MultiReader(bytes.NewReader(head), r), N: s.maxUploadBytes + 1}
	written, err := io.Copy(f, &limited)
	if err != nil {
		_ = os.Remove(tempPath)
		return nil, fmt.Errorf("storage: ошибка записи файла: %w", err)
	}
	if written > s.maxUploadBytes {
		_ = os.Remove(tempPath)
		return nil, apperror.New(apperror.ErrCodeValidation, fmt.Sprintf("размер файла превышает %d байт", s.maxUploadBytes))
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tempPath)
		return nil, fmt.Errorf("storage: ошибка закрытия файла: %w", err)
	}
	if err := os.Rename(tempPath, targetPath); err != nil {
		return nil, fmt.Errorf("storage: не удалось переименовать файл: %w", err)
	}

	return &StoredFile{
		Ref:          path.Join(PublicPrefix, userID.String(), fileName),
		OriginalName: sanitizeFilename(originalName),
		MIME:         kind.MIME.Value,
		Size:         written,
	}, nil
}

// Delete удаляет вложение по ссылке. Удалить можно только своё.
func (s *AttachmentStorage) Delete(ctx context.Context, userID uuid.UUID, ref string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rel := strings.TrimPrefix(ref, PublicPrefix+"/")
	owner, name, ok := strings.Cut(rel, "/")
	if !ok || owner != userID.String() || name != filepath.Base(name) {
		return apperror.ErrForbidden
	}

	target := filepath.Join(s.rootPath, owner, name)
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: не удалось удалить файл: %w", err)
	}
	return nil
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "..", "")
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "file"
	}
	return name
}
