// Package storage persists message attachments and returns their public URLs.
package storage

import (
	"context"
	"fmt"
	"mime"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/techagentng/photohire/config"
	errs "github.com/techagentng/photohire/errors"
	"go.uber.org/zap"
)

// Attachment describes a stored file.
type Attachment struct {
	URL          string
	FileName     string
	ContentType  string
	ThumbnailURL *string
}

type Store interface {
	Save(ctx context.Context, file *multipart.FileHeader) (*Attachment, error)
}

// allowedExtensions maps each accepted extension to its canonical MIME type.
var allowedExtensions = map[string]string{
	".jpeg": "image/jpeg",
	".jpg":  "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

var documentTypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
}

// New picks the backend named by conf.StorageDriver.
func New(conf *config.Config, log *zap.SugaredLogger) (Store, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	switch conf.StorageDriver {
	case "", "disk":
		return NewDiskStore(conf.UploadDir, conf.PublicBaseURL, conf.MaxAttachmentSize, log), nil
	case "s3":
		return NewS3Store(context.Background(), conf, log)
	}
	return nil, fmt.Errorf("unknown storage driver %q", conf.StorageDriver)
}

// Validate enforces the size limit and the image/document allow-list and
// returns the attachment's content type.
func Validate(file *multipart.FileHeader, maxSize int64) (string, error) {
	if file == nil {
		return "", errs.ErrUnsupportedAttachment
	}
	if maxSize > 0 && file.Size > maxSize {
		return "", errs.ErrAttachmentTooLarge
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if _, ok := allowedExtensions[ext]; !ok {
		return "", errs.ErrUnsupportedAttachment
	}

	contentType := ContentType(file)
	if !strings.HasPrefix(contentType, "image/") && !documentTypes[contentType] {
		return "", errs.ErrUnsupportedAttachment
	}
	return contentType, nil
}

// ContentType prefers the declared part header and falls back to the
// extension.
func ContentType(file *multipart.FileHeader) string {
	contentType := file.Header.Get("Content-Type")
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil && mediaType != "application/octet-stream" {
		return mediaType
	}
	if byExt, ok := allowedExtensions[strings.ToLower(filepath.Ext(file.Filename))]; ok {
		return byExt
	}
	return "application/octet-stream"
}

func generateUniqueFilename(extension string) string {
	return fmt.Sprintf("message-%d-%s%s", time.Now().UnixMilli(), uuid.New().String(), strings.ToLower(extension))
}
