package storage

import (
	"context"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const messagesFolder = "messages"

// DiskStore writes attachments under Dir/messages and serves them from
// BaseURL/uploads/messages.
type DiskStore struct {
	Dir     string
	BaseURL string
	MaxSize int64
	Log     *zap.SugaredLogger
}

func NewDiskStore(dir, baseURL string, maxSize int64, log *zap.SugaredLogger) *DiskStore {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &DiskStore{
		Dir:     dir,
		BaseURL: strings.TrimRight(baseURL, "/"),
		MaxSize: maxSize,
		Log:     log,
	}
}

func (d *DiskStore) Save(ctx context.Context, file *multipart.FileHeader) (*Attachment, error) {
	contentType, err := Validate(file, d.MaxSize)
	if err != nil {
		return nil, err
	}

	folder := filepath.Join(d.Dir, messagesFolder)
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return nil, errors.Wrap(err, "create upload folder")
	}

	name := generateUniqueFilename(filepath.Ext(file.Filename))
	if err := writeUpload(file, filepath.Join(folder, name)); err != nil {
		return nil, err
	}

	attachment := &Attachment{
		URL:         d.url(name),
		FileName:    file.Filename,
		ContentType: contentType,
	}

	if strings.HasPrefix(contentType, "image/") {
		thumbURL, err := d.saveThumbnail(file, folder, name)
		if err != nil {
			d.Log.Warnw("thumbnail skipped", "file", name, "error", err)
		} else {
			attachment.ThumbnailURL = &thumbURL
		}
	}
	return attachment, nil
}

func (d *DiskStore) saveThumbnail(file *multipart.FileHeader, folder, name string) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	data, err := thumbnail(src)
	if err != nil {
		return "", err
	}
	thumbName := thumbnailName(name)
	if err := os.WriteFile(filepath.Join(folder, thumbName), data, 0o644); err != nil {
		return "", errors.Wrap(err, "write thumbnail")
	}
	return d.url(thumbName), nil
}

func (d *DiskStore) url(name string) string {
	return d.BaseURL + "/uploads/" + messagesFolder + "/" + name
}

// writeUpload copies file to dst. A failed copy leaves no file behind.
func writeUpload(file *multipart.FileHeader, dst string) (err error) {
	src, err := file.Open()
	if err != nil {
		return errors.Wrap(err, "open upload")
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return errors.Wrap(err, "create upload")
	}
	defer func() {
		if err != nil {
			_ = os.Remove(dst)
		}
	}()

	if _, err = io.Copy(out, src); err != nil {
		_ = out.Close()
		return errors.Wrap(err, "write upload")
	}
	if err = out.Close(); err != nil {
		return errors.Wrap(err, "close upload")
	}
	return nil
}
