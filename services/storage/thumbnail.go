package storage

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

const thumbnailSize = 320

// thumbnail renders src into a JPEG that fits within thumbnailSize square.
func thumbnail(src io.Reader) ([]byte, error) {
	img, err := imaging.Decode(src, imaging.AutoOrientation(true))
	if err != nil {
		return nil, errors.Wrap(err, "decode image")
	}
	thumb := imaging.Fit(img, thumbnailSize, thumbnailSize, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(80)); err != nil {
		return nil, errors.Wrap(err, "encode thumbnail")
	}
	return buf.Bytes(), nil
}

func thumbnailName(fileName string) string {
	return "thumb-" + strings.TrimSuffix(fileName, filepath.Ext(fileName)) + ".jpg"
}
