package storage

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	fig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/pkg/errors"
	"github.com/techagentng/photohire/config"
	"go.uber.org/zap"
)

type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store uploads attachments to a public-read bucket.
type S3Store struct {
	client  putObjectAPI
	Bucket  string
	Region  string
	MaxSize int64
	Log     *zap.SugaredLogger
}

func NewS3Store(ctx context.Context, conf *config.Config, log *zap.SugaredLogger) (*S3Store, error) {
	if conf.AWSBucket == "" {
		return nil, errors.New("S3 bucket name is not configured")
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	opts := []func(*fig.LoadOptions) error{fig.WithRegion(conf.AWSRegion)}
	if conf.AWSAccessKeyID != "" {
		opts = append(opts, fig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(conf.AWSAccessKeyID, conf.AWSSecretAccessKey, ""),
		))
	}
	cfg, err := fig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "unable to load AWS config")
	}

	return &S3Store{
		client:  s3.NewFromConfig(cfg),
		Bucket:  conf.AWSBucket,
		Region:  conf.AWSRegion,
		MaxSize: conf.MaxAttachmentSize,
		Log:     log,
	}, nil
}

func (s *S3Store) Save(ctx context.Context, file *multipart.FileHeader) (*Attachment, error) {
	contentType, err := Validate(file, s.MaxSize)
	if err != nil {
		return nil, err
	}

	src, err := file.Open()
	if err != nil {
		return nil, errors.Wrap(err, "open upload")
	}
	defer src.Close()

	key := messagesFolder + "/" + generateUniqueFilename(filepath.Ext(file.Filename))
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(key),
		Body:        src,
		ACL:         types.ObjectCannedACLPublicRead,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to upload file to S3")
	}

	attachment := &Attachment{
		URL:         s.url(key),
		FileName:    file.Filename,
		ContentType: contentType,
	}
	if strings.HasPrefix(contentType, "image/") {
		thumbURL, err := s.saveThumbnail(ctx, file, key)
		if err != nil {
			s.Log.Warnw("thumbnail skipped", "key", key, "error", err)
		} else {
			attachment.ThumbnailURL = &thumbURL
		}
	}
	return attachment, nil
}

func (s *S3Store) saveThumbnail(ctx context.Context, file *multipart.FileHeader, key string) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	data, err := thumbnail(src)
	if err != nil {
		return "", err
	}
	thumbKey := messagesFolder + "/" + thumbnailName(strings.TrimPrefix(key, messagesFolder+"/"))
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(thumbKey),
		Body:        bytes.NewReader(data),
		ACL:         types.ObjectCannedACLPublicRead,
		ContentType: aws.String("image/jpeg"),
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to upload thumbnail to S3")
	}
	return s.url(thumbKey), nil
}

func (s *S3Store) url(key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.Bucket, s.Region, key)
}
