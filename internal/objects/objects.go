// Package objects wraps the S3 operations behind the upload gateway:
// presigned PUT and GET URLs, delete, list and streaming reads. Every key it
// accepts must live under the calling owner's prefix.
package objects

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/dmitrijs2005/photovault/internal/common"
	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const DefaultPresignExpiry = 15 * time.Minute

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}

	deleteObject = func(c *s3.Client, ctx context.Context, in *s3.DeleteObjectInput) error {
		_, err := c.DeleteObject(ctx, in)
		return err
	}
	listObjectsPage = func(c *s3.Client, ctx context.Context, in *s3.ListObjectsV2Input) (*s3.ListObjectsV2Output, error) {
		return c.ListObjectsV2(ctx, in)
	}
	getObject = func(c *s3.Client, ctx context.Context, in *s3.GetObjectInput) (*s3.GetObjectOutput, error) {
		return c.GetObject(ctx, in)
	}

	now = time.Now
)

// Config holds the S3-compatible backend settings.
type Config struct {
	RootUser      string
	RootPassword  string
	Bucket        string
	Region        string
	BaseEndpoint  string
	PresignExpiry time.Duration
}

// Target is a presigned URL together with the object it addresses.
type Target struct {
	URL    string
	Key    string
	Bucket string
}

// Object is one listed object.
type Object struct {
	Key          string
	Size         int64
	LastModified time.Time
}

type Service struct {
	cfg Config
}

func NewService(cfg Config) *Service {
	if cfg.PresignExpiry <= 0 {
		cfg.PresignExpiry = DefaultPresignExpiry
	}
	return &Service{cfg: cfg}
}

func (s *Service) Bucket() string {
	return s.cfg.Bucket
}

func (s *Service) getClient(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.cfg.RootUser,
			s.cfg.RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.cfg.BaseEndpoint)
		// MinIO and other self-hosted backends only serve path-style URLs
		o.UsePathStyle = true
	}), nil
}

// OwnerPrefix is the key prefix every object of owner starts with.
func OwnerPrefix(owner string) string {
	return "users/" + sanitize(owner) + "/"
}

// FolderPrefix is the key prefix for owner's objects uploaded into folder.
func FolderPrefix(owner, folder string) string {
	return OwnerPrefix(owner) + folderSegment(folder) + "/"
}

// NewObjectKey builds users/<owner>/<folder>/<yyyy>/<mm>/<dd>/<uuid><ext>.
func NewObjectKey(owner, folder, fileName string, t time.Time) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	if ext != "" {
		ext = "." + sanitize(ext[1:])
	}
	return fmt.Sprintf("%s%04d/%02d/%02d/%s%s", FolderPrefix(owner, folder), t.Year(), int(t.Month()), t.Day(), uuid.New(), ext)
}

// CheckOwner rejects keys that do not belong to owner.
func CheckOwner(owner, key string) error {
	if key == "" {
		return fmt.Errorf("%w: empty object key", common.ErrValidation)
	}
	if owner == "" || !strings.HasPrefix(key, OwnerPrefix(owner)) || strings.Contains(key, "..") {
		return common.ErrForbidden
	}
	return nil
}

func folderSegment(folder string) string {
	if f := sanitize(folder); f != "" {
		return f
	}
	return "root"
}

// sanitize keeps letters, digits, '-', '_' and '.', and turns every other rune
// into '-'. Leading and trailing separators are dropped.
func sanitize(s string) string {
	s = strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '_', r == '.':
			return r
		default:
			return '-'
		}
	}, strings.TrimSpace(s))
	s = strings.Trim(s, "-.")
	return s
}

// PresignUpload reserves a fresh key under owner/folder and signs a PUT for it.
func (s *Service) PresignUpload(ctx context.Context, owner, folder, fileName, contentType string) (*Target, error) {
	if owner == "" {
		return nil, common.ErrUnauthorized
	}
	client, err := s.getClient(ctx)
	if err != nil {
		return nil, err
	}

	bucket := s.cfg.Bucket
	key := NewObjectKey(owner, folder, fileName, now())

	in := &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}

	req, err := presignPutObject(newS3PresignClient(client), ctx, in, s3.WithPresignExpires(s.cfg.PresignExpiry))
	if err != nil {
		return nil, err
	}

	return &Target{URL: req.URL, Key: key, Bucket: bucket}, nil
}

// PresignDownload signs a GET for key.
func (s *Service) PresignDownload(ctx context.Context, owner, key string) (*Target, error) {
	if err := CheckOwner(owner, key); err != nil {
		return nil, err
	}
	client, err := s.getClient(ctx)
	if err != nil {
		return nil, err
	}

	bucket := s.cfg.Bucket
	req, err := presignGetObject(newS3PresignClient(client), ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(s.cfg.PresignExpiry))
	if err != nil {
		return nil, err
	}

	return &Target{URL: req.URL, Key: key, Bucket: bucket}, nil
}

func (s *Service) Delete(ctx context.Context, owner, key string) error {
	if err := CheckOwner(owner, key); err != nil {
		return err
	}
	client, err := s.getClient(ctx)
	if err != nil {
		return err
	}

	bucket := s.cfg.Bucket
	return deleteObject(client, ctx, &s3.DeleteObjectInput{Bucket: &bucket, Key: &key})
}

// List returns owner's objects uploaded into folder, following continuation
// tokens until the listing is complete.
func (s *Service) List(ctx context.Context, owner, folder string) ([]Object, error) {
	if owner == "" {
		return nil, common.ErrUnauthorized
	}
	client, err := s.getClient(ctx)
	if err != nil {
		return nil, err
	}

	bucket := s.cfg.Bucket
	prefix := FolderPrefix(owner, folder)
	in := &s3.ListObjectsV2Input{Bucket: &bucket, Prefix: &prefix}

	out := []Object{}
	for {
		page, err := listObjectsPage(client, ctx, in)
		if err != nil {
			return nil, err
		}
		for _, o := range page.Contents {
			obj := Object{Key: aws.ToString(o.Key), Size: aws.ToInt64(o.Size)}
			if o.LastModified != nil {
				obj.LastModified = *o.LastModified
			}
			out = append(out, obj)
		}
		if !aws.ToBool(page.IsTruncated) || page.NextContinuationToken == nil {
			return out, nil
		}
		in.ContinuationToken = page.NextContinuationToken
	}
}

// Open streams key. The caller closes the returned reader.
func (s *Service) Open(ctx context.Context, owner, key string) (io.ReadCloser, string, error) {
	if err := CheckOwner(owner, key); err != nil {
		return nil, "", err
	}
	client, err := s.getClient(ctx)
	if err != nil {
		return nil, "", err
	}

	bucket := s.cfg.Bucket
	out, err := getObject(client, ctx, &s3.GetObjectInput{Bucket: &bucket, Key: &key})
	if err != nil {
		return nil, "", err
	}
	return out.Body, aws.ToString(out.ContentType), nil
}
