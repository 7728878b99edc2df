package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/duedash/duedash/internal/common"
	"github.com/duedash/duedash/internal/server/config"
	"github.com/duedash/duedash/internal/server/repositories/repomanager"
	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Seams for the AWS presigning path so tests can avoid network access.
var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

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
)

// AttachmentService hands out short-lived presigned URLs so clients upload
// and download todo attachments straight against the object store; the
// server only brokers the URL and records the object key.
type AttachmentService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *config.Config
}

// NewAttachmentService constructs an AttachmentService over the S3 settings
// in cfg.
func NewAttachmentService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *AttachmentService {
	return &AttachmentService{db: db, repomanager: m, config: cfg}
}

func randomStorageKey(userID int64) string {
	d := time.Now()
	return fmt.Sprintf("attachments/%d/%d/%d/%d/%v", userID, d.Year(), d.Month(), d.Day(), uuid.New())
}

func (s *AttachmentService) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(s.config.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
	})

	return newS3PresignClient(client), nil
}

// GetUploadURL presigns a PUT for a fresh object key, stores the key on the
// todo, and returns both. The todo must exist and belong to userID.
func (s *AttachmentService) GetUploadURL(ctx context.Context, todoID int64, userID int64) (string, string, error) {
	repo := s.repomanager.Todos(s.db)

	if _, err := repo.GetByID(ctx, todoID, userID); err != nil {
		return "", "", err
	}

	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return "", "", err
	}

	bucket := s.config.S3Bucket
	key := randomStorageKey(userID)

	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(15*time.Minute))
	if err != nil {
		return "", "", err
	}

	if err := repo.SetAttachmentKey(ctx, todoID, userID, key); err != nil {
		return "", "", err
	}

	return key, req.URL, nil
}

// GetDownloadURL presigns a GET for the todo's stored attachment key.
// Returns common.ErrNotFound via the repository when the todo is absent and
// common.ErrNoAttachment when it has no attachment.
func (s *AttachmentService) GetDownloadURL(ctx context.Context, todoID int64, userID int64) (string, error) {
	repo := s.repomanager.Todos(s.db)

	todo, err := repo.GetByID(ctx, todoID, userID)
	if err != nil {
		return "", err
	}
	if todo.AttachmentKey == nil {
		return "", common.ErrNoAttachment
	}

	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return "", err
	}

	bucket := s.config.S3Bucket

	req, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    todo.AttachmentKey,
	}, s3.WithPresignExpires(15*time.Minute))
	if err != nil {
		return "", err
	}

	return req.URL, nil
}
