package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/h2non/filetype"
	gonanoid "github.com/matoous/go-nanoid/v2"
	cfg "github.com/mosesmwila/zareat-api/configs"
	"github.com/mosesmwila/zareat-api/internal/repository"
)

type InvoiceService interface {
	AttachInvoice(ctx context.Context, subscriptionID int64, file []byte) (string, error)
}

type invoiceService struct {
	cfg cfg.Config
	s   repository.SubscriptionRepository
}

func NewInvoiceService(cfg cfg.Config, s repository.SubscriptionRepository) InvoiceService {
	return &invoiceService{cfg: cfg, s: s}
}

func (i *invoiceService) r2Client() (*s3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(i.cfg.R2.AccessKey, i.cfg.R2.SecretKey, "")),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", i.cfg.R2.AccountID))
	}), nil
}

// AttachInvoice stores the uploaded invoice artifact in R2 and stamps its
// public URL on the subscription row. Accepted types: pdf, png, jpeg.
func (i *invoiceService) AttachInvoice(ctx context.Context, subscriptionID int64, file []byte) (string, error) {
	_, isExist, err := i.s.GetByID(ctx, subscriptionID)
	if err != nil {
		return "", err
	}
	if !isExist {
		return "", ErrSubscriptionNotFound
	}

	kind, err := filetype.Match(file)
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}
	switch kind.Extension {
	case "pdf", "png", "jpg":
	default:
		return "", ErrUnsupportedFileType
	}

	id, err := gonanoid.New()
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("invoices/%s.%s", id, kind.Extension)

	client, err := i.r2Client()
	if err != nil {
		return "", err
	}

	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(i.cfg.R2.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(file),
		ContentType: aws.String(kind.MIME.Value),
	})
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}

	invoiceURL := fmt.Sprintf("%s/%s", i.cfg.R2.PublicURL, key)
	if err := i.s.SetInvoiceURL(ctx, subscriptionID, invoiceURL); err != nil {
		return "", err
	}
	return invoiceURL, nil
}
