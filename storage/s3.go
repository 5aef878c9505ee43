package storage

import (
	"bytes"
	"context"
	"fmt"

	"recipe-canvas/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3API ist die vom Snapshot-Upload benötigte Teilmenge des S3-Clients.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// NewS3Client erstellt einen S3-Client für Strato HiDrive.
func NewS3Client(cfg *config.Config) (*s3.Client, error) {
	resolver := aws.EndpointResolverWithOptionsFunc(
		func(service, region string, options ...interface{}) (aws.Endpoint, error) {
			return aws.Endpoint{
				URL:               cfg.StratoS3URL,
				SigningRegion:     cfg.StratoS3Region,
				HostnameImmutable: true,
			}, nil
		},
	)
	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithRegion(cfg.StratoS3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.StratoS3Key, cfg.StratoS3Secret, "")),
		awsconfig.WithEndpointResolverWithOptions(resolver),
	)
	if err != nil {
		return nil, err
	}

	return s3.NewFromConfig(awsCfg), nil
}

// UploadSnapshot lädt ein gerendertes SVG ins S3 hoch und gibt den
// öffentlichen Link zurück.
func UploadSnapshot(ctx context.Context, client S3API, cfg *config.Config, key string, svg []byte) (string, error) {
	contentType := "image/svg+xml"
	_, err := client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &cfg.StratoS3Bucket,
		Key:         &key,
		Body:        bytes.NewReader(svg),
		ContentType: &contentType,
	})
	if err != nil {
		return "", err
	}
	link := fmt.Sprintf("%s/%s/%s", cfg.StratoS3URL, cfg.StratoS3Bucket, key)
	return link, nil
}
