package drive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"certivault/internal/cvault"
)

// folderMarker is the zero-byte object that makes a folder prefix findable.
const folderMarker = ".folder"

// S3Drive implements the DriveClient interface on an S3 bucket. S3 has no
// real folders, so a folder id is its full key prefix and existence is
// marked by a zero-byte ".folder" object, which keeps FindOrCreateFolder
// idempotent. Uploads stream through the SDK's upload manager.
type S3Drive struct {
	client   *s3.Client
	uploader *manager.Uploader
	bucket   string
	prefix   string
}

var _ cvault.DriveClient = (*S3Drive)(nil)

// NewS3Drive creates an S3-backed drive for the given bucket. prefix scopes
// all keys; it may be empty.
func NewS3Drive(ctx context.Context, bucket, prefix, region string) (*S3Drive, error) {
	if bucket == "" {
		return nil, fmt.Errorf("s3 drive requires s3_bucket to be set")
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg)
	return &S3Drive{
		client:   client,
		uploader: manager.NewUploader(client),
		bucket:   bucket,
		prefix:   strings.Trim(prefix, "/"),
	}, nil
}

// FindOrCreateFolder resolves name under parentID to a key prefix, creating
// the marker object when the folder does not exist yet.
func (d *S3Drive) FindOrCreateFolder(ctx context.Context, name string, parentID string) (string, error) {
	folderID := d.childKey(parentID, name)
	markerKey := folderID + "/" + folderMarker

	_, err := d.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(markerKey),
	})
	if err == nil {
		return folderID, nil
	}
	if !isNotFound(err) {
		return "", classifyS3Error(fmt.Errorf("checking folder %q: %w", name, err))
	}

	_, err = d.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(markerKey),
		Body:   strings.NewReader(""),
	})
	if err != nil {
		return "", classifyS3Error(fmt.Errorf("creating folder %q: %w", name, err))
	}
	return folderID, nil
}

// UploadFile streams content to parentID/name and returns the object key.
func (d *S3Drive) UploadFile(ctx context.Context, parentID string, name string, mimeType string, r io.Reader, size int64) (string, error) {
	key := d.childKey(parentID, name)
	_, err := d.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(d.bucket),
		Key:         aws.String(key),
		Body:        r,
		ContentType: aws.String(mimeType),
	})
	if err != nil {
		return "", classifyS3Error(fmt.Errorf("uploading %q: %w", name, err))
	}
	return key, nil
}

// ValidateSetup verifies the bucket is reachable with the current credentials.
func (d *S3Drive) ValidateSetup(ctx context.Context) error {
	_, err := d.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(d.bucket)})
	if err != nil {
		return classifyS3Error(fmt.Errorf("checking bucket %q: %w", d.bucket, err))
	}
	return nil
}

// childKey appends name to a parent key prefix. S3 keys accept quotes and
// most punctuation as-is; only the path separator would change the
// hierarchy, so it is replaced.
func (d *S3Drive) childKey(parentID, name string) string {
	name = strings.ReplaceAll(name, "/", "-")
	base := parentID
	if base == cvault.RootFolderID {
		base = d.prefix
	}
	if base == "" {
		return name
	}
	return base + "/" + name
}

func isNotFound(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return true
		}
	}
	return false
}

// classifyS3Error maps credential problems onto ErrNotAuthenticated so the
// sync engine aborts the batch instead of retrying every record.
func classifyS3Error(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "AccessDenied", "ExpiredToken", "InvalidAccessKeyId", "SignatureDoesNotMatch", "TokenRefreshRequired":
			return fmt.Errorf("%v: %w", err, cvault.ErrNotAuthenticated)
		}
	}
	return err
}
