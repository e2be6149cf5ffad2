package drive

import (
	"context"
	"fmt"

	"certivault/internal/config"
	"certivault/internal/cvault"
)

// NewDriveFromConfig creates a DriveClient implementation based on the
// drive config type.
func NewDriveFromConfig(ctx context.Context, cfg config.DriveConfig, tokens cvault.TokenProvider) (cvault.DriveClient, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryDrive(), nil
	case "drive", "":
		return NewRESTDrive(cfg.BaseURL, cfg.UploadURL, tokens), nil
	case "s3":
		return NewS3Drive(ctx, cfg.S3Bucket, cfg.S3Prefix, cfg.S3Region)
	default:
		return nil, fmt.Errorf("unknown drive type: %s", cfg.Type)
	}
}
