package storage

import "context"

type Storage interface {
	Upload(context.Context, *UploadObject) (*UploadResponse, error)

	// Delete removes a stored object. Callers on cleanup paths treat a failure
	// here as non-fatal.
	Delete(ctx context.Context, bucket, fileName string) error
}

type UploadObject struct {
	Bucket   string
	Prefix   string
	FileName string
	Mime     string
	Data     []byte
}

type UploadResponse struct {
	Url      string
	FileName string
}
