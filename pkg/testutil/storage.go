package testutil

import (
	"context"
	"errors"

	"github.com/ecopanier/backend/pkg/errorx"
	"github.com/ecopanier/backend/pkg/storage"
)

type MockStorage struct {
	UploadFunc func(context.Context, *storage.UploadObject) (*storage.UploadResponse, error)

	// DeletedObjects records every Delete call; FailDelete makes them all fail.
	DeletedObjects []string
	FailDelete     bool
}

func (m *MockStorage) Upload(
	ctx context.Context, obj *storage.UploadObject,
) (*storage.UploadResponse, error) {
	if m.UploadFunc != nil {
		return m.UploadFunc(ctx, obj)
	}

	return nil, errorx.New(errorx.NotImplemented, "Not implemented")
}

func (m *MockStorage) Delete(ctx context.Context, bucket, fileName string) error {
	if m.FailDelete {
		return errors.New("storage unavailable")
	}

	m.DeletedObjects = append(m.DeletedObjects, fileName)
	return nil
}
