package testutil

import "context"

type MockRedisClient struct {
	PublishFunc func(ctx context.Context, channel string, obj any) error
}

func (m *MockRedisClient) Publish(ctx context.Context, channel string, obj any) error {
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, channel, obj)
	}

	return nil
}
