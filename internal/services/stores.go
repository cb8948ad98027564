package services

import (
	"context"

	"sparkmatch-backend/internal/models"
)

// UserStore is the persistence surface the services need for users
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetAll(ctx context.Context) ([]*models.User, error)
	Save(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error
}

// MessageStore is the persistence surface the services need for messages
type MessageStore interface {
	Create(ctx context.Context, message *models.Message) error
	GetByID(ctx context.Context, id string) (*models.Message, error)
	GetAll(ctx context.Context) ([]*models.Message, error)
	ListBySender(ctx context.Context, senderID string) ([]*models.Message, error)
	MarkRead(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// BlobStore stores binary payloads addressed by key
type BlobStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, key string) error
}

// PushNotifier delivers a best-effort notification to a device token
type PushNotifier interface {
	Notify(deviceToken, title, body string) error
}
