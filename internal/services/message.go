package services

import (
	"context"
	"time"

	"sparkmatch-backend/internal/apperrors"
	"sparkmatch-backend/internal/models"

	"github.com/google/uuid"
)

// MessageService handles message-related business logic
type MessageService struct {
	messages MessageStore
	users    UserStore
}

// NewMessageService creates a new message service
func NewMessageService(messages MessageStore, users UserStore) *MessageService {
	return &MessageService{messages: messages, users: users}
}

// Create persists a new unread message from sender to receiver
func (s *MessageService) Create(ctx context.Context, senderID, receiverID, content string) (*models.Message, error) {
	if receiverID == "" {
		return nil, apperrors.New(apperrors.Validation, "receiver is required")
	}
	if content == "" {
		return nil, apperrors.New(apperrors.Validation, "content is required")
	}
	if _, err := s.users.GetByID(ctx, senderID); err != nil {
		return nil, err
	}

	message := &models.Message{
		ID:        uuid.New().String(),
		Sender:    senderID,
		Receiver:  receiverID,
		Content:   content,
		Read:      false,
		CreatedAt: time.Now(),
	}
	if err := s.messages.Create(ctx, message); err != nil {
		return nil, err
	}
	return message, nil
}

// Get retrieves a message by ID
func (s *MessageService) Get(ctx context.Context, id string) (*models.Message, error) {
	return s.messages.GetByID(ctx, id)
}

// GetAll retrieves every message
func (s *MessageService) GetAll(ctx context.Context) ([]*models.Message, error) {
	return s.messages.GetAll(ctx)
}

// MarkRead flips the read flag on a message
func (s *MessageService) MarkRead(ctx context.Context, id string) error {
	return s.messages.MarkRead(ctx, id)
}

// Delete removes a message
func (s *MessageService) Delete(ctx context.Context, id string) error {
	return s.messages.Delete(ctx, id)
}
