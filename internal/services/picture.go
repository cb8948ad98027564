package services

import (
	"context"
	"encoding/base64"
	"strings"

	"sparkmatch-backend/internal/apperrors"
	"sparkmatch-backend/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// PictureService maintains a user's ordered picture collection. Order values
// across a collection of size N are kept as the exact permutation 0..N-1:
// append assigns N, reorder transposes two entries, delete compacts the rest.
type PictureService struct {
	users    UserStore
	blobs    BlobStore
	maxBytes int
}

// NewPictureService creates a new picture service
func NewPictureService(users UserStore, blobs BlobStore, maxBytes int) *PictureService {
	return &PictureService{users: users, blobs: blobs, maxBytes: maxBytes}
}

// Append decodes the payload, stores the blob and appends a picture at the
// tail of the collection with order = current length.
func (s *PictureService) Append(ctx context.Context, userID, payload string) (*models.Picture, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	data, contentType, err := decodePayload(payload)
	if err != nil {
		return nil, err
	}
	if len(data) > s.maxBytes {
		return nil, apperrors.New(apperrors.Validation, "picture is too large")
	}

	pictureID := uuid.New().String()
	url, err := s.blobs.Put(ctx, userID+"/"+pictureID, contentType, data)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Persistence, "failed to store picture payload", err)
	}

	picture := models.Picture{
		ID:    pictureID,
		URL:   url,
		Order: len(user.Pictures),
	}
	user.Pictures = append(user.Pictures, picture)

	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}
	return &picture, nil
}

// Reorder moves a picture to newOrder by swapping order values with the
// picture currently holding newOrder. This is a pairwise transposition;
// every other picture keeps its order.
func (s *PictureService) Reorder(ctx context.Context, userID, pictureID string, newOrder int) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if newOrder < 0 || newOrder >= len(user.Pictures) {
		return apperrors.New(apperrors.Validation, "order is out of range")
	}

	moving := -1
	occupant := -1
	for i := range user.Pictures {
		if user.Pictures[i].ID == pictureID {
			moving = i
		}
		if user.Pictures[i].Order == newOrder {
			occupant = i
		}
	}
	if moving == -1 {
		return apperrors.New(apperrors.NotFound, "picture not found")
	}

	if occupant != -1 && occupant != moving {
		user.Pictures[occupant].Order = user.Pictures[moving].Order
	}
	user.Pictures[moving].Order = newOrder

	return s.users.Save(ctx, user)
}

// Delete removes a picture and decrements the order of every picture that
// followed it, restoring 0..N-1 contiguity with a single save.
func (s *PictureService) Delete(ctx context.Context, userID, pictureID string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	removed := -1
	for i := range user.Pictures {
		if user.Pictures[i].ID == pictureID {
			removed = i
			break
		}
	}
	if removed == -1 {
		return apperrors.New(apperrors.NotFound, "picture not found")
	}

	removedOrder := user.Pictures[removed].Order
	user.Pictures = append(user.Pictures[:removed], user.Pictures[removed+1:]...)
	for i := range user.Pictures {
		if user.Pictures[i].Order > removedOrder {
			user.Pictures[i].Order--
		}
	}

	if err := s.users.Save(ctx, user); err != nil {
		return err
	}

	if err := s.blobs.Delete(ctx, userID+"/"+pictureID); err != nil {
		log.Warn().Err(err).Str("picture_id", pictureID).Msg("Failed to delete picture blob")
	}
	return nil
}

// decodePayload decodes a base64 data URI and returns the raw bytes and
// content type. The payload must carry a data:image prefix.
func decodePayload(payload string) ([]byte, string, error) {
	if !strings.HasPrefix(payload, "data:image") {
		return nil, "", apperrors.New(apperrors.Validation, "malformed base64")
	}
	comma := strings.Index(payload, ",")
	if comma == -1 {
		return nil, "", apperrors.New(apperrors.Validation, "malformed base64")
	}

	contentType := strings.TrimSuffix(strings.TrimPrefix(payload[:comma], "data:"), ";base64")
	data, err := base64.StdEncoding.DecodeString(payload[comma+1:])
	if err != nil {
		return nil, "", apperrors.Wrap(apperrors.Validation, "malformed base64", err)
	}
	return data, contentType, nil
}
