package services

import (
	"context"
	"sort"
	"time"

	"sparkmatch-backend/internal/apperrors"
	"sparkmatch-backend/internal/geo"
	"sparkmatch-backend/internal/models"

	"github.com/google/uuid"
)

// GraphService computes mutual matches and proximity ordering over the
// whole user population, and owns the append-only like/nope/reveal sets.
// Match sets are recomputed on every call, never precomputed.
type GraphService struct {
	users UserStore
}

// NewGraphService creates a new graph service
func NewGraphService(users UserStore) *GraphService {
	return &GraphService{users: users}
}

// AddLike appends target to the user's likes
func (s *GraphService) AddLike(ctx context.Context, userID, targetID string) error {
	return s.addRelation(ctx, userID, targetID, func(u *models.User) *[]string { return &u.Likes }, "likes")
}

// AddNope appends target to the user's nopes
func (s *GraphService) AddNope(ctx context.Context, userID, targetID string) error {
	return s.addRelation(ctx, userID, targetID, func(u *models.User) *[]string { return &u.Nopes }, "nopes")
}

// AddReveal appends target to the user's reveals
func (s *GraphService) AddReveal(ctx context.Context, userID, targetID string) error {
	return s.addRelation(ctx, userID, targetID, func(u *models.User) *[]string { return &u.Reveals }, "reveals")
}

// addRelation appends target to one of the user's relation sets, preserving
// insertion order. An existing membership is a Conflict, not a no-op.
// The whole document is rewritten; there is no concurrency check.
func (s *GraphService) addRelation(ctx context.Context, userID, targetID string, set func(*models.User) *[]string, name string) error {
	if targetID == "" {
		return apperrors.New(apperrors.Validation, "target is required")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if _, err := s.users.GetByID(ctx, targetID); err != nil {
		return err
	}

	members := set(user)
	if contains(*members, targetID) {
		return apperrors.New(apperrors.Conflict, "target already in "+name)
	}
	*members = append(*members, targetID)

	return s.users.Save(ctx, user)
}

// Matches returns every user who likes the given user and is liked back.
// The result follows the underlying scan order.
func (s *GraphService) Matches(ctx context.Context, userID string) ([]*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	all, err := s.users.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	matches := []*models.User{}
	for _, other := range all {
		if other.ID == user.ID {
			continue
		}
		if contains(user.Likes, other.ID) && contains(other.Likes, user.ID) {
			matches = append(matches, other)
		}
	}
	return matches, nil
}

// Around returns every other user sorted ascending by great-circle distance
// from the given user. Ties keep the underlying scan order.
func (s *GraphService) Around(ctx context.Context, userID string) ([]*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	all, err := s.users.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	type candidate struct {
		user     *models.User
		distance float64
	}
	candidates := []candidate{}
	for _, other := range all {
		if other.ID == user.ID {
			continue
		}
		d := geo.Distance(user.Location.Lat, user.Location.Lon, other.Location.Lat, other.Location.Lon)
		candidates = append(candidates, candidate{user: other, distance: d})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].distance < candidates[j].distance
	})

	around := make([]*models.User, len(candidates))
	for i, c := range candidates {
		around[i] = c.user
	}
	return around, nil
}

// AddReport files a report against a user
func (s *GraphService) AddReport(ctx context.Context, userID, reporterID, reason string) (*models.Report, error) {
	if reason == "" {
		return nil, apperrors.New(apperrors.Validation, "reason is required")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	report := models.Report{
		ID:        uuid.New().String(),
		Reporter:  reporterID,
		Reason:    reason,
		CreatedAt: time.Now(),
	}
	user.Reports = append(user.Reports, report)

	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}
	return &report, nil
}

func contains(set []string, id string) bool {
	for _, member := range set {
		if member == id {
			return true
		}
	}
	return false
}
