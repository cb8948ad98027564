package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"sparkmatch-backend/internal/apperrors"
	"sparkmatch-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepository handles database operations for users.
// Each user is stored as a single JSONB document; Save rewrites the whole
// document with no version check, so concurrent mutations of the same user
// are last-write-wins.
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user document
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	doc, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}
	query := `INSERT INTO users (id, doc) VALUES ($1, $2)`
	if _, err := r.db.Exec(ctx, query, user.ID, doc); err != nil {
		return apperrors.Wrap(apperrors.Persistence, "failed to create user", err)
	}
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT doc FROM users WHERE id = $1`
	var doc []byte
	if err := r.db.QueryRow(ctx, query, id).Scan(&doc); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.Wrap(apperrors.NotFound, "user not found", err)
		}
		return nil, apperrors.Wrap(apperrors.Persistence, "failed to get user", err)
	}
	return decodeUser(doc)
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT doc FROM users WHERE doc->>'email' = $1`
	var doc []byte
	if err := r.db.QueryRow(ctx, query, email).Scan(&doc); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.Wrap(apperrors.NotFound, "user not found", err)
		}
		return nil, apperrors.Wrap(apperrors.Persistence, "failed to get user by email", err)
	}
	return decodeUser(doc)
}

// GetAll retrieves every user document
func (r *UserRepository) GetAll(ctx context.Context) ([]*models.User, error) {
	query := `SELECT doc FROM users ORDER BY doc->>'created_at'`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Persistence, "failed to list users", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, apperrors.Wrap(apperrors.Persistence, "failed to scan user", err)
		}
		user, err := decodeUser(doc)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.Persistence, "error iterating users", err)
	}
	return users, nil
}

// Save rewrites the whole user document
func (r *UserRepository) Save(ctx context.Context, user *models.User) error {
	doc, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}
	query := `UPDATE users SET doc = $2 WHERE id = $1`
	result, err := r.db.Exec(ctx, query, user.ID, doc)
	if err != nil {
		return apperrors.Wrap(apperrors.Persistence, "failed to save user", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.New(apperrors.NotFound, "user not found")
	}
	return nil
}

// Delete removes a user document
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM users WHERE id = $1`
	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return apperrors.Wrap(apperrors.Persistence, "failed to delete user", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.New(apperrors.NotFound, "user not found")
	}
	return nil
}

func decodeUser(doc []byte) (*models.User, error) {
	var user models.User
	if err := json.Unmarshal(doc, &user); err != nil {
		return nil, fmt.Errorf("failed to decode user document: %w", err)
	}
	return &user, nil
}
