package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"notes-server/internal/interfaces"
	"notes-server/internal/models"
)

// Compile-time check to ensure pgUserRepository implements the interface
var _ interfaces.UserRepository = (*pgUserRepository)(nil)

type pgUserRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPgUserRepository creates a PostgreSQL-backed UserRepository.
func NewPgUserRepository(pool *pgxpool.Pool, logger *zap.Logger) interfaces.UserRepository {
	return &pgUserRepository{
		pool:   pool,
		logger: logger.Named("PgUserRepo"),
	}
}

func (r *pgUserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
        INSERT INTO users (id, username, name, email, password_hash)
        VALUES ($1, $2, $3, $4, $5)`

	_, err := r.pool.Exec(ctx, query, user.ID, user.Username, user.Name, user.Email, user.PasswordHash)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			if strings.Contains(pgErr.ConstraintName, "email") {
				return models.ErrEmailAlreadyExists
			}
			return models.ErrUserAlreadyExists
		}
		r.logger.Error("Error inserting user", zap.String("username", user.Username), zap.Error(err))
		return fmt.Errorf("database error inserting user %s: %w", user.Username, err)
	}

	r.logger.Debug("User created", zap.String("userID", user.ID.String()), zap.String("username", user.Username))
	return nil
}

func (r *pgUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `
        SELECT id, username, name, email, password_hash, created_at, updated_at
        FROM users WHERE username = $1`

	var user models.User
	if err := pgxscan.Get(ctx, r.pool, &user, query, username); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug("User not found", zap.String("username", username))
			return nil, fmt.Errorf("%w: %s", models.ErrUserNotFound, username)
		}
		r.logger.Error("Error querying user by username", zap.String("username", username), zap.Error(err))
		return nil, fmt.Errorf("database error querying user %s: %w", username, err)
	}
	return &user, nil
}

// Search lists users whose username or display name matches the term,
// ordered by most recent note activity. An empty term lists everyone up to
// the limit.
func (r *pgUserRepository) Search(ctx context.Context, term string) ([]models.UserSearchResult, error) {
	query := `
        SELECT u.id, u.username, u.name, ui.id AS image_id
        FROM users u
        LEFT JOIN user_images ui ON ui.user_id = u.id
        WHERE u.username ILIKE $1 OR u.name ILIKE $1
        ORDER BY (
            SELECT n.updated_at
            FROM notes n
            WHERE n.owner_id = u.id
            ORDER BY n.updated_at DESC
            LIMIT 1
        ) DESC NULLS LAST
        LIMIT 50`

	like := "%" + term + "%"

	var results []models.UserSearchResult
	if err := pgxscan.Select(ctx, r.pool, &results, query, like); err != nil {
		r.logger.Error("Error searching users", zap.String("term", term), zap.Error(err))
		return nil, fmt.Errorf("database error searching users: %w", err)
	}
	return results, nil
}

func (r *pgUserRepository) GetImage(ctx context.Context, imageID uuid.UUID) (*models.UserImage, error) {
	query := `SELECT id, user_id, content_type, blob FROM user_images WHERE id = $1`

	var image models.UserImage
	if err := pgxscan.Get(ctx, r.pool, &image, query, imageID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: user image %s", models.ErrImageNotFound, imageID)
		}
		r.logger.Error("Error querying user image", zap.String("imageID", imageID.String()), zap.Error(err))
		return nil, fmt.Errorf("database error querying user image %s: %w", imageID, err)
	}
	return &image, nil
}
