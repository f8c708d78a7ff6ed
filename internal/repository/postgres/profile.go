package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mypts/profile-api/internal/model"
	"github.com/mypts/profile-api/internal/repository"
)

type profileRepository struct {
	*BaseRepository
}

func NewProfileRepository(base *BaseRepository) repository.ProfileRepository {
	return &profileRepository{BaseRepository: base}
}

func (r *profileRepository) Get(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	var profile model.Profile
	query := `
		SELECT id, owner, name, image, created_at, updated_at
		FROM profiles WHERE id = $1
	`
	if err := r.db.GetContext(ctx, &profile, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &profile, nil
}
