// Package profile manages the signed-in user's public profile and avatar.
package profile

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/lanternfox/storefront/internal/backend"
	"github.com/lanternfox/storefront/internal/domain"
	"github.com/lanternfox/storefront/internal/storage"
)

// AvatarUpload is a new avatar image.
type AvatarUpload struct {
	Filename    string
	ContentType string
	Content     io.Reader
}

// UpdateInput carries the editable profile fields. A nil Avatar keeps the
// current one.
type UpdateInput struct {
	UserID   string `validate:"required"`
	FullName string `validate:"required,min=2,max=100"`
	Avatar   *AvatarUpload
}

// Service exposes profile reads and updates.
type Service interface {
	// Get returns a user's profile.
	Get(ctx context.Context, userID string) (*domain.Profile, error)

	// Update saves the editable fields, replacing the avatar when one is
	// attached.
	Update(ctx context.Context, input UpdateInput) (*domain.Profile, error)
}

type service struct {
	client   backend.Client
	media    storage.Storage
	validate *validator.Validate
	logger   *slog.Logger
	now      func() time.Time
}

// NewService creates a profile service.
func NewService(client backend.Client, media storage.Storage, logger *slog.Logger) Service {
	return &service{
		client:   client,
		media:    media,
		validate: validator.New(),
		logger:   logger.With("component", "profile"),
		now:      time.Now,
	}
}

// profileRow mirrors the profiles collection schema.
type profileRow struct {
	ID        string `json:"id"`
	FullName  string `json:"full_name"`
	AvatarURL string `json:"avatar_url"`
}

func (r profileRow) toDomain() domain.Profile {
	return domain.Profile{
		ID:        r.ID,
		FullName:  r.FullName,
		AvatarURL: r.AvatarURL,
	}
}

func (s *service) Get(ctx context.Context, userID string) (*domain.Profile, error) {
	const op = "profile.get"

	var rows []profileRow
	q := backend.Query{Filters: map[string]string{"id": userID}}
	if err := s.client.Select(ctx, backend.CollectionProfiles, q, &rows); err != nil {
		return nil, domain.WrapError(err, domain.ErrorCode(err), op, "failed to load profile")
	}
	if len(rows) == 0 {
		return nil, domain.NotFound(op, "profile", userID)
	}

	p := rows[0].toDomain()
	return &p, nil
}

func (s *service) Update(ctx context.Context, input UpdateInput) (*domain.Profile, error) {
	const op = "profile.update"

	if err := s.validate.Struct(input); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			return nil, domain.NewValidationError(op, verrs[0].Field(), "invalid value")
		}
		return nil, domain.Invalid(op, "invalid profile")
	}

	payload := map[string]string{"full_name": input.FullName}

	if input.Avatar != nil {
		// The avatar key is stable per user, so the upload overwrites the
		// old image. A version parameter keeps stale copies out of caches.
		key := storage.AvatarKey(input.UserID, input.Avatar.Filename)
		url, err := s.media.Put(ctx, key, input.Avatar.Content, input.Avatar.ContentType)
		if err != nil {
			return nil, domain.Remote(err, op, "failed to upload avatar")
		}
		payload["avatar_url"] = fmt.Sprintf("%s?v=%d", url, s.now().Unix())
	}

	filters := map[string]string{"id": input.UserID}
	if err := s.client.Update(ctx, backend.CollectionProfiles, filters, payload); err != nil {
		return nil, domain.WrapError(err, domain.ErrorCode(err), op, "failed to save profile")
	}

	s.logger.Info("profile updated", "user_id", input.UserID, "avatar_changed", input.Avatar != nil)

	return s.Get(ctx, input.UserID)
}
