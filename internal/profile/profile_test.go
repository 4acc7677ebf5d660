package profile_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lanternfox/storefront/internal/backend"
	"github.com/lanternfox/storefront/internal/domain"
	"github.com/lanternfox/storefront/internal/profile"
	"github.com/lanternfox/storefront/internal/storage"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newService(t *testing.T, mock *backend.Mock) profile.Service {
	t.Helper()
	media, err := storage.NewLocalStorage(t.TempDir(), "/uploads")
	require.NoError(t, err)
	return profile.NewService(mock, media, discard())
}

func selectProfile(row string) func(ctx context.Context, collection string, q backend.Query, dest interface{}) error {
	return func(ctx context.Context, collection string, q backend.Query, dest interface{}) error {
		return json.Unmarshal([]byte(row), dest)
	}
}

func TestGet(t *testing.T) {
	mock := &backend.Mock{
		SelectFunc: func(ctx context.Context, collection string, q backend.Query, dest interface{}) error {
			assert.Equal(t, backend.CollectionProfiles, collection)
			assert.Equal(t, "u1", q.Filters["id"])
			return json.Unmarshal([]byte(`[{"id":"u1","full_name":"Sam Rider","avatar_url":"/uploads/avatars/u1.jpg"}]`), dest)
		},
	}
	svc := newService(t, mock)

	p, err := svc.Get(context.Background(), "u1")

	require.NoError(t, err)
	assert.Equal(t, "Sam Rider", p.FullName)
}

func TestGet_NotFound(t *testing.T) {
	mock := &backend.Mock{SelectFunc: selectProfile(`[]`)}
	svc := newService(t, mock)

	_, err := svc.Get(context.Background(), "ghost")

	assert.Equal(t, domain.ENOTFOUND, domain.ErrorCode(err))
}

func TestUpdate_NameOnly(t *testing.T) {
	mock := &backend.Mock{SelectFunc: selectProfile(`[{"id":"u1","full_name":"Sam R","avatar_url":"/old.jpg"}]`)}
	svc := newService(t, mock)

	p, err := svc.Update(context.Background(), profile.UpdateInput{UserID: "u1", FullName: "Sam R"})

	require.NoError(t, err)
	assert.Equal(t, "Sam R", p.FullName)

	updates := mock.CallsTo(backend.CollectionProfiles)
	require.NotEmpty(t, updates)
	assert.Equal(t, "update", updates[0].Method)
	assert.Equal(t, map[string]string{"id": "u1"}, updates[0].Filters)
	payload, ok := updates[0].Payload.(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "Sam R", payload["full_name"])
	_, hasAvatar := payload["avatar_url"]
	assert.False(t, hasAvatar, "no avatar change when none was uploaded")
}

func TestUpdate_AvatarGetsCacheBustedURL(t *testing.T) {
	mock := &backend.Mock{SelectFunc: selectProfile(`[{"id":"u1","full_name":"Sam R"}]`)}
	svc := newService(t, mock)

	_, err := svc.Update(context.Background(), profile.UpdateInput{
		UserID:   "u1",
		FullName: "Sam R",
		Avatar: &profile.AvatarUpload{
			Filename:    "me.png",
			ContentType: "image/png",
			Content:     strings.NewReader("png-bytes"),
		},
	})

	require.NoError(t, err)

	updates := mock.CallsTo(backend.CollectionProfiles)
	require.NotEmpty(t, updates)
	payload := updates[0].Payload.(map[string]string)
	avatarURL := payload["avatar_url"]
	assert.True(t, strings.HasPrefix(avatarURL, "/uploads/avatars/u1.png?v="), fmt.Sprintf("got %q", avatarURL))
}

func TestUpdate_ValidatesName(t *testing.T) {
	mock := &backend.Mock{}
	svc := newService(t, mock)

	_, err := svc.Update(context.Background(), profile.UpdateInput{UserID: "u1", FullName: "S"})

	require.True(t, domain.IsValidationError(err))
	assert.Empty(t, mock.Calls)
}
