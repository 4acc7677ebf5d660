package storage_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lanternfox/storefront/internal/storage"
)

func TestLocalStorage_PutGetDelete(t *testing.T) {
	store, err := storage.NewLocalStorage(t.TempDir(), "/uploads")
	require.NoError(t, err)
	ctx := context.Background()

	url, err := store.Put(ctx, "ad-images/test.jpg", strings.NewReader("jpeg-bytes"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/ad-images/test.jpg", url)

	ok, err := store.Exists(ctx, "ad-images/test.jpg")
	require.NoError(t, err)
	assert.True(t, ok)

	r, err := store.Get(ctx, "ad-images/test.jpg")
	require.NoError(t, err)
	defer r.Close()
	content, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(content))

	require.NoError(t, store.Delete(ctx, "ad-images/test.jpg"))
	ok, err = store.Exists(ctx, "ad-images/test.jpg")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLocalStorage_GetMissing(t *testing.T) {
	store, err := storage.NewLocalStorage(t.TempDir(), "/uploads")
	require.NoError(t, err)

	_, err = store.Get(context.Background(), "ad-images/nope.jpg")

	var serr *storage.StorageError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "not_found", serr.ErrorCode())
}

func TestLocalStorage_DeleteMissingIsIdempotent(t *testing.T) {
	store, err := storage.NewLocalStorage(t.TempDir(), "/uploads")
	require.NoError(t, err)

	assert.NoError(t, store.Delete(context.Background(), "ad-images/nope.jpg"))
}

func TestAdImageKey_UniqueWithExtension(t *testing.T) {
	k1 := storage.AdImageKey("photo.PNG")
	k2 := storage.AdImageKey("photo.PNG")

	assert.True(t, strings.HasPrefix(k1, "ad-images/"))
	assert.True(t, strings.HasSuffix(k1, ".png"))
	assert.NotEqual(t, k1, k2)
}

func TestAvatarKey_StablePerUser(t *testing.T) {
	k1 := storage.AvatarKey("user-1", "me.jpg")
	k2 := storage.AvatarKey("user-1", "me.jpg")

	assert.Equal(t, "avatars/user-1.jpg", k1)
	assert.Equal(t, k1, k2)
}

func TestAvatarKey_DefaultsExtension(t *testing.T) {
	assert.Equal(t, "avatars/user-1.jpg", storage.AvatarKey("user-1", "noext"))
}
