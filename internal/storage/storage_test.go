package storage

import (
	"context"
	"encoding/base64"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pixelPNG = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

func TestParseDataURI(t *testing.T) {
	t.Run("valid png", func(t *testing.T) {
		img, err := ParseDataURI("data:image/png;base64," + pixelPNG)
		require.NoError(t, err)
		assert.Equal(t, "png", img.Ext)
		assert.Equal(t, "image/png", img.ContentType)
		assert.NotEmpty(t, img.Data)
	})

	t.Run("jpeg extension is normalized", func(t *testing.T) {
		// content sniffing decides the type, the declared subtype only picks the extension
		img, err := ParseDataURI("data:image/jpeg;base64," + pixelPNG)
		require.NoError(t, err)
		assert.Equal(t, "jpg", img.Ext)
	})

	t.Run("missing prefix", func(t *testing.T) {
		_, err := ParseDataURI(pixelPNG)
		assert.ErrorIs(t, err, ErrInvalidImage)
	})

	t.Run("not base64", func(t *testing.T) {
		_, err := ParseDataURI("data:image/png;base64,***")
		assert.ErrorIs(t, err, ErrInvalidImage)
	})

	t.Run("unsupported subtype", func(t *testing.T) {
		_, err := ParseDataURI("data:image/svg+xml;base64," + pixelPNG)
		assert.ErrorIs(t, err, ErrUnsupportedImage)
	})

	t.Run("payload is not an image", func(t *testing.T) {
		payload := base64.StdEncoding.EncodeToString([]byte("hello, world"))
		_, err := ParseDataURI("data:image/png;base64," + payload)
		assert.ErrorIs(t, err, ErrInvalidImage)
	})
}

func TestRecipeImageKey(t *testing.T) {
	key := RecipeImageKey(time.Date(2024, 3, 7, 10, 0, 0, 0, time.UTC), "png")
	assert.True(t, strings.HasPrefix(key, "recipes/2024/03/07/"))
	assert.True(t, strings.HasSuffix(key, ".png"))
}

func TestLocalStorage_SaveAndDelete(t *testing.T) {
	root := t.TempDir()
	st, err := NewLocalStorage(root, "/media")
	require.NoError(t, err)

	ctx := context.Background()
	ref, err := st.Save(ctx, "recipes/2024/03/07/a.png", strings.NewReader("data"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "/media/recipes/2024/03/07/a.png", ref)

	f, err := os.Open(filepath.Join(root, "recipes", "2024", "03", "07", "a.png"))
	require.NoError(t, err)
	content, _ := io.ReadAll(f)
	f.Close()
	assert.Equal(t, "data", string(content))

	require.NoError(t, st.Delete(ctx, ref))
	_, err = os.Stat(filepath.Join(root, "recipes", "2024", "03", "07", "a.png"))
	assert.True(t, os.IsNotExist(err))

	// foreign and traversal references are ignored
	assert.NoError(t, st.Delete(ctx, "https://elsewhere/x.png"))
	assert.NoError(t, st.Delete(ctx, "/media/../etc/passwd"))
}
