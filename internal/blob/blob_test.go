package blob

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mughouse/mughouse-server/internal/config"
)

// storeUnderTest runs the shared driver contract against both local drivers.
func storeUnderTest(t *testing.T, name string) Store {
	t.Helper()
	switch name {
	case "fs":
		s, err := NewFilesystem(t.TempDir())
		require.NoError(t, err)
		return s
	case "memory":
		return NewMemory()
	default:
		t.Fatalf("unknown driver %s", name)
		return nil
	}
}

func TestDriverContract(t *testing.T) {
	for _, name := range []string{"fs", "memory"} {
		t.Run(name, func(t *testing.T) {
			s := storeUnderTest(t, name)
			ctx := context.Background()

			info, err := s.Put(ctx, "products/product-1/ly-a.jpg", strings.NewReader("jpeg-bytes"), PutOptions{
				ContentType: "image/jpeg",
				Metadata:    map[string]string{"product_id": "product-1"},
			})
			require.NoError(t, err)
			assert.Equal(t, int64(9), info.Size)
			assert.Equal(t, "image/jpeg", info.ContentType)
			assert.NotEmpty(t, info.ETag)

			// Create-only: second put on the same key fails.
			_, err = s.Put(ctx, "products/product-1/ly-a.jpg", strings.NewReader("other"), PutOptions{})
			assert.ErrorIs(t, err, ErrAlreadyExists)

			got, rc, err := s.Get(ctx, "products/product-1/ly-a.jpg")
			require.NoError(t, err)
			body, err := io.ReadAll(rc)
			require.NoError(t, err)
			require.NoError(t, rc.Close())
			assert.Equal(t, "jpeg-bytes", string(body))
			assert.Equal(t, "product-1", got.Metadata["product_id"])

			head, err := s.Head(ctx, "products/product-1/ly-a.jpg")
			require.NoError(t, err)
			assert.Equal(t, info.ETag, head.ETag)

			_, _, err = s.Get(ctx, "products/missing.jpg")
			assert.ErrorIs(t, err, ErrNotFound)
			_, err = s.Head(ctx, "products/missing.jpg")
			assert.ErrorIs(t, err, ErrNotFound)

			ok, err := s.Delete(ctx, "products/product-1/ly-a.jpg")
			require.NoError(t, err)
			assert.True(t, ok)
			ok, err = s.Delete(ctx, "products/product-1/ly-a.jpg")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestListByPrefix(t *testing.T) {
	for _, name := range []string{"fs", "memory"} {
		t.Run(name, func(t *testing.T) {
			s := storeUnderTest(t, name)
			ctx := context.Background()

			keys := []string{
				"products/product-1/front.jpg",
				"products/product-1/side.jpg",
				"products/product-2/front.jpg",
			}
			for _, k := range keys {
				_, err := s.Put(ctx, k, strings.NewReader("x"), PutOptions{})
				require.NoError(t, err)
			}

			infos, err := s.List(ctx, "products/product-1/")
			require.NoError(t, err)
			require.Len(t, infos, 2)
			// Ascending key order.
			assert.Equal(t, "products/product-1/front.jpg", infos[0].Key)
			assert.Equal(t, "products/product-1/side.jpg", infos[1].Key)

			all, err := s.List(ctx, "")
			require.NoError(t, err)
			assert.Len(t, all, 3)
		})
	}
}

func TestFilesystemRejectsTraversal(t *testing.T) {
	s, err := NewFilesystem(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	for _, key := range []string{"", "../escape", "/absolute", "a/../../b"} {
		_, err := s.Put(ctx, key, strings.NewReader("x"), PutOptions{})
		assert.Error(t, err, "key %q accepted", key)
	}
}

func TestFilesystemPresignIsLocalURL(t *testing.T) {
	s, err := NewFilesystem(t.TempDir())
	require.NoError(t, err)

	u, err := s.PresignURL(context.Background(), "products/p/front.jpg", SignedURLOptions{})
	require.NoError(t, err)
	assert.Equal(t, "http://local.blob/products/p/front.jpg", u)

	_, err = s.PresignURL(context.Background(), "k", SignedURLOptions{Method: "PUT"})
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestMemoryPresignUnsupported(t *testing.T) {
	_, err := NewMemory().PresignURL(context.Background(), "k", SignedURLOptions{})
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestOpenSelectsDriver(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, config.BlobConfig{Driver: "memory"})
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, s.Driver())

	s, err = Open(ctx, config.BlobConfig{Driver: "fs", Root: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, DriverFilesystem, s.Driver())

	_, err = Open(ctx, config.BlobConfig{Driver: "s3"})
	assert.Error(t, err) // bucket required

	_, err = Open(ctx, config.BlobConfig{Driver: "carrier-pigeon"})
	assert.Error(t, err)
}
