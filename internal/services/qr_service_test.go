package services

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"testing"

	"github.com/go-redis/redismock/v8"
	"github.com/skip2/go-qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQRService_PackageQR(t *testing.T) {
	ctx := context.Background()

	t.Run("renders png without redis", func(t *testing.T) {
		svc := NewQRService(NewPackageCatalog(), nil, nil)
		data, err := svc.PackageQR(ctx, "micro-pack")
		require.NoError(t, err)

		img, err := png.Decode(bytes.NewReader(data))
		require.NoError(t, err)
		assert.Equal(t, 256, img.Bounds().Dx())
	})

	t.Run("unknown package", func(t *testing.T) {
		svc := NewQRService(NewPackageCatalog(), nil, nil)
		_, err := svc.PackageQR(ctx, "ghost")
		assert.ErrorIs(t, err, ErrPackageNotFound)
	})

	t.Run("cache hit skips rendering", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		mock.ExpectGet("qr:package:micro-pack").SetVal("cached-png")

		svc := NewQRService(NewPackageCatalog(), rdb, nil)
		data, err := svc.PackageQR(ctx, "micro-pack")
		require.NoError(t, err)
		assert.Equal(t, []byte("cached-png"), data)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("cache miss renders and stores", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		want, err := qrcode.Encode("https://rzp.io/rzp/5fNpWpos", qrcode.Medium, 256)
		require.NoError(t, err)
		mock.ExpectGet("qr:package:standard-pack").RedisNil()
		mock.ExpectSet("qr:package:standard-pack", want, qrCacheTTL).SetVal("OK")

		svc := NewQRService(NewPackageCatalog(), rdb, nil)
		data, err := svc.PackageQR(ctx, "standard-pack")
		require.NoError(t, err)
		assert.Equal(t, want, data)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("cache outage still serves the image", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		mock.ExpectGet("qr:package:value-pack").SetErr(errors.New("i/o timeout"))

		svc := NewQRService(NewPackageCatalog(), rdb, nil)
		data, err := svc.PackageQR(ctx, "value-pack")
		require.NoError(t, err)
		assert.NotEmpty(t, data)
	})
}
