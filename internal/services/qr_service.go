package services

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"
)

const qrCacheTTL = 24 * time.Hour

// QRService renders package payment links as PNG QR codes so that they can
// be scanned from the desktop purchase page.
type QRService struct {
	catalog *PackageCatalog
	redis   *redis.Client
	size    int
	logger  *zap.Logger
}

// NewQRService works without Redis; rendered images are then not cached.
func NewQRService(catalog *PackageCatalog, rdb *redis.Client, logger *zap.Logger) *QRService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QRService{
		catalog: catalog,
		redis:   rdb,
		size:    256,
		logger:  logger.Named("qr"),
	}
}

func (s *QRService) PackageQR(ctx context.Context, packageID string) ([]byte, error) {
	pkg, err := s.catalog.Get(packageID)
	if err != nil {
		return nil, err
	}
	if pkg.PaymentLink == "" {
		return nil, ErrPackageNotFound
	}

	key := "qr:package:" + pkg.ID
	if s.redis != nil {
		data, err := s.redis.Get(ctx, key).Bytes()
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("qr cache read failed", zap.String("package_id", pkg.ID), zap.Error(err))
		}
	}

	png, err := qrcode.Encode(pkg.PaymentLink, qrcode.Medium, s.size)
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		if err := s.redis.Set(ctx, key, png, qrCacheTTL).Err(); err != nil {
			s.logger.Warn("qr cache write failed", zap.String("package_id", pkg.ID), zap.Error(err))
		}
	}
	return png, nil
}
