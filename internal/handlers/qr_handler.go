package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/bhavisyaji/backend/internal/services"
)

type QRHandler struct {
	service *services.QRService
	logger  *zap.Logger
}

func NewQRHandler(service *services.QRService, logger *zap.Logger) *QRHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QRHandler{service: service, logger: logger.Named("qr")}
}

// PackageQR renders the payment link of a credit package as a QR code
// @Summary Package payment QR code
// @Tags Payments
// @Produce png
// @Param packageId path string true "Credit package id"
// @Success 200 {file} binary
// @Failure 404 {object} services.ErrorResponse
// @Router /credit-packages/{packageId}/qr [get]
func (h *QRHandler) PackageQR(w http.ResponseWriter, r *http.Request) {
	packageID := chi.URLParam(r, "packageId")

	png, err := h.service.PackageQR(r.Context(), packageID)
	if errors.Is(err, services.ErrPackageNotFound) {
		services.SendErrorResponse(w, "Credit package not found", http.StatusNotFound, nil)
		return
	}
	if err != nil {
		h.logger.Error("qr render failed", zap.String("package_id", packageID), zap.Error(err))
		services.SendErrorResponse(w, "Failed to generate QR code", http.StatusInternalServerError, nil)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
