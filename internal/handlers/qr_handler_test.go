package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bhavisyaji/backend/internal/services"
)

func TestQRHandler_PackageQR(t *testing.T) {
	h := NewQRHandler(services.NewQRService(services.NewPackageCatalog(), nil, nil), nil)
	r := chi.NewRouter()
	r.Get("/credit-packages/{packageId}/qr", h.PackageQR)

	t.Run("renders png", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/credit-packages/value-pack/qr", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
		assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))
	})

	t.Run("unknown package", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/credit-packages/nope/qr", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
