package handler

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"storefront/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func multipartImage(t *testing.T, field, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	return &buf, mw.FormDataContentType()
}

func TestUploadHandler_Upload(t *testing.T) {
	logger := zerolog.Nop()
	png := []byte("\x89PNG\r\n\x1a\n0000")

	t.Run("Success", func(t *testing.T) {
		uploader := new(MockUploader)
		handler := NewUploadHandler(uploader, logger)
		uploader.On("Upload", mock.Anything, "saffron.png", "image/png", mock.Anything).
			Return(&model.Image{ID: "abc.png", URL: "https://cdn.example.com/products/abc.png"}, nil)

		body, ct := multipartImage(t, "image", "saffron.png", "image/png", png)
		req := httptest.NewRequest(http.MethodPost, "/api/uploads", body)
		req.Header.Set("Content-Type", ct)
		w := serve(http.MethodPost, "/api/uploads", handler.Upload, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), "https://cdn.example.com/products/abc.png")
		uploader.AssertExpectations(t)
	})

	t.Run("Wrong field name", func(t *testing.T) {
		uploader := new(MockUploader)
		handler := NewUploadHandler(uploader, logger)

		body, ct := multipartImage(t, "file", "saffron.png", "image/png", png)
		req := httptest.NewRequest(http.MethodPost, "/api/uploads", body)
		req.Header.Set("Content-Type", ct)
		w := serve(http.MethodPost, "/api/uploads", handler.Upload, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		uploader.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Not multipart", func(t *testing.T) {
		uploader := new(MockUploader)
		handler := NewUploadHandler(uploader, logger)

		req := httptest.NewRequest(http.MethodPost, "/api/uploads", bytes.NewBufferString("{}"))
		req.Header.Set("Content-Type", "application/json")
		w := serve(http.MethodPost, "/api/uploads", handler.Upload, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Rejected type", func(t *testing.T) {
		uploader := new(MockUploader)
		handler := NewUploadHandler(uploader, logger)
		uploader.On("Upload", mock.Anything, "doc.pdf", "application/pdf", mock.Anything).
			Return(nil, model.ErrValidationFailed.WithMessage("Only JPEG, PNG, WebP and GIF images are allowed"))

		body, ct := multipartImage(t, "image", "doc.pdf", "application/pdf", []byte("%PDF-1.4"))
		req := httptest.NewRequest(http.MethodPost, "/api/uploads", body)
		req.Header.Set("Content-Type", ct)
		w := serve(http.MethodPost, "/api/uploads", handler.Upload, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestUploadHandler_Delete(t *testing.T) {
	uploader := new(MockUploader)
	handler := NewUploadHandler(uploader, zerolog.Nop())
	uploader.On("Delete", mock.Anything, "abc.png").Return(nil)

	w := serve(http.MethodDelete, "/api/uploads/{id}", handler.Delete,
		httptest.NewRequest(http.MethodDelete, "/api/uploads/abc.png", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	uploader.AssertExpectations(t)
}
