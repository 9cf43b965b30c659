package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
)

// pngHeader is enough of a PNG for content sniffing.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type fakeUploader struct {
	key         string
	contentType string
	body        []byte
	err         error
}

func (f *fakeUploader) Key(name string) string { return "uploads/" + name }

func (f *fakeUploader) Upload(_ context.Context, key, contentType string, body io.Reader, _ int64) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	f.key, f.contentType, f.body = key, contentType, data
	return "https://cdn.example.com/" + key, nil
}

func multipartRequest(t *testing.T, field string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, "image.bin")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/uploads", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadsCreate(t *testing.T) {
	log, _ := test.NewNullLogger()
	storage := &fakeUploader{}
	h := NewUploads(storage, log)

	rec := httptest.NewRecorder()
	h.Create(rec, multipartRequest(t, "file", pngHeader))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d (%s)", rec.Code, rec.Body.String())
	}
	var got struct {
		URL string `json:"url"`
		Key string `json:"key"`
	}
	decodeBody(t, rec, &got)

	if !strings.HasPrefix(got.Key, "uploads/") || !strings.HasSuffix(got.Key, ".png") {
		t.Errorf("key: got %q", got.Key)
	}
	if got.URL != "https://cdn.example.com/"+got.Key {
		t.Errorf("url: got %q", got.URL)
	}
	if storage.contentType != "image/png" || !bytes.Equal(storage.body, pngHeader) {
		t.Errorf("stored %q with %d bytes", storage.contentType, len(storage.body))
	}
}

func TestUploadsCreate_Rejections(t *testing.T) {
	log, _ := test.NewNullLogger()

	tests := []struct {
		name       string
		field      string
		data       []byte
		wantStatus int
		wantError  string
	}{
		{"not an image", "file", []byte("just some text"), http.StatusBadRequest, `File type "text/plain; charset=utf-8" is not allowed`},
		{"wrong field", "image", pngHeader, http.StatusBadRequest, "No file provided"},
		{"too large", "file", append(append([]byte{}, pngHeader...), make([]byte, maxUploadSize+2048)...), http.StatusRequestEntityTooLarge, "File too large. Maximum size is 5 MB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage := &fakeUploader{}
			rec := httptest.NewRecorder()
			NewUploads(storage, log).Create(rec, multipartRequest(t, tt.field, tt.data))

			if rec.Code != tt.wantStatus {
				t.Errorf("status: got %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := decodeEnvelope(t, rec); got.Error != tt.wantError {
				t.Errorf("error: got %q, want %q", got.Error, tt.wantError)
			}
			if storage.key != "" {
				t.Error("rejected upload reached storage")
			}
		})
	}
}

func TestUploadsCreate_NotConfigured(t *testing.T) {
	log, _ := test.NewNullLogger()

	rec := httptest.NewRecorder()
	NewUploads(nil, log).Create(rec, multipartRequest(t, "file", pngHeader))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status: got %d, want 503", rec.Code)
	}
}

func TestUploadsCreate_StorageFailureHidden(t *testing.T) {
	log, hook := test.NewNullLogger()
	storage := &fakeUploader{err: errors.New("s3: access denied for bucket internal-bucket")}

	rec := httptest.NewRecorder()
	NewUploads(storage, log).Create(rec, multipartRequest(t, "file", pngHeader))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status: got %d, want 500", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "internal-bucket") {
		t.Errorf("body leaks storage detail: %s", rec.Body.String())
	}
	if len(hook.AllEntries()) == 0 {
		t.Error("expected the failure to be logged")
	}
}
