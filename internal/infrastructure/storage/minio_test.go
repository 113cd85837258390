package storage

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	apperrors "github.com/acadease/backend/errors"
)

func newTestStore(t *testing.T, url string) *MediaStore {
	t.Helper()
	client, err := minio.New(strings.TrimPrefix(url, "http://"), &minio.Options{
		Creds:  credentials.NewStaticV4("test-key", "test-secret", ""),
		Secure: false,
		Region: "us-east-1",
	})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return &MediaStore{client: client, bucket: "media-test"}
}

func TestStageMedia_KeyUnderStagingPrefix(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Fatalf("unexpected %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("ETag", `"abc123"`)
	}))
	defer ts.Close()

	key, err := newTestStore(t, ts.URL).StageMedia(context.Background(), []byte("audio-bytes"), "audio/mpeg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(key, "staging/") {
		t.Errorf("staged key %q must live under the staging prefix", key)
	}
}

func TestStageMedia_FailureIsStorageError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer ts.Close()

	_, err := newTestStore(t, ts.URL).StageMedia(context.Background(), []byte("audio-bytes"), "audio/mpeg")
	if err == nil {
		t.Fatal("expected an error")
	}
	var appErr apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected an app error, got %T", err)
	}
	if appErr.Code != apperrors.ErrorCode_STORAGE_FAILED {
		t.Errorf("unexpected code %v", appErr.Code)
	}
}
