package s3

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"calorievision-backend/internal/shared/storage/object"
)

const noSuchKeyBody = `<?xml version="1.0" encoding="UTF-8"?>
<Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`

type fakeBucket struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
}

func (f *fakeBucket) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch r.Method {
	case http.MethodGet:
		body, ok := f.objects[r.URL.Path]
		if !ok {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, noSuchKeyBody)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(body)
	case http.MethodDelete:
		f.deleted = append(f.deleted, r.URL.Path)
		delete(f.objects, r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newFakeStore(t *testing.T, bucket *fakeBucket) *Store {
	t.Helper()
	srv := httptest.NewServer(bucket)
	t.Cleanup(srv.Close)

	cfg := aws.Config{
		Region:      "us-east-1",
		Credentials: aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider("AKID", "SECRET", "")),
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(srv.URL)
		o.UsePathStyle = true
	})
	return NewWithClient(client, "meals", "staged/", "")
}

func TestOpenAndDeleteAgainstBucket(t *testing.T) {
	bucket := &fakeBucket{objects: map[string][]byte{
		"/meals/staged/owner/abc_burger.png": []byte("png-bytes"),
	}}
	store := newFakeStore(t, bucket)

	rc, err := store.Open(context.Background(), "owner/abc_burger.png")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	data, err := io.ReadAll(rc)
	_ = rc.Close()
	if err != nil || string(data) != "png-bytes" {
		t.Fatalf("unexpected body %q err=%v", data, err)
	}

	if err := store.Delete(context.Background(), "owner/abc_burger.png"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(bucket.deleted) != 1 || bucket.deleted[0] != "/meals/staged/owner/abc_burger.png" {
		t.Fatalf("unexpected deletes %v", bucket.deleted)
	}
}

func TestOpenMissingKeyMapsToNotFound(t *testing.T) {
	store := newFakeStore(t, &fakeBucket{objects: map[string][]byte{}})

	_, err := store.Open(context.Background(), "owner/missing.png")
	if !errors.Is(err, object.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCanceledContextSkipsRequest(t *testing.T) {
	bucket := &fakeBucket{objects: map[string][]byte{}}
	store := newFakeStore(t, bucket)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := store.Delete(ctx, "owner/x.png"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(bucket.deleted) != 0 {
		t.Fatalf("expected no request, got %v", bucket.deleted)
	}
}
