package blob

import (
	"bytes"
	"context"
	"errors"
	"log"
	"strings"
	"testing"

	appcfg "github.com/fdg312/cut-sprint/internal/config"
)

func TestLocalStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewLocalStore()

	data := []byte("week,calories\n2026-02-09,2006\n")
	n, err := store.PutObject(ctx, "reports/u1/a.csv", data, "text/csv")
	if err != nil {
		t.Fatalf("PutObject: %v", err)
	}
	if n != int64(len(data)) {
		t.Fatalf("expected size %d, got %d", len(data), n)
	}

	// Изменение исходного буфера не влияет на сохранённый объект
	data[0] = 'X'

	got, err := store.GetObject(ctx, "reports/u1/a.csv")
	if err != nil {
		t.Fatalf("GetObject: %v", err)
	}
	if !strings.HasPrefix(string(got), "week,") {
		t.Fatalf("expected stored copy, got %q", got)
	}

	if err := store.DeleteObject(ctx, "reports/u1/a.csv"); err != nil {
		t.Fatalf("DeleteObject: %v", err)
	}
	if _, err := store.GetObject(ctx, "reports/u1/a.csv"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := store.DeleteObject(ctx, "reports/u1/a.csv"); err != nil {
		t.Fatalf("expected idempotent delete, got %v", err)
	}
}

func TestLocalStorePresignUnsupported(t *testing.T) {
	store := NewLocalStore()
	if _, err := store.PresignGet(context.Background(), "k", 60); !errors.Is(err, ErrPresignUnsupported) {
		t.Fatalf("expected ErrPresignUnsupported, got %v", err)
	}
}

func TestNewBlobStoreLocalForced(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf, "", 0)

	store, mode, err := NewBlobStore(appcfg.BlobConfig{Mode: appcfg.BlobModeLocal}, logger)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if mode != appcfg.BlobModeLocal {
		t.Fatalf("expected mode=local, got %s", mode)
	}
	if _, ok := store.(*LocalStore); !ok {
		t.Fatalf("expected *LocalStore, got %T", store)
	}
	if !strings.Contains(buf.String(), "mode=local (forced)") {
		t.Fatalf("expected local mode log, got: %s", buf.String())
	}
}

func TestNewBlobStoreAutoEmptyS3FallsBackToLocal(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf, "", 0)

	store, mode, err := NewBlobStore(appcfg.BlobConfig{Mode: appcfg.BlobModeAuto}, logger)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if mode != appcfg.BlobModeLocal {
		t.Fatalf("expected mode=local fallback, got %s", mode)
	}
	if _, ok := store.(*LocalStore); !ok {
		t.Fatalf("expected *LocalStore, got %T", store)
	}

	logOut := buf.String()
	if !strings.Contains(logOut, "code=s3_not_configured") {
		t.Fatalf("expected s3_not_configured diagnostics, got: %s", logOut)
	}
	if !strings.Contains(logOut, "mode=local (auto, S3 not configured)") {
		t.Fatalf("expected auto fallback to local log, got: %s", logOut)
	}
}

func TestNewBlobStoreS3MissingRequiredReturnsError(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf, "", 0)

	store, mode, err := NewBlobStore(appcfg.BlobConfig{
		Mode: appcfg.BlobModeS3,
		S3: appcfg.S3Config{
			Endpoint: "https://storage.yandexcloud.net",
		},
	}, logger)
	if err == nil {
		t.Fatal("expected error when mode=s3 and required env are missing")
	}
	if store != nil || mode != "" {
		t.Fatalf("expected nil store and empty mode on error, got store=%v mode=%q", store, mode)
	}
	if !strings.Contains(err.Error(), "missing required config") {
		t.Fatalf("expected missing required config error, got: %v", err)
	}
}

func TestNewBlobStoreUnsupportedMode(t *testing.T) {
	if _, _, err := NewBlobStore(appcfg.BlobConfig{Mode: "ftp"}, nil); err == nil {
		t.Fatal("expected error for unsupported mode")
	}
}

func TestNewS3StoreIncomplete(t *testing.T) {
	if _, err := NewS3Store(S3Options{Endpoint: "http://localhost:9000"}); err == nil {
		t.Fatal("expected error for incomplete S3 options")
	}
}
