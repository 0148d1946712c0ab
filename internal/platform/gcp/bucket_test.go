package gcp

import (
	"errors"
	"testing"
)

func TestResolveObjectStorageConfig(t *testing.T) {
	cases := []struct {
		name     string
		mode     string
		host     string
		want     ObjectStorageMode
		fallback bool
		errCode  ObjectStorageConfigErrorCode
	}{
		{name: "default gcs", want: ObjectStorageModeGCS},
		{name: "explicit gcs ignores host", mode: "gcs", host: "http://fake-gcs:4443", want: ObjectStorageModeGCS},
		{name: "explicit emulator", mode: "GCS_EMULATOR", host: "http://fake-gcs:4443", want: ObjectStorageModeGCSEmulator},
		{name: "emulator fallback", host: "http://fake-gcs:4443", want: ObjectStorageModeGCSEmulator, fallback: true},
		{name: "emulator without host", mode: "gcs_emulator", errCode: ObjectStorageConfigErrorMissingEmulatorHost},
		{name: "emulator bad host", mode: "gcs_emulator", host: "fake-gcs", errCode: ObjectStorageConfigErrorInvalidEmulatorHost},
		{name: "unknown mode", mode: "s3", errCode: ObjectStorageConfigErrorInvalidMode},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := ResolveObjectStorageConfig(tc.mode, tc.host)
			if tc.errCode != "" {
				var cfgErr *ObjectStorageConfigError
				if !errors.As(err, &cfgErr) || cfgErr.Code != tc.errCode {
					t.Fatalf("error: want code=%s got=%v", tc.errCode, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cfg.Mode != tc.want || cfg.CompatibilityFallback != tc.fallback {
				t.Fatalf("cfg: want=%s/%v got=%s/%v", tc.want, tc.fallback, cfg.Mode, cfg.CompatibilityFallback)
			}
		})
	}
}

func TestPublicURL(t *testing.T) {
	gcs := ObjectStorageConfig{Mode: ObjectStorageModeGCS}
	emu := ObjectStorageConfig{Mode: ObjectStorageModeGCSEmulator, EmulatorHost: "http://fake-gcs:4443"}

	cases := []struct {
		name string
		cfg  BucketConfig
		want string
	}{
		{"cdn wins", BucketConfig{Storage: gcs, BucketName: "avatars", CDNDomain: "cdn.example.com"}, "https://cdn.example.com/user_avatar/u/1.png"},
		{"gcs default", BucketConfig{Storage: gcs, BucketName: "avatars"}, "https://storage.googleapis.com/avatars/user_avatar/u/1.png"},
		{"emulator media url", BucketConfig{Storage: emu, BucketName: "avatars"}, "http://fake-gcs:4443/storage/v1/b/avatars/o/user_avatar%2Fu%2F1.png?alt=media"},
		{"public base override", BucketConfig{Storage: gcs, BucketName: "avatars", PublicBaseURL: "http://localhost:4443/"}, "http://localhost:4443/avatars/user_avatar/u/1.png"},
	}
	for _, tc := range cases {
		base, _, err := resolvePublicBaseURL(tc.cfg)
		if err != nil {
			t.Fatalf("%s: resolve base: %v", tc.name, err)
		}
		if got := publicURL(tc.cfg, base, "/user_avatar/u/1.png"); got != tc.want {
			t.Fatalf("%s: want=%q got=%q", tc.name, tc.want, got)
		}
	}
}

func TestResolvePublicBaseURLRejectsRelative(t *testing.T) {
	if _, _, err := resolvePublicBaseURL(BucketConfig{PublicBaseURL: "localhost:4443"}); err == nil {
		t.Fatalf("expected error for relative base url")
	}
}

func TestContentTypeForKey(t *testing.T) {
	if got := contentTypeForKey("a/b.PNG"); got != "image/png" {
		t.Fatalf("png: got=%q", got)
	}
	if got := contentTypeForKey("a/b.bin"); got != "application/octet-stream" {
		t.Fatalf("fallback: got=%q", got)
	}
}
