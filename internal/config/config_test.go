package config

import "testing"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("MINIO_BUCKET", "")
	t.Setenv("MINIO_USE_SSL", "")

	cfg := Load()
	if cfg.Port != "4000" {
		t.Errorf("Port: got %q want %q", cfg.Port, "4000")
	}
	if cfg.MinioBucket != "uploads" {
		t.Errorf("MinioBucket: got %q want %q", cfg.MinioBucket, "uploads")
	}
	if cfg.MinioUseSSL {
		t.Error("MinioUseSSL: got true want false")
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("ACCESS_TOKEN_SECRET", "s3cr3t")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("LOG_DEV", "1")

	cfg := Load()
	if cfg.Port != "9999" {
		t.Errorf("Port: got %q want %q", cfg.Port, "9999")
	}
	if cfg.TokenSecret != "s3cr3t" {
		t.Errorf("TokenSecret: got %q want %q", cfg.TokenSecret, "s3cr3t")
	}
	if !cfg.MinioUseSSL {
		t.Error("MinioUseSSL: got false want true")
	}
	if !cfg.LogDev {
		t.Error("LogDev: got false want true")
	}
}
