package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestDecodeDefaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	cfg, err := Decode(v)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if cfg.Media.ChunkExpiration != 86400 {
		t.Fatalf("chunk expiration want 86400 got %d", cfg.Media.ChunkExpiration)
	}
	if cfg.Media.ChunkDir != "chunks" {
		t.Fatalf("chunk dir want chunks got %s", cfg.Media.ChunkDir)
	}
	if cfg.Media.ChunkTTL() != 24*time.Hour {
		t.Fatalf("chunk ttl want 24h got %s", cfg.Media.ChunkTTL())
	}
	if cfg.Redis.Enabled {
		t.Fatalf("redis should be disabled by default")
	}
	if !cfg.Queue.Enabled || cfg.Queue.Queues["maintenance"] != 1 {
		t.Fatalf("unexpected queue defaults: %+v", cfg.Queue)
	}
	if cfg.Scheduler.ClearChunksCron != "@daily" {
		t.Fatalf("unexpected cron: %s", cfg.Scheduler.ClearChunksCron)
	}
}

func TestDecodeOverride(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("media.chunk_expiration", 50)
	v.Set("media.chunk_dir", "tmp/chunks")
	cfg, err := Decode(v)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if cfg.Media.ChunkTTL() != 50*time.Second || cfg.Media.ChunkDir != "tmp/chunks" {
		t.Fatalf("override not applied: %+v", cfg.Media)
	}
}

func TestDecodeEnvOverride(t *testing.T) {
	t.Setenv("MEDIA_CHUNK_EXPIRATION", "120")
	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(envKeyReplacer)
	cfg, err := Decode(v)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if cfg.Media.ChunkExpiration != 120 {
		t.Fatalf("env override want 120 got %d", cfg.Media.ChunkExpiration)
	}
}

func TestDecodeRejectsNegativeExpiration(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("media.chunk_expiration", -1)
	if _, err := Decode(v); err == nil {
		t.Fatalf("expected error for negative expiration")
	}
}
