package cli

import (
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, err := LoadConfigWithPath("streambuf", path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if len(cfg.Contexts) != 0 {
		t.Errorf("contexts=%d", len(cfg.Contexts))
	}

	if err := cfg.AddContext("fast", &Context{
		Capacity:   1 << 20,
		ReadChunk:  64 * 1024,
		WriteChunk: 64 * 1024,
	}); err != nil {
		t.Fatalf("add context: %v", err)
	}
	if err := cfg.UseContext("fast"); err != nil {
		t.Fatalf("use context: %v", err)
	}

	// Reload from disk and verify round trip.
	cfg2, err := LoadConfigWithPath("streambuf", path)
	if err != nil {
		t.Fatalf("reload config: %v", err)
	}
	if cfg2.CurrentContext != "fast" {
		t.Errorf("current context=%q", cfg2.CurrentContext)
	}
	ctx, err := cfg2.GetCurrentContext()
	if err != nil {
		t.Fatalf("get current context: %v", err)
	}
	if ctx.Capacity != 1<<20 {
		t.Errorf("capacity=%d", ctx.Capacity)
	}

	if err := cfg2.DeleteContext("fast"); err != nil {
		t.Fatalf("delete context: %v", err)
	}
	if cfg2.CurrentContext != "" {
		t.Errorf("current context=%q after delete", cfg2.CurrentContext)
	}
	if _, err := cfg2.GetContext("fast"); err == nil {
		t.Error("get deleted context: expected error")
	}
}

func TestResolveContextDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg, err := LoadConfigWithPath("streambuf", path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	ctx, err := cfg.ResolveContext("")
	if err != nil {
		t.Fatalf("resolve context: %v", err)
	}
	if ctx.Capacity != DefaultCapacity {
		t.Errorf("capacity=%d", ctx.Capacity)
	}
	if ctx.ReadChunk != DefaultChunk || ctx.WriteChunk != DefaultChunk {
		t.Errorf("chunks=%d/%d", ctx.ReadChunk, ctx.WriteChunk)
	}

	if _, err := cfg.ResolveContext("missing"); err == nil {
		t.Error("resolve missing context: expected error")
	}
}

func TestApplyDefaultsKeepsExplicit(t *testing.T) {
	ctx := &Context{Capacity: 128}
	ctx.ApplyDefaults()
	if ctx.Capacity != 128 {
		t.Errorf("capacity=%d", ctx.Capacity)
	}
	if ctx.ReadChunk != DefaultChunk {
		t.Errorf("read chunk=%d", ctx.ReadChunk)
	}
}
