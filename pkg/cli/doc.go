// Package cli provides common utilities for streambuf command-line tools.
//
// This package includes:
//   - Configuration management (contexts with transfer tuning knobs)
//   - Output formatting (JSON, YAML, raw)
//   - Request file loading (YAML/JSON)
//   - Terminal progress rendering
//
// Configuration is stored in ~/.streambuf/<app>/ directory, supporting
// multiple contexts similar to kubectl.
//
// Example usage:
//
//	// Initialize config for your app
//	cfg, err := cli.LoadConfig("streambuf")
//
//	// Resolve the active context
//	ctx, err := cfg.ResolveContext("")
//
//	// Output result
//	cli.Output(result, cli.OutputOptions{
//	    Format: cli.FormatJSON,
//	    File:   outputPath,
//	})
package cli
