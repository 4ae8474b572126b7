package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/jonwraymond/fontops/secret"
)

// Load reads the YAML file at path over Defaults, resolves secrets and
// validates the result. An empty path returns the validated defaults.
func Load(ctx context.Context, path string) (Config, error) {
	if path == "" {
		cfg := Defaults()
		return cfg, cfg.Validate()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	resolver := secret.NewResolver(secret.FileProvider{Dir: filepath.Dir(path)})
	return Parse(ctx, raw, resolver)
}

// Parse decodes raw YAML over Defaults. Unknown keys are an error.
func Parse(ctx context.Context, raw []byte, resolver *secret.Resolver) (Config, error) {
	cfg := Defaults()
	// Derived directories follow data_dir unless set explicitly.
	cfg.StaticDir, cfg.FontsDir = "", ""

	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if resolver == nil {
		resolver = secret.NewResolver()
	}
	if err := cfg.resolve(ctx, resolver); err != nil {
		return Config{}, err
	}
	cfg.derive()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) resolve(ctx context.Context, r *secret.Resolver) error {
	fields := []struct {
		name string
		ptr  *string
	}{
		{"listen", &c.Listen},
		{"data_dir", &c.DataDir},
		{"static_dir", &c.StaticDir},
		{"fonts_dir", &c.FontsDir},
		{"admin.jwt_secret", &c.Admin.JWTSecret},
		{"admin.jwt_issuer", &c.Admin.JWTIssuer},
		{"admin.jwt_audience", &c.Admin.JWTAudience},
	}
	for i := range c.Admin.APIKeys {
		fields = append(fields, struct {
			name string
			ptr  *string
		}{fmt.Sprintf("admin.api_keys[%d].key", i), &c.Admin.APIKeys[i].Key})
	}
	for _, f := range fields {
		if *f.ptr == "" {
			continue
		}
		v, err := r.ResolveValue(ctx, *f.ptr)
		if err != nil {
			return fmt.Errorf("config: %s: %w", f.name, err)
		}
		*f.ptr = v
	}
	return nil
}

// EnsureDirs creates the data, static and fonts directories.
func (c Config) EnsureDirs() error {
	for _, dir := range []string{c.DataDir, c.StaticDir, c.FontsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("config: create %s: %w", dir, err)
		}
	}
	return nil
}
