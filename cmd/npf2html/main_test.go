package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cebtenzzre/npf2html/state"
)

const testPost = `{
	"id_string": "7",
	"blog": {"name": "staff", "url": "https://staff.tumblr.com/"},
	"content": [{"type": "text", "text": "Hello there."}]
}`

func writeTestFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func runApp(t *testing.T, args ...string) (*state.LocalEnv, error) {
	t.Helper()
	ctx := state.ContextWithEnv(context.Background())
	err := newApp().Run(ctx, append([]string{"npf2html"}, args...))
	return state.EnvFromContext(ctx), err
}

func TestDumpConfig(t *testing.T) {
	dir := t.TempDir()

	cfgPath := filepath.Join(dir, "in.yaml")
	writeTestFile(t, cfgPath, "document:\n  class_prefix: tumblr\n")

	tests := []struct {
		name string
		args []string
		want string
		skip string
	}{
		{name: "default", args: []string{"--config", cfgPath, "dumpconfig", "--default"}, want: "class_prefix: npf", skip: "tumblr"},
		{name: "effective", args: []string{"--config", cfgPath, "dumpconfig"}, want: "class_prefix: tumblr"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := filepath.Join(dir, tt.name+".yaml")
			if _, err := runApp(t, append(tt.args, out)...); err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			data, err := os.ReadFile(out)
			if err != nil {
				t.Fatalf("configuration was not written: %v", err)
			}
			if !strings.Contains(string(data), tt.want) {
				t.Errorf("configuration does not contain %q:\n%s", tt.want, data)
			}
			if tt.skip != "" && strings.Contains(string(data), tt.skip) {
				t.Errorf("configuration must not contain %q:\n%s", tt.skip, data)
			}
		})
	}
}

func TestConvertUsesConfiguredPrefix(t *testing.T) {
	dir, dst := t.TempDir(), t.TempDir()

	cfgPath := filepath.Join(dir, "cfg.yaml")
	writeTestFile(t, cfgPath, "document:\n  class_prefix: blog\n  output_format: page\n")
	src := filepath.Join(dir, "post.json")
	writeTestFile(t, src, testPost)

	env, err := runApp(t, "--config", cfgPath, "convert", "--overwrite", src, dst)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !env.Overwrite {
		t.Error("overwrite flag was not applied")
	}

	data, err := os.ReadFile(filepath.Join(dst, "post.html"))
	if err != nil {
		t.Fatalf("no output: %v", err)
	}
	out := string(data)
	if !strings.HasPrefix(out, "<!DOCTYPE html>") {
		t.Errorf("configured page format was not used:\n%s", out)
	}
	if !strings.Contains(out, `class="blog-`) || strings.Contains(out, `class="npf-`) {
		t.Errorf("configured class prefix was not used:\n%s", out)
	}
}

func TestInvalidConfiguration(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "bad.yaml")
	writeTestFile(t, cfgPath, "document:\n  class_prefix: \"9 lives\"\n")

	env, err := runApp(t, "--config", cfgPath, "dumpconfig", filepath.Join(dir, "out.yaml"))
	if err == nil || !strings.Contains(err.Error(), "unable to prepare configuration") {
		t.Fatalf("Run() error = %v, want configuration error", err)
	}
	if env.Log != nil {
		t.Error("logging must not be set up with broken configuration")
	}
	if _, err := os.Stat(filepath.Join(dir, "out.yaml")); !os.IsNotExist(err) {
		t.Error("nothing must be written with broken configuration")
	}
}

func TestHelpNeedsNoConfiguration(t *testing.T) {
	env, err := runApp(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if env.Cfg != nil {
		t.Error("configuration must not be loaded when only help is shown")
	}
}
