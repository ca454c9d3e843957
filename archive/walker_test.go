package archive

import (
	"archive/zip"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func createZip(t *testing.T, names ...string) string {
	t.Helper()
	zipPath := filepath.Join(t.TempDir(), "test.zip")

	zipFile, err := os.Create(zipPath)
	if err != nil {
		t.Fatalf("Failed to create zip file: %v", err)
	}
	defer zipFile.Close()

	w := zip.NewWriter(zipFile)
	for _, name := range names {
		fw, err := w.Create(name)
		if err != nil {
			t.Fatalf("Failed to create file %s in zip: %v", name, err)
		}
		if strings.HasSuffix(name, "/") {
			// directory entries carry no data
			continue
		}
		if _, err := fw.Write([]byte("content of " + name)); err != nil {
			t.Fatalf("Failed to write content for %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to close zip writer: %v", err)
	}
	return zipPath
}

func collect(t *testing.T, zipPath, prefix string) []string {
	t.Helper()
	var visited []string
	err := Walk(zipPath, prefix, func(archive string, file *zip.File) error {
		if archive != zipPath {
			t.Errorf("archive = %s, want %s", archive, zipPath)
		}
		visited = append(visited, file.Name)
		return nil
	})
	if err != nil {
		t.Fatalf("Walk() error = %v", err)
	}
	return visited
}

func TestWalk(t *testing.T) {
	zipPath := createZip(t,
		"posts/post10.json",
		"posts/post2.json",
		"posts/post1.json",
		"posts/media/",
		"postscript.json",
		"__MACOSX/posts/._post1.json",
		"posts/.DS_Store",
		"README.txt",
	)

	tests := []struct {
		name   string
		prefix string
		want   []string
	}{
		{"everything", "", []string{"README.txt", "posts/post1.json", "posts/post2.json", "posts/post10.json", "postscript.json"}},
		{"directory", "posts", []string{"posts/post1.json", "posts/post2.json", "posts/post10.json"}},
		{"directory with slash", "posts/", []string{"posts/post1.json", "posts/post2.json", "posts/post10.json"}},
		{"single file", "posts/post2.json", []string{"posts/post2.json"}},
		{"windows separators", `posts\post10.json`, []string{"posts/post10.json"}},
		{"no match", "nonexistent", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := collect(t, zipPath, tt.prefix)
			if !slices.Equal(got, tt.want) {
				t.Errorf("visited %v, want %v", got, tt.want)
			}
			if slices.Contains(got, "posts/media/") {
				t.Error("directory entry must not be visited")
			}
		})
	}
}

func TestWalk_InvalidArchive(t *testing.T) {
	t.Run("nonexistent", func(t *testing.T) {
		err := Walk(filepath.Join(t.TempDir(), "missing.zip"), "", func(string, *zip.File) error { return nil })
		if err == nil {
			t.Error("Walk() expected error for nonexistent archive")
		}
	})

	t.Run("not a zip", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "post.json")
		if err := os.WriteFile(path, []byte(`{"content":[]}`), 0644); err != nil {
			t.Fatal(err)
		}
		if err := Walk(path, "", func(string, *zip.File) error { return nil }); err == nil {
			t.Error("Walk() expected error for non-zip file")
		}
	})
}

func TestWalk_UnsafePath(t *testing.T) {
	zipPath := createZip(t, "posts/post1.json", "../evil.json")

	called := false
	err := Walk(zipPath, "", func(string, *zip.File) error {
		called = true
		return nil
	})
	if err == nil {
		t.Error("Walk() expected error for unsafe entry")
	}
	if called {
		t.Error("walkFn must not be called when archive contains unsafe entries")
	}
}

func TestWalk_EarlyTermination(t *testing.T) {
	zipPath := createZip(t, "a.json", "b.json", "c.json")

	stop := errors.New("stop")
	count := 0
	err := Walk(zipPath, "", func(string, *zip.File) error {
		count++
		if count == 2 {
			return stop
		}
		return nil
	})
	if !errors.Is(err, stop) {
		t.Errorf("Walk() error = %v, want %v", err, stop)
	}
	if count != 2 {
		t.Errorf("walkFn called %d times, want 2", count)
	}
}

func TestWalk_FileContent(t *testing.T) {
	zipPath := createZip(t, "post.json")

	err := Walk(zipPath, "", func(_ string, file *zip.File) error {
		rc, err := file.Open()
		if err != nil {
			return err
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			return err
		}
		if string(data) != "content of post.json" {
			t.Errorf("content = %q", data)
		}
		return nil
	})
	if err != nil {
		t.Errorf("Walk() error = %v", err)
	}
}

func TestIsSafePath(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"posts/a.json", true},
		{"a..b.json", true},
		{"/etc/passwd", false},
		{`\windows\path`, false},
		{"posts/../../x", false},
		{"..", false},
	}
	for _, tt := range tests {
		if got := isSafePath(tt.name); got != tt.want {
			t.Errorf("isSafePath(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
