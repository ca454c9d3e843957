package config

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func readArchive(t *testing.T, name string) map[string]string {
	t.Helper()
	zr, err := zip.OpenReader(name)
	if err != nil {
		t.Fatalf("unable to open report: %v", err)
	}
	defer zr.Close()

	files := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("unable to open %s: %v", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("unable to read %s: %v", f.Name, err)
		}
		files[f.Name] = string(data)
	}
	return files
}

func TestReport(t *testing.T) {
	dir := t.TempDir()
	conf := ReporterConfig{Destination: filepath.Join(dir, "report.zip")}
	r, err := conf.Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	stored := filepath.Join(dir, "post.json")
	if err := os.WriteFile(stored, []byte(`{"content":[]}`), 0644); err != nil {
		t.Fatal(err)
	}
	output := filepath.Join(dir, "post.html")
	if err := os.WriteFile(output, []byte("<p>first</p>"), 0644); err != nil {
		t.Fatal(err)
	}

	r.Store("source/post.json", stored)
	r.StoreData("config/config.yaml", []byte("version: 1\n"))
	if err := r.StoreCopy("output/post.html", output); err != nil {
		t.Fatalf("StoreCopy() error = %v", err)
	}
	// copy is taken at the time of the call
	if err := os.WriteFile(output, []byte("<p>second</p>"), 0644); err != nil {
		t.Fatal(err)
	}
	copies := append([]string(nil), r.copies...)

	if err := r.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if r.Name() != conf.Destination {
		t.Errorf("Name() = %q, want %q", r.Name(), conf.Destination)
	}

	files := readArchive(t, conf.Destination)
	if files["source/post.json"] != `{"content":[]}` {
		t.Errorf("stored file content = %q", files["source/post.json"])
	}
	if files["config/config.yaml"] != "version: 1\n" {
		t.Errorf("stored data content = %q", files["config/config.yaml"])
	}
	if files["output/post.html"] != "<p>first</p>" {
		t.Errorf("stored copy content = %q", files["output/post.html"])
	}
	if !strings.Contains(files["MANIFEST"], "source/post.json") {
		t.Errorf("manifest does not list entries:\n%s", files["MANIFEST"])
	}

	for _, c := range copies {
		if _, err := os.Stat(c); !os.IsNotExist(err) {
			t.Errorf("temporary copy %s was not removed", c)
		}
	}
}

func TestReportNil(t *testing.T) {
	var r *Report
	r.Store("a", "b")
	r.StoreData("a", nil)
	if err := r.StoreCopy("a", "b"); err != nil {
		t.Errorf("StoreCopy() on nil report error = %v", err)
	}
	if err := r.Close(); err != nil {
		t.Errorf("Close() on nil report error = %v", err)
	}
	if r.Name() != "" {
		t.Errorf("Name() on nil report = %q", r.Name())
	}
}

func TestReportStoreCopyDirectory(t *testing.T) {
	r := &Report{entries: make(map[string]entry)}
	if err := r.StoreCopy("dir", t.TempDir()); err == nil {
		t.Error("StoreCopy() must refuse directories")
	}
}
