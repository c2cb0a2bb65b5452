package pybox

import (
	"archive/tar"
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

// readEntries enumerates (path, content) pairs from archive bytes.
func readEntries(t *testing.T, data []byte) map[string]string {
	t.Helper()
	entries := map[string]string{}
	tr := tar.NewReader(bytes.NewReader(data))
	for {
		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return entries
		}
		if err != nil {
			t.Fatalf("reading archive: %v", err)
		}
		if header.Typeflag != tar.TypeReg {
			continue
		}
		content, err := io.ReadAll(tr)
		if err != nil {
			t.Fatalf("reading entry %s: %v", header.Name, err)
		}
		entries[header.Name] = string(content)
	}
}

func TestFilesArchive(t *testing.T) {
	files := Files{
		"main.py":   "print('hi')",
		"helper.py": "def greet(): pass",
		"data.txt":  "1,2,3",
	}

	data, err := files.Archive()
	if err != nil {
		t.Fatalf("archive: %v", err)
	}

	entries := readEntries(t, data)
	if len(entries) != len(files) {
		t.Fatalf("got %d entries, want %d", len(entries), len(files))
	}
	for name, content := range files {
		if entries[name] != content {
			t.Errorf("entry %s = %q, want %q", name, entries[name], content)
		}
	}
}

func TestBinaryFilesArchive(t *testing.T) {
	raw := BinaryFiles{
		"blob.bin": {0x00, 0xff, 0x10},
		"main.py":  []byte("print('ok')"),
	}

	data, err := raw.Archive()
	if err != nil {
		t.Fatalf("archive: %v", err)
	}

	entries := readEntries(t, data)
	if got := entries["blob.bin"]; got != string([]byte{0x00, 0xff, 0x10}) {
		t.Errorf("blob.bin content mismatch: %q", got)
	}
}

func TestPathArchiveSingleFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "script.py")
	if err := os.WriteFile(path, []byte("print('file')"), 0o644); err != nil {
		t.Fatal(err)
	}

	data, err := Path(path).Archive()
	if err != nil {
		t.Fatalf("archive: %v", err)
	}

	entries := readEntries(t, data)
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if entries["script.py"] != "print('file')" {
		t.Errorf("entry script.py = %q", entries["script.py"])
	}
}

func TestPathArchiveDirectory(t *testing.T) {
	dir := t.TempDir()
	for path, content := range map[string]string{
		"a/x.py": "print('x')",
		"b/y.py": "print('y')",
		"top.py": "print('top')",
	} {
		full := filepath.Join(dir, filepath.FromSlash(path))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	data, err := Path(dir).Archive()
	if err != nil {
		t.Fatalf("archive: %v", err)
	}

	entries := readEntries(t, data)
	want := map[string]string{
		"a/x.py": "print('x')",
		"b/y.py": "print('y')",
		"top.py": "print('top')",
	}
	if len(entries) != len(want) {
		t.Fatalf("got %d entries, want %d: %v", len(entries), len(want), entries)
	}
	for name, content := range want {
		if entries[name] != content {
			t.Errorf("entry %s = %q, want %q", name, entries[name], content)
		}
	}
}

func TestPathArchiveMissing(t *testing.T) {
	_, err := Path(filepath.Join(t.TempDir(), "nope")).Archive()
	if !errors.Is(err, ErrInvalidPath) {
		t.Fatalf("err = %v, want ErrInvalidPath", err)
	}
}

func TestTarPassthrough(t *testing.T) {
	original, err := Files{"main.py": "print('raw')"}.Archive()
	if err != nil {
		t.Fatal(err)
	}

	data, err := Tar(original).Archive()
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	if !bytes.Equal(data, original) {
		t.Error("pre-built archive bytes were modified")
	}
}
