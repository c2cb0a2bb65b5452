package pybox

import (
	"archive/tar"
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Source is the archive input for a submission: an in-memory file set, a
// filesystem path, or pre-built tar bytes. It is a closed, tagged choice;
// each value produces one immutable uncompressed tar blob.
type Source interface {
	// Archive builds the tar bytes for this source.
	Archive() ([]byte, error)
}

// Files is a mapping of archive path to text content. Keys are used as
// entry paths verbatim; content is encoded as UTF-8 bytes.
type Files map[string]string

// BinaryFiles is a mapping of archive path to raw content, for inputs that
// are not text (wheels, data files).
type BinaryFiles map[string][]byte

// Path points at a local file or directory. A file contributes a single
// entry under its base name; a directory contributes every regular file
// beneath it, with paths relative to the directory root. Directory
// traversal order is platform-defined and must not be relied upon.
type Path string

// Tar wraps pre-built archive bytes, bypassing archive construction.
type Tar []byte

func (f Files) Archive() ([]byte, error) {
	raw := make(BinaryFiles, len(f))
	for name, content := range f {
		raw[name] = []byte(content)
	}
	return raw.Archive()
}

func (f BinaryFiles) Archive() ([]byte, error) {
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)

	for name, content := range f {
		header := &tar.Header{
			Name: name,
			Mode: 0o644,
			Size: int64(len(content)),
		}
		if err := tw.WriteHeader(header); err != nil {
			return nil, fmt.Errorf("writing header for %s: %w", name, err)
		}
		if _, err := tw.Write(content); err != nil {
			return nil, fmt.Errorf("writing content for %s: %w", name, err)
		}
	}

	if err := tw.Close(); err != nil {
		return nil, fmt.Errorf("closing tar: %w", err)
	}
	return buf.Bytes(), nil
}

func (p Path) Archive() ([]byte, error) {
	info, err := os.Stat(string(p))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p, ErrInvalidPath)
	}

	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)

	if info.IsDir() {
		err = tarDirectory(tw, string(p))
	} else {
		err = tarFile(tw, string(p), filepath.Base(string(p)))
	}
	if err != nil {
		return nil, err
	}

	if err := tw.Close(); err != nil {
		return nil, fmt.Errorf("closing tar: %w", err)
	}
	return buf.Bytes(), nil
}

func (t Tar) Archive() ([]byte, error) {
	return []byte(t), nil
}

// tarDirectory adds every regular file under root, with entry paths
// relative to root and normalized to forward slashes.
func tarDirectory(tw *tar.Writer, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		return tarFile(tw, path, filepath.ToSlash(rel))
	})
}

func tarFile(tw *tar.Writer, path, entryName string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("stating %s: %w", path, err)
	}

	header := &tar.Header{
		Name: entryName,
		Mode: int64(info.Mode().Perm()),
		Size: info.Size(),
	}
	if err := tw.WriteHeader(header); err != nil {
		return fmt.Errorf("writing header for %s: %w", entryName, err)
	}
	if _, err := io.Copy(tw, file); err != nil {
		return fmt.Errorf("adding %s: %w", entryName, err)
	}
	return nil
}
