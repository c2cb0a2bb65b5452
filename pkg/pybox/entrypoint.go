package pybox

import (
	"archive/tar"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
)

// DetectEntrypoint picks the Python file to execute from an archive's
// member list. Priority: an entry named exactly "main.py", then exactly
// "__main__.py", then the first .py entry in archive order. Archive order
// follows whatever built the archive, so multi-file directory submissions
// should pass an explicit entrypoint instead of relying on the fallback.
//
// Returns ErrNoEntrypoint when the archive holds no .py entries.
func DetectEntrypoint(tarData []byte) (string, error) {
	tr := tar.NewReader(bytes.NewReader(tarData))

	var firstPy string
	var dunderMain string

	for {
		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("reading archive: %w", err)
		}

		if header.Typeflag != tar.TypeReg || !strings.HasSuffix(header.Name, ".py") {
			continue
		}

		if header.Name == "main.py" {
			return header.Name, nil
		}
		if header.Name == "__main__.py" && dunderMain == "" {
			dunderMain = header.Name
		}
		if firstPy == "" {
			firstPy = header.Name
		}
	}

	if dunderMain != "" {
		return dunderMain, nil
	}
	if firstPy != "" {
		return firstPy, nil
	}
	return "", ErrNoEntrypoint
}
