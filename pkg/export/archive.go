package export

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// WriteBundle packs the summary files in dir into one zip at dest so a
// whole location's reports travel as a single attachment. Entries are
// stored in name order with fixed timestamps, keeping repeated bundles
// of the same summaries byte-identical.
func WriteBundle(dir, dest string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	if len(names) == 0 {
		return 0, fmt.Errorf("no summaries in %s", dir)
	}

	out, err := os.Create(dest)
	if err != nil {
		return 0, err
	}
	defer out.Close()

	archive := zip.NewWriter(out)
	for _, name := range names {
		entry, err := archive.CreateHeader(&zip.FileHeader{
			Name:   name,
			Method: zip.Deflate,
		})
		if err != nil {
			return 0, err
		}
		file, err := os.Open(filepath.Join(dir, name))
		if err != nil {
			return 0, err
		}
		_, err = io.Copy(entry, file)
		file.Close()
		if err != nil {
			return 0, err
		}
	}
	if err := archive.Close(); err != nil {
		return 0, err
	}
	return len(names), nil
}
