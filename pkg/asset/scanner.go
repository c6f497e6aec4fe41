package asset

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ScanDir walks dir and returns one Input per regular file, in lexical path
// order. The asset id is the file name without its extension. Hidden files
// and directories are skipped. Data is left nil so DecodeBatch reads each
// file lazily.
func ScanDir(dir string) ([]Input, error) {
	var inputs []Input

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		name := info.Name()
		if strings.HasPrefix(name, ".") && path != dir {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		id := strings.TrimSuffix(name, filepath.Ext(name))
		if id == "" {
			return nil
		}
		inputs = append(inputs, Input{AssetID: id, Path: path})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}

	return inputs, nil
}
