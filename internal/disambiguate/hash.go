// Package disambiguate identifies subjects whose underlying media files
// are bit-identical, by content-hashing a download directory.
package disambiguate

import (
	"crypto/md5" //nolint:gosec // content fingerprint, not a security boundary
	"encoding/hex"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/kingsdigitallab/zoonyper/internal/errors"
)

// HashFiles walks the download directory and returns the MD5 digest of
// every file, keyed by base file name. Export media file names are unique
// per content, so encountering the same name with two different digests
// is an error, as is an empty directory.
func HashFiles(dir string) (map[string]string, error) {
	digests := make(map[string]string)

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		digest, err := fileMD5(path)
		if err != nil {
			return err
		}

		name := d.Name()
		if previous, ok := digests[name]; ok && previous != digest {
			return errors.Newf("file name %q appears with two different contents; downloaded export media never does this", name).
				Component("disambiguate").
				Category(errors.CategoryDisambiguation).
				Context("file", name).
				Build()
		}
		digests[name] = digest
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(digests) == 0 {
		return nil, errors.Newf("download directory %s holds no files", dir).
			Component("disambiguate").
			Category(errors.CategoryDisambiguation).
			Build()
	}
	return digests, nil
}

// fileMD5 returns the hex MD5 digest of the file contents.
func fileMD5(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.Newf("failed to open media file: %w", err).
			Component("disambiguate").
			Category(errors.CategoryFileIO).
			FileContext(path, 0).
			Build()
	}
	defer f.Close()

	h := md5.New() //nolint:gosec // content fingerprint, not a security boundary
	if _, err := io.Copy(h, f); err != nil {
		return "", errors.Newf("failed to hash media file: %w", err).
			Component("disambiguate").
			Category(errors.CategoryFileIO).
			FileContext(path, 0).
			Build()
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
