package iffpicture

import (
	"crypto/sha1"
	"fmt"
	"io"
	"os"
)

// sha1File hashes a file's contents for the catalog.
func sha1File(file string) (string, error) {
	f, err := os.Open(file)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha1.New()
	if _, err = io.Copy(h, f); err != nil {
		return "", err
	}

	return fmt.Sprintf("%x", h.Sum(nil)), nil
}
