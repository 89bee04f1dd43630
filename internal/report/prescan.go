// Package report handles the host-side report artifacts of an analysis:
// pre-scan of the submitted sample and persistence of run summaries next to
// the reports the guest agent produced.
package report

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Prescan describes the sample before it is handed to the guest.
type Prescan struct {
	File      string `json:"file"`
	SHA256    string `json:"sha256"`
	SizeBytes int64  `json:"size_bytes"`
}

// PrescanFile hashes and sizes the sample at path.
func PrescanFile(path string) (Prescan, error) {
	f, err := os.Open(path)
	if err != nil {
		return Prescan{}, fmt.Errorf("open sample: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return Prescan{}, fmt.Errorf("stat sample: %w", err)
	}

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return Prescan{}, fmt.Errorf("hash sample: %w", err)
	}

	return Prescan{
		File:      filepath.Base(path),
		SHA256:    hex.EncodeToString(h.Sum(nil)),
		SizeBytes: info.Size(),
	}, nil
}
