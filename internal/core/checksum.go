package core

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"strings"
)

const checksumPrefix = "sha256:"

// ArchiveChecksum digests archive bytes in the lockfile's checksum
// format.
func ArchiveChecksum(data []byte) string {
	sum := sha256.Sum256(data)
	return checksumPrefix + hex.EncodeToString(sum[:])
}

// FileChecksum digests a file on disk in the lockfile's checksum
// format.
func FileChecksum(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return ArchiveChecksum(data), nil
}

// ValidChecksum reports whether the value looks like a sha256: hex
// digest.
func ValidChecksum(value string) bool {
	rest, ok := strings.CutPrefix(value, checksumPrefix)
	if !ok || len(rest) != sha256.Size*2 {
		return false
	}
	_, err := hex.DecodeString(rest)
	return err == nil
}
