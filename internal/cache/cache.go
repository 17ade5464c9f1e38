package cache

import (
	"crypto/sha256"
	"fmt"
)

// AudioKey fingerprints an audio payload so the same recording is not
// transcribed and ingested twice in a row.
func AudioKey(audio []byte) string {
	h := sha256.New()
	h.Write(audio)
	return fmt.Sprintf("%x", h.Sum(nil))
}
