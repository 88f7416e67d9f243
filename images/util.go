package images

import (
	"crypto/md5"
	"encoding/binary"
	"fmt"
)

// ComputeChecksum generates a deterministic checksum for an Image to verify idempotency.
//
// Arguments:
// - img: The Image to compute checksum for.
//
// Returns:
// - A hex-encoded MD5 checksum string.
//
// Example:
//
// ```go
//
//	checksum := ComputeChecksum(out)
//	fmt.Printf("Entropy checksum: %s\n", checksum)
//
// ```
func ComputeChecksum(img Image) string {
	if img.Empty() {
		return "empty"
	}

	hash := md5.New()
	var hdr [12]byte
	binary.LittleEndian.PutUint32(hdr[0:], uint32(img.Format))
	binary.LittleEndian.PutUint32(hdr[4:], uint32(img.Width))
	binary.LittleEndian.PutUint32(hdr[8:], uint32(img.Height))
	hash.Write(hdr[:])

	if img.IsGrayscale() {
		hash.Write(img.Gray)
	} else {
		buf := make([]byte, 4*len(img.ARGB))
		for i, px := range img.ARGB {
			binary.LittleEndian.PutUint32(buf[i*4:], px)
		}
		hash.Write(buf)
	}
	return fmt.Sprintf("%x", hash.Sum(nil))
}
