package protocol

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"

	"github/chapool/go-coldwallet/internal/errs"
)

// ChecksumLen is the byte length of an integrity checksum.
const ChecksumLen = 4

// Checksum returns the integrity checksum of data: the first four bytes of
// its SHA-256 digest.
func Checksum(data []byte) []byte {
	sum := sha256.Sum256(data)
	out := make([]byte, ChecksumLen)
	copy(out, sum[:ChecksumLen])
	return out
}

// VerifyChecksum recomputes the checksum of value and compares it with sum.
func VerifyChecksum(value []byte, sum []byte) error {
	expected := Checksum(value)
	if !bytes.Equal(expected, sum) {
		return errs.Newf(errs.KindProtocol, "checksum", "checksum mismatch: got %s want %s",
			hex.EncodeToString(sum), hex.EncodeToString(expected))
	}
	return nil
}
