package address

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tyler-smith/go-bip32"
	"github/chapool/go-coldwallet/internal/errs"
)

// ParsePath parses a BIP32 path string into child indices.
// Example: "m/49'/2'/0'" -> [2147483697, 2147483650, 2147483648]
// The leading "m" is optional so relative paths like "0/5" parse too.
func ParsePath(path string) ([]uint32, error) {
	const op = "address.parse_path"

	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, errs.New(errs.KindInvalidKey, op, "empty path")
	}
	if trimmed == "m" {
		return []uint32{}, nil
	}
	trimmed = strings.TrimPrefix(trimmed, "m/")

	parts := strings.Split(trimmed, "/")
	indices := make([]uint32, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			return nil, errs.Newf(errs.KindInvalidKey, op, "invalid path %q: empty segment", path)
		}

		hardened := false
		if strings.HasSuffix(part, "'") || strings.HasSuffix(part, "h") {
			hardened = true
			part = part[:len(part)-1]
		}

		index, err := strconv.ParseUint(part, 10, 32)
		if err != nil || index >= uint64(bip32.FirstHardenedChild) {
			return nil, errs.Newf(errs.KindInvalidKey, op, "invalid path segment %q", part)
		}

		// Add hardened flag (0x80000000)
		if hardened {
			index += uint64(bip32.FirstHardenedChild)
		}

		indices = append(indices, uint32(index))
	}

	return indices, nil
}

// ParseRelativePath parses "change/index" below an account key.
func ParseRelativePath(path string) (*Path, error) {
	indices, err := ParsePath(path)
	if err != nil {
		return nil, err
	}
	if len(indices) != 2 {
		return nil, errs.Newf(errs.KindInvalidKey, "address.parse_path", "expected change/index, got %q", path)
	}
	p := &Path{Change: indices[0], Index: indices[1]}
	if err := p.validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p Path) validate() error {
	if p.Change >= bip32.FirstHardenedChild || p.Index >= bip32.FirstHardenedChild {
		return errs.Newf(errs.KindInvalidKey, "address.path", "hardened index in %s cannot be derived from a public key", fmt.Sprintf("%d/%d", p.Change, p.Index))
	}
	return nil
}
