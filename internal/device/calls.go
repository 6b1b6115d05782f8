package device

import (
	"context"

	"github/chapool/go-coldwallet/internal/errs"
	"github/chapool/go-coldwallet/internal/protocol"
)

// Exchanger performs one request/response exchange with the device.
// *Invoker satisfies it.
type Exchanger interface {
	Invoke(ctx context.Context, req *protocol.Packet) (*protocol.Packet, error)
}

// Entropy sizes the device accepts.
const (
	EntropyBits128 = 128
	EntropyBits256 = 256
)

const entropyWithChecksum = 1

// GetRandomEntropy asks the secure element for bits of fresh entropy. The
// request always asks for a checksum; a reply without one, a checksum
// mismatch or a reply of the wrong size is a KindProtocol error.
func GetRandomEntropy(ctx context.Context, ex Exchanger, bits int) ([]byte, error) {
	const op = "device.entropy"

	if bits != EntropyBits128 && bits != EntropyBits256 {
		return nil, errs.Newf(errs.KindProtocol, op, "unsupported entropy size: %d bits", bits)
	}

	req := protocol.NewBuilder(protocol.MethodGetRandomEntropy).
		AddShort(protocol.TagEntropyType, uint16(bits)).
		AddByte(protocol.TagEntropyChecksum, entropyWithChecksum).
		Build()

	resp, err := ex.Invoke(ctx, req)
	if err != nil {
		return nil, err
	}

	pl, err := resp.Require(protocol.TagEntropy)
	if err != nil {
		return nil, err
	}
	entropy, err := pl.Bytes()
	if err != nil {
		return nil, err
	}
	if len(entropy) != bits/8 {
		return nil, errs.Newf(errs.KindProtocol, op, "expected %d bytes of entropy, got %d", bits/8, len(entropy))
	}

	sumPl, ok := resp.Payload(protocol.TagEntropyChecksum)
	if !ok {
		return nil, errs.New(errs.KindProtocol, op, "reply carries no entropy checksum")
	}
	sum, err := sumPl.Bytes()
	if err != nil {
		return nil, err
	}
	if err := protocol.VerifyChecksum(entropy, sum); err != nil {
		return nil, err
	}

	return entropy, nil
}

// VerifyMnemonic asks the device to check mnemonic against the seed it
// holds. A mismatch is reported by the device as KindDeviceRejected.
func VerifyMnemonic(ctx context.Context, ex Exchanger, mnemonic string) error {
	const op = "device.verify_mnemonic"

	if mnemonic == "" {
		return errs.New(errs.KindProtocol, op, "empty mnemonic")
	}

	req := protocol.NewBuilder(protocol.MethodVerifyMnemonic).
		AddText(protocol.TagMnemonic, mnemonic).
		Build()

	_, err := ex.Invoke(ctx, req)
	return err
}

// GetExtendedPublicKey fetches the Base58Check extended public key of the
// account at path (for example m/49'/0'/0') on the named curve.
func GetExtendedPublicKey(ctx context.Context, ex Exchanger, path string, curve string) (string, error) {
	const op = "device.xpub"

	if path == "" {
		return "", errs.New(errs.KindProtocol, op, "empty derivation path")
	}

	req := protocol.NewBuilder(protocol.MethodGetExtendedPublicKey).
		AddText(protocol.TagPath, path).
		AddText(protocol.TagCurve, curve).
		Build()

	resp, err := ex.Invoke(ctx, req)
	if err != nil {
		return "", err
	}

	pl, err := resp.Require(protocol.TagExtendedPublicKey)
	if err != nil {
		return "", err
	}
	xpub, err := pl.Text()
	if err != nil {
		return "", err
	}
	if xpub == "" {
		return "", errs.New(errs.KindProtocol, op, "device returned an empty extended public key")
	}
	return xpub, nil
}

// GetFirmwareVersion reads the secure element's firmware version string.
func GetFirmwareVersion(ctx context.Context, ex Exchanger) (string, error) {
	resp, err := ex.Invoke(ctx, protocol.NewBuilder(protocol.MethodGetFirmwareVersion).Build())
	if err != nil {
		return "", err
	}
	pl, err := resp.Require(protocol.TagFirmwareVersion)
	if err != nil {
		return "", err
	}
	return pl.Text()
}
