// Package protocol owns the packet model and its binary codec for the
// secure-element channel.
//
// Ownership boundary:
// - packet/payload model and builder
// - wire encode/decode
// - method and tag catalog
// - integrity checksum helpers
package protocol

// Method codes.
const (
	MethodGetFirmwareVersion   uint16 = 0x0101
	MethodGetRandomEntropy     uint16 = 0x0201
	MethodVerifyMnemonic       uint16 = 0x0202
	MethodGetExtendedPublicKey uint16 = 0x0301
)

// Payload tags.
const (
	TagStatus        uint16 = 0x0001
	TagStatusMessage uint16 = 0x0002
	// TagSequence correlates a reply with its request. The device echoes it.
	TagSequence uint16 = 0x0003

	TagFirmwareVersion uint16 = 0x0101

	TagEntropyType     uint16 = 0x0201
	TagEntropyChecksum uint16 = 0x0202
	TagEntropy         uint16 = 0x0203
	TagMnemonic        uint16 = 0x0204

	TagPath              uint16 = 0x0301
	TagCurve             uint16 = 0x0302
	TagExtendedPublicKey uint16 = 0x0303
)

// StatusOK is the TagStatus value of a successful reply.
const StatusOK = 0
