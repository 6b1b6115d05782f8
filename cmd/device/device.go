package device

import (
	"github.com/spf13/cobra"
	"github/chapool/go-coldwallet/internal/util/command"
)

const (
	coinFlag    = "coin"
	accountFlag = "account"
	indexFlag   = "index"
	bitsFlag    = "bits"
)

func New() *cobra.Command {
	return command.NewSubcommandGroup("device",
		newVersion(),
		newEntropy(),
		newXPub(),
		newAddress(),
		newVerifyMnemonic(),
	)
}
