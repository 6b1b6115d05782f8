package command

import (
	"encoding/json"
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github/chapool/go-coldwallet/internal/config"
)

// ConfigFlag names the persistent flag holding an optional TOML config file.
const ConfigFlag = "config"

// LoadConfig returns the env config overlaid with the file named by the
// --config flag, if set.
func LoadConfig(cmd *cobra.Command) (config.Server, error) {
	path, err := cmd.Flags().GetString(ConfigFlag)
	if err != nil {
		// the flag is only registered on the root command
		path = ""
	}

	return config.Load(path)
}

// PrintJSON writes v as indented JSON followed by a newline.
func PrintJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return errors.Wrap(err, "failed to encode output")
	}
	return nil
}
