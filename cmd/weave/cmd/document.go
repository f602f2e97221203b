package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/go-drift/weave/pkg/core"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
)

// readDocument loads a description from path, or stdin when path is "-".
// An explicit format wins over the file extension; JSON is the fallback.
func readDocument(cmd *cobra.Command, path, format string) (core.Description, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		if path, err = homedir.Expand(path); err != nil {
			return core.Description{}, fmt.Errorf("expand path: %w", err)
		}
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return core.Description{}, fmt.Errorf("read document: %w", err)
	}

	f := core.Format(format)
	if f == "" {
		var ok bool
		if f, ok = core.FormatFromPath(path); !ok {
			f = core.FormatJSON
		}
	}
	desc, err := core.DecodeDocument(data, f)
	if err != nil {
		return core.Description{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return desc, nil
}

func addDocumentFlags(cmd *cobra.Command, format *string) {
	cmd.Flags().StringVarP(format, "format", "f", "", "document format: json, yaml or toml (default from extension)")
}
