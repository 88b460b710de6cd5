package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/ternarybob/snapdiff/internal/docs"
)

// NewSaveDocCommand builds the save-doc subcommand.
func NewSaveDocCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "save-doc",
		Short: "Write the OpenAPI document to a file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := docs.Save(output); err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "OpenAPI document written to %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "openapi.json", "Output file path")
	return cmd
}
