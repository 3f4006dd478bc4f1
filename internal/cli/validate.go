package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andrew-d/drawbatch/internal/scene"
)

// NewValidateCmd creates the validate command, which checks scene files
// without replaying them.
func NewValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <scene.yaml>...",
		Short: "Validate scene files",
		Example: `  # Check every scene in a directory
  batchsim validate scenes/*.yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var errs []error
			for _, path := range args {
				sc, err := scene.Load(path)
				if err != nil {
					cmd.PrintErrf("%s: %v\n", path, err)
					errs = append(errs, err)
					continue
				}
				cmd.Printf("%s: ok (%s, %d pipelines)\n", path, sc.Name, len(sc.Pipelines))
			}
			if len(errs) > 0 {
				return fmt.Errorf("%d of %d scenes invalid: %w", len(errs), len(args), errors.Join(errs...))
			}
			return nil
		},
	}
}
