package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Mukhsinh/manajemenresiko-sub007/store"
)

var indexesCmd = &cobra.Command{
	Use:   "indexes",
	Short: "Create the MongoDB indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer e.close()

		if err := e.store.EnsureIndexes(cmd.Context()); err != nil {
			return err
		}
		for _, idx := range store.Indexes {
			kind := "index"
			if idx.Unique {
				kind = "unique"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%-24s %-7s %v\n", idx.Collection, kind, idx.Keys)
		}
		return nil
	},
}
