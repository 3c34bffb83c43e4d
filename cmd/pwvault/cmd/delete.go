package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *cli) newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <title>",
		Short: "Delete a stored password",
		Long: `Remove the entry stored under title. The master password is asked for
but not checked.`,
		Args: titleArgs(1, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := args[0]

			if _, err := c.prompt.masterPassword(cmd.Context()); err != nil {
				return err
			}

			if err := c.app.DeleteEntry(cmd.Context(), title); err != nil {
				return explain(title, err)
			}

			fmt.Fprintf(c.out, "Password for '%s' deleted successfully.\n", title)
			return nil
		},
	}
}
