package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *cli) newRetrieveCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "retrieve <title>",
		Short: "Decrypt and print a stored password",
		Long: `Decrypt the password stored under title with the master password and
print it together with the stored salt and ciphertext (base64).`,
		Args: titleArgs(1, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(output); err != nil {
				return err
			}

			master, err := c.prompt.masterPassword(cmd.Context())
			if err != nil {
				return err
			}

			r, err := c.app.RetrieveEntry(cmd.Context(), args[0], master)
			if err != nil {
				return explain(args[0], err)
			}

			if output != formatText {
				return printStructured(c.out, output, r)
			}
			fmt.Fprintf(c.out, "Password for '%s': %s\n", r.Title, r.Secret)
			fmt.Fprintf(c.out, "Salt: %s\n", r.Salt)
			fmt.Fprintf(c.out, "Encrypted password: %s\n", r.Ciphertext)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", formatText, "output format (text, json, yaml)")
	return cmd
}
