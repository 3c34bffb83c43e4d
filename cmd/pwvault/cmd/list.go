package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

type titlesOutput struct {
	Titles []string `json:"titles" yaml:"titles"`
}

func (c *cli) newListCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the titles of stored passwords",
		Long: `List every stored title. The master password is asked for but nothing
is decrypted.`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(output); err != nil {
				return err
			}

			if _, err := c.prompt.masterPassword(cmd.Context()); err != nil {
				return err
			}

			titles, err := c.app.ListTitles(cmd.Context())
			if err != nil {
				return err
			}

			if output != formatText {
				return printStructured(c.out, output, titlesOutput{Titles: titles})
			}
			fmt.Fprintln(c.out, "Stored passwords:")
			for _, title := range titles {
				fmt.Fprintf(c.out, "- %s\n", title)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", formatText, "output format (text, json, yaml)")
	return cmd
}
