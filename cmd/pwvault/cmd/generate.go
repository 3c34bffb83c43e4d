package cmd

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"pwvault/internal/crypto"
)

type generateOptions struct {
	length  int
	words   int
	symbols bool
}

func (c *cli) newGenerateCmd() *cobra.Command {
	var opts generateOptions

	cmd := &cobra.Command{
		Use:   "generate <title> [secret]",
		Short: "Encrypt and store a password under a title",
		Long: `Encrypt a password with the master password and store it under title.
An existing entry with the same title is replaced.

Instead of passing the secret, --length generates a random password and
--words a diceware passphrase; the generated secret is printed once.`,
		Example: `  pwvault generate email 'p@ssw0rd!'
  pwvault generate bank --length 24
  pwvault generate disk --words 6`,
		Args: titleArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := args[0]

			secret, generated, err := resolveSecret(args[1:], opts)
			if err != nil {
				return err
			}

			master, err := c.prompt.masterPassword(cmd.Context())
			if err != nil {
				return err
			}

			if err := c.app.StoreEntry(cmd.Context(), title, secret, master); err != nil {
				return err
			}

			color.New(color.FgGreen).Fprintf(c.out, "Password for '%s' stored successfully.\n", title)
			if generated {
				fmt.Fprintf(c.out, "Generated password: %s\n", secret)
			} else if strength := crypto.CheckPasswordStrength(secret); strength == crypto.PasswordWeak {
				color.New(color.FgYellow).Fprintf(c.errOut,
					"Warning: the password for '%s' (%s) is %s; consider --length 20.\n",
					title, crypto.MaskSensitiveData(secret), strength)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&opts.length, "length", "l", 0, "generate a random password of this length")
	cmd.Flags().IntVarP(&opts.words, "words", "w", 0, "generate a diceware passphrase of this many words")
	cmd.Flags().BoolVar(&opts.symbols, "symbols", true, "include symbols in a generated password")

	return cmd
}

// resolveSecret возвращает секрет для сохранения и признак того, что он сгенерирован.
func resolveSecret(given []string, opts generateOptions) (string, bool, error) {
	wantGenerated := opts.length > 0 || opts.words > 0

	switch {
	case opts.length < 0 || opts.words < 0:
		return "", false, usagef("--length and --words must be positive")
	case opts.length > 0 && opts.words > 0:
		return "", false, usagef("--length and --words cannot be combined")
	case len(given) == 1 && wantGenerated:
		return "", false, usagef("pass either a secret or --length/--words, not both")
	case len(given) == 1:
		return given[0], false, nil
	case !wantGenerated:
		return "", false, usagef("a secret or --length/--words is required")
	}

	var (
		secret string
		err    error
	)
	if opts.words > 0 {
		secret, err = crypto.GeneratePassphrase(opts.words)
	} else {
		secret, err = crypto.GenerateSecurePassword(opts.length, opts.symbols)
	}
	if errors.Is(err, crypto.ErrInvalidLength) {
		return "", false, &usageError{err: err}
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to generate secret: %w", err)
	}
	return secret, true, nil
}
