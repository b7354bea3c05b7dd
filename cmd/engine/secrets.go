package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"fintechjobs-engine/internal/secrets"

	"github.com/spf13/cobra"
)

func newSecretsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secrets",
		Short: "Manage the IMAP password in the OS keychain.",
	}

	setCmd := &cobra.Command{
		Use:   "set-imap [password]",
		Short: "Store the IMAP password for email.username@email.imap_host. Reads stdin without an argument.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}
			if strings.TrimSpace(e.Cfg.Email.Username) == "" || strings.TrimSpace(e.Cfg.Email.IMAPHost) == "" {
				return errors.New("set email.username and email.imap_host in config first")
			}

			var pw string
			if len(args) == 1 {
				pw = args[0]
			} else {
				if pw, err = readPassword(cmd.InOrStdin()); err != nil {
					return err
				}
			}

			account := secrets.IMAPKeyringAccount(e.Cfg)
			if err := secrets.SetIMAPPassword(account, pw); err != nil {
				return fmt.Errorf("store password: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "stored IMAP password for %s\n", account)
			return nil
		},
	}

	delCmd := &cobra.Command{
		Use:   "delete-imap",
		Short: "Remove the stored IMAP password.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}
			account := secrets.IMAPKeyringAccount(e.Cfg)
			if err := secrets.DeleteIMAPPassword(account); err != nil {
				return fmt.Errorf("delete password: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted IMAP password for %s\n", account)
			return nil
		},
	}

	cmd.AddCommand(setCmd, delCmd)
	return cmd
}

// readPassword takes the first line of r.
func readPassword(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	pw := strings.TrimRight(line, "\r\n")
	if strings.TrimSpace(pw) == "" {
		return "", errors.New("no password on stdin")
	}
	return pw, nil
}
