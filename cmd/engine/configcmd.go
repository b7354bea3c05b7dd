package main

import (
	"fmt"
	"path/filepath"

	"fintechjobs-engine/internal/config"

	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the configuration.",
	}

	var write bool
	checkCmd := &cobra.Command{
		Use:   "check [--write]",
		Short: "Print validation errors and warnings. --write saves the normalized file.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}
			normalized, vr := config.NormalizeAndValidate(e.Cfg)

			out := cmd.OutOrStdout()
			for _, w := range vr.Warnings {
				fmt.Fprintln(out, "warning:", w)
			}
			for _, msg := range vr.Errors {
				fmt.Fprintln(out, "error:", msg)
			}
			if !vr.OK() {
				return fmt.Errorf("%s: %d errors", e.CfgPath, len(vr.Errors))
			}
			if write {
				if err := config.SaveAtomic(e.CfgPath, normalized); err != nil {
					return fmt.Errorf("save: %w", err)
				}
				fmt.Fprintln(out, "saved", e.CfgPath)
			}
			fmt.Fprintf(out, "%s: ok (%d warnings)\n", e.CfgPath, len(vr.Warnings))
			return nil
		},
	}
	checkCmd.Flags().BoolVar(&write, "write", false, "rewrite the config file normalized (keeps a .bak)")

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print the config file in use.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}
			abs, err := filepath.Abs(e.CfgPath)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), abs)
			return nil
		},
	}

	cmd.AddCommand(checkCmd, pathCmd)
	return cmd
}
