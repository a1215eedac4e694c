package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"weightguard/internal/model"
)

func newCheckCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "check <product-id>",
		Short: "Check a single product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid product id %q", args[0])
			}

			ctx, cancel := c.context()
			defer cancel()
			app, err := c.load(ctx)
			if err != nil {
				return err
			}

			result, err := app.Checker.Check(ctx, id)
			if err != nil {
				return err
			}
			return printYAML(cmd.OutOrStdout(), result)
		},
	}
}

func newReanalyzeCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "reanalyze",
		Short: "Re-check every product in the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := c.context()
			defer cancel()
			app, err := c.load(ctx)
			if err != nil {
				return err
			}

			result, err := app.Reanalysis.Run(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reanalysis complete: %d product(s) updated out of %d.\n",
				result.Changed, result.Processed)
			return nil
		},
	}
}

func newExportCmd(c *cli) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export products with problems as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := c.context()
			defer cancel()
			app, err := c.load(ctx)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create %s failed: %w", output, err)
				}
				defer f.Close()
				w = f
			}

			n, err := app.Exporter.Export(ctx, w)
			if err != nil {
				return err
			}
			if output != "" && output != "-" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d product(s) to %s\n", n, output)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	return cmd
}

func newDigestCmd(c *cli) *cobra.Command {
	var frequency string
	cmd := &cobra.Command{
		Use:   "digest",
		Short: "Send the digest email now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			freq := model.Frequency(frequency)
			if freq != "" && !freq.Valid() {
				return fmt.Errorf("invalid frequency %q (daily, weekly, monthly, none)", frequency)
			}

			ctx, cancel := c.context()
			defer cancel()
			app, err := c.load(ctx)
			if err != nil {
				return err
			}

			result, err := app.Digest.Send(ctx, freq)
			if err != nil {
				return err
			}
			return printYAML(cmd.OutOrStdout(), result)
		},
	}
	cmd.Flags().StringVarP(&frequency, "frequency", "f", "", "Digest period (default: configured frequency)")
	return cmd
}

func newSettingsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Inspect settings",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the current settings as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := c.context()
			defer cancel()
			app, err := c.load(ctx)
			if err != nil {
				return err
			}

			settings, err := app.Settings.Load(ctx)
			if err != nil {
				return err
			}
			return printYAML(cmd.OutOrStdout(), settings)
		},
	})
	return cmd
}

var errPurgeNotConfirmed = errors.New("purge removes every alert record and plugin option; re-run with --yes to confirm")

func newPurgeCmd(c *cli) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Remove every alert record and plugin option",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errPurgeNotConfirmed
			}

			ctx, cancel := c.context()
			defer cancel()
			app, err := c.load(ctx)
			if err != nil {
				return err
			}

			result, err := app.Purge.Purge(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d alert record(s) and %d option(s).\n", result.Statuses, result.Options)
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm the purge")
	return cmd
}
