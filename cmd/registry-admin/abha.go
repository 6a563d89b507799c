package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/meghalaya-hospital/registry-admin/internal/platform/registry"
)

func abhaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "abha",
		Short: "Verify or generate ABHA national health IDs",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "verify <abha>",
		Short: "Check an ABHA number against the verification service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			status, err := e.client.VerifyABHA(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ABHA %s: %s\n", args[0], status)
			return nil
		},
	})

	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Request a new ABHA account from a request file",
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")

			e, err := newEnv()
			if err != nil {
				return err
			}
			if err := requireSession(e); err != nil {
				return err
			}
			raw, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read request: %w", err)
			}
			var req registry.GenerateABHARequest
			if err := yaml.Unmarshal(raw, &req); err != nil {
				return fmt.Errorf("decode request %s: %w", file, err)
			}
			acct, err := e.client.GenerateABHA(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ABHA %s (%s): %s\n", acct.ABHANumber, acct.HealthID, acct.Status)
			return nil
		},
	}
	generateCmd.Flags().StringP("file", "f", "", "Request file (YAML or JSON)")
	_ = generateCmd.MarkFlagRequired("file")
	cmd.AddCommand(generateCmd)

	return cmd
}
