package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/meghalaya-hospital/registry-admin/internal/platform/registry"
)

func userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Browse staff accounts",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List staff accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			take, _ := cmd.Flags().GetInt("take")

			e, err := newEnv()
			if err != nil {
				return err
			}
			if err := requireSession(e); err != nil {
				return err
			}
			users, err := e.client.ListUsers(cmd.Context(), take)
			if err != nil {
				return err
			}
			printUserTable(cmd.OutOrStdout(), users)
			return nil
		},
	}
	listCmd.Flags().Int("take", 10, "Maximum number of accounts to fetch")
	cmd.AddCommand(listCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "get <id>",
		Short: "Show one staff profile in full",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			if err := requireSession(e); err != nil {
				return err
			}
			u, err := e.client.GetUser(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out, err := yaml.Marshal(u)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), string(out))
			return nil
		},
	})

	return cmd
}

func printUserTable(w io.Writer, users []registry.StaffUser) {
	if len(users) == 0 {
		fmt.Fprintln(w, "No staff accounts found.")
		return
	}
	fmt.Fprintf(w, "%-36s %-24s %-28s %-12s %s\n", "ID", "NAME", "EMAIL", "PHONE", "ROLE")
	for _, u := range users {
		fmt.Fprintf(w, "%-36s %-24s %-28s %-12s %s\n",
			u.ID, truncate(u.DisplayName(), 24), u.Email, u.Phone, u.Role)
	}
	fmt.Fprintf(w, "%d account(s)\n", len(users))
}
