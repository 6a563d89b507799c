package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meghalaya-hospital/registry-admin/internal/platform/registry"
)

func authCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the staff login session",
	}

	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and persist the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")

			e, err := newEnv()
			if err != nil {
				return err
			}
			res, err := e.client.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			if err := e.store.Login(res.AccessToken, res.User); err != nil {
				return err
			}
			fmt.Printf("Logged in as %s <%s>, network %s\n", res.User.Name, res.User.Email, res.User.NetworkID)
			return nil
		},
	}
	loginCmd.Flags().String("email", "", "Staff email")
	loginCmd.Flags().String("password", "", "Staff password")
	_ = loginCmd.MarkFlagRequired("email")
	_ = loginCmd.MarkFlagRequired("password")
	cmd.AddCommand(loginCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "logout",
		Short: "Clear the persisted session",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			if err := e.store.Logout(); err != nil {
				return err
			}
			fmt.Println("Logged out.")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "whoami",
		Short: "Show the current session identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			if err := requireSession(e); err != nil {
				return err
			}
			cur := e.store.Current()
			fmt.Printf("User:    %s <%s>\n", cur.User.Name, cur.User.Email)
			fmt.Printf("Network: %s\n", cur.NetworkID)

			// Best effort: opaque tokens carry no claims.
			if claims, err := e.store.Claims(); err == nil {
				if sub, ok := claims["sub"].(string); ok {
					fmt.Printf("Subject: %s\n", sub)
				}
				if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
					fmt.Printf("Expires: %s\n", exp.Format("2006-01-02 15:04:05"))
				}
			}
			return nil
		},
	})

	registerCmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new staff account",
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")
			avatar, _ := cmd.Flags().GetString("avatar")

			e, err := newEnv()
			if err != nil {
				return err
			}
			form := registry.RegisterForm{Name: name, Email: email, Password: password}
			if err := e.client.Register(cmd.Context(), form, avatar); err != nil {
				return err
			}
			fmt.Printf("Registered %s. Log in to start a session.\n", email)
			return nil
		},
	}
	registerCmd.Flags().String("name", "", "Full name")
	registerCmd.Flags().String("email", "", "Email")
	registerCmd.Flags().String("password", "", "Password")
	registerCmd.Flags().String("avatar", "", "Optional avatar image file")
	_ = registerCmd.MarkFlagRequired("name")
	_ = registerCmd.MarkFlagRequired("email")
	_ = registerCmd.MarkFlagRequired("password")
	cmd.AddCommand(registerCmd)

	return cmd
}
