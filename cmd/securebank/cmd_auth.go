package main

import (
	"fmt"

	"securebank/internal/models"
	"securebank/internal/validate"
	"securebank/internal/views"

	"github.com/spf13/cobra"
)

func (c *cli) loginCmd() *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if username == "" {
				if username, err = c.prompt(cmd, "Username: "); err != nil {
					return err
				}
			}
			if password == "" {
				if password, err = c.secret(cmd, "Password: "); err != nil {
					return err
				}
			}
			sess, err := c.store.Login(cmd.Context(), models.LoginRequest{Username: username, Password: password})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), views.SuccessStyle.Render(fmt.Sprintf("Signed in as %s (%s)", sess.User.Username, sess.User.Role)))
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "Username")
	cmd.Flags().StringVar(&password, "password", "", "Password (prompted when omitted)")
	return cmd
}

func (c *cli) registerCmd() *cobra.Command {
	var req models.RegisterRequest
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a new user; sign in afterwards with login",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fields := []struct {
				dst   *string
				label string
			}{
				{&req.Username, "Username: "},
				{&req.Email, "Email: "},
				{&req.FullName, "Full name: "},
			}
			for _, f := range fields {
				if *f.dst != "" {
					continue
				}
				v, err := c.prompt(cmd, f.label)
				if err != nil {
					return err
				}
				*f.dst = v
			}
			if req.Password == "" {
				pw, err := c.secret(cmd, "Password: ")
				if err != nil {
					return err
				}
				req.Password = pw
			}

			score := validate.PasswordStrength(req.Password)
			style := views.ErrorStyle
			switch score.Strength {
			case validate.StrengthMedium:
				style = views.WarningStyle
			case validate.StrengthStrong:
				style = views.SuccessStyle
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Password strength:", style.Render(fmt.Sprintf("%s (%d/5)", score.Strength, score.Score)))

			user, err := c.store.Register(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), views.SuccessStyle.Render(fmt.Sprintf("Registered %s. Sign in with `securebank login`.", user.Username)))
			return nil
		},
	}
	cmd.Flags().StringVarP(&req.Username, "username", "u", "", "Username (3-50 characters)")
	cmd.Flags().StringVar(&req.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&req.FullName, "full-name", "", "Full name")
	cmd.Flags().StringVar(&req.Phone, "phone", "", "Ten-digit mobile number (optional)")
	cmd.Flags().StringVar(&req.Password, "password", "", "Password (prompted when omitted)")
	return cmd
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.store.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return nil
		},
	}
}

func (c *cli) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user as the server sees it",
		Args:  cobra.NoArgs,
		RunE: c.private(func(cmd *cobra.Command, args []string) error {
			user, err := c.auth.Me(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s)\n", user.Username, user.Role)
			if user.FullName != "" {
				fmt.Fprintln(out, user.FullName)
			}
			if user.Email != "" {
				fmt.Fprintln(out, user.Email)
			}
			return nil
		}),
	}
}
