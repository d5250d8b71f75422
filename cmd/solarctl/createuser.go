package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	authdomain "github.com/smallbiznis/solarops/internal/auth/domain"
	"github.com/spf13/cobra"
)

type createUserFlags struct {
	email    string
	name     string
	password string
	staff    bool
}

func newCreateUserCmd() *cobra.Command {
	f := &createUserFlags{}
	cmd := &cobra.Command{
		Use:   "createuser",
		Short: "Create an account that can obtain API tokens",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCreateUser(cmd, f)
		},
	}
	cmd.Flags().StringVar(&f.email, "email", "", "Login email (required)")
	cmd.Flags().StringVar(&f.name, "name", "", "Display name (required)")
	cmd.Flags().StringVar(&f.password, "password", "", "Password; falls back to $SOLARCTL_PASSWORD")
	cmd.Flags().BoolVar(&f.staff, "staff", false, "Grant access to the admin views")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func runCreateUser(cmd *cobra.Command, f *createUserFlags) error {
	password := f.password
	if password == "" {
		password = os.Getenv("SOLARCTL_PASSWORD")
	}
	if strings.TrimSpace(password) == "" {
		return codeError(2, "--password or SOLARCTL_PASSWORD is required")
	}

	var svc authdomain.Service
	return withApp(serviceModules(), func(ctx context.Context) error {
		user, err := svc.CreateUser(ctx, authdomain.CreateUserRequest{
			Email:    f.email,
			Password: password,
			Name:     f.name,
			IsStaff:  f.staff,
		})
		if errors.Is(err, authdomain.ErrUserExists) {
			return codeError(2, "a user with email %q already exists", f.email)
		}
		if err != nil {
			return codeError(2, "create user: %s", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created user %d <%s> staff=%t\n", user.ID, user.Email, user.IsStaff)
		return nil
	}, &svc)
}
