package main

import (
	"github.com/spf13/cobra"

	"github.com/amirhosseinghanipour/gestproj/internal/application/ports"
	"github.com/amirhosseinghanipour/gestproj/internal/domain"
	"github.com/amirhosseinghanipour/gestproj/internal/infrastructure/http/handlers"
)

func newUserCmd(get func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Create and list users",
	}
	cmd.AddCommand(newUserCreateCmd(get), newUserListCmd(get))
	return cmd
}

func newUserCreateCmd(get func() *app) *cobra.Command {
	var nom, prenom, email, password, role string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an active user",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			r, err := domain.ParseRole(role)
			if err != nil {
				return err
			}
			u, err := a.users.CreateUser(cmd.Context(), ports.CreateUserInput{
				Nom:      nom,
				Prenom:   prenom,
				Email:    handlers.SanitizeEmail(email),
				Password: password,
				Role:     r,
			})
			if err != nil {
				return err
			}
			a.emit(cmd, ports.EventUserCreated, u.ID, map[string]any{"email": u.Email, "role": u.Role.String()})
			return a.print(handlers.NewUserResponse(u))
		},
	}
	f := cmd.Flags()
	f.StringVar(&nom, "nom", "", "last name")
	f.StringVar(&prenom, "prenom", "", "first name")
	f.StringVar(&email, "email", "", "email (unique)")
	f.StringVar(&password, "password", "", "password, at least 8 characters")
	f.StringVar(&role, "role", string(domain.RoleEmploye), "ADMINISTRATEUR, GESTIONNAIRE or EMPLOYE")
	for _, name := range []string{"nom", "prenom", "email", "password"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func newUserListCmd(get func() *app) *cobra.Command {
	var offset, limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users ordered by id",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			users, err := a.users.ListUsers(cmd.Context(), offset, limit)
			if err != nil {
				return err
			}
			items := make([]handlers.UserResponse, 0, len(users))
			for _, u := range users {
				items = append(items, handlers.NewUserResponse(u))
			}
			return a.print(map[string]any{"users": items, "total": len(items)})
		},
	}
	cmd.Flags().IntVar(&offset, "offset", 0, "rows to skip")
	cmd.Flags().IntVar(&limit, "limit", 100, "rows to return")
	return cmd
}
