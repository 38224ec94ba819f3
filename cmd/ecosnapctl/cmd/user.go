package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ecosnap/ecosnap/internal/model"
	"github.com/ecosnap/ecosnap/internal/repository"
	"github.com/ecosnap/ecosnap/internal/service"
)

func UserCmd() *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}

	var demote bool
	promoteCmd := &cobra.Command{
		Use:   "promote <email>",
		Short: "Grant admin access to a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUsers(func(users *service.UserService) error {
				user, err := users.SetAdmin(args[0], !demote)
				if err != nil {
					return err
				}
				return printUser(cmd.OutOrStdout(), user)
			})
		},
	}
	promoteCmd.Flags().BoolVar(&demote, "demote", false, "revoke admin access instead")

	verifyCmd := &cobra.Command{
		Use:   "verify <email>",
		Short: "Mark a user's email as verified without a code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUsers(func(users *service.UserService) error {
				user, err := users.Verify(args[0])
				if err != nil {
					return err
				}
				return printUser(cmd.OutOrStdout(), user)
			})
		},
	}

	userCmd.AddCommand(promoteCmd, verifyCmd)
	return userCmd
}

func withUsers(fn func(users *service.UserService) error) error {
	conn, _, err := openDB()
	if err != nil {
		return err
	}
	defer conn.Close()

	return fn(service.NewUserService(repository.NewUserRepository(conn)))
}

func printUser(w io.Writer, user *model.User) error {
	_, err := fmt.Fprintf(w, "%s <%s> admin=%t verified=%t\n", user.Name, user.Email, user.IsAdmin, user.IsVerified)
	return err
}
