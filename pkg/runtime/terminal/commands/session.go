package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/de-tools/ems-atlas/pkg/models/domain"
	"github.com/spf13/cobra"
)

type LoginCmd struct {
	deps     *Deps
	account  string
	password string
}

func NewLoginCmd(deps *Deps) *cobra.Command {
	lc := &LoginCmd{deps: deps}
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the reporting backend",
		RunE:  lc.run,
	}

	cmd.Flags().StringVar(&lc.account, "account", "", "User name or email")
	cmd.Flags().StringVar(&lc.password, "password", "", "Password")

	_ = cmd.MarkFlagRequired("account")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func (lc *LoginCmd) run(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	resp, err := lc.deps.Backend.Login(ctx, lc.account, lc.password)
	if err != nil {
		return lc.deps.describe(err)
	}

	err = lc.deps.Sessions.Login(ctx, domain.Session{
		UserName:    resp.Name,
		DisplayName: resp.DisplayName,
		UserUUID:    resp.UUID,
		Token:       resp.Token,
	})
	if err != nil {
		return err
	}

	name := resp.DisplayName
	if name == "" {
		name = resp.Name
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", name)
	return err
}

func NewLogoutCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := deps.Sessions.Logout(cmd.Context()); err != nil {
				return err
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return err
		},
	}
}
