package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/askmydocs/askdocs/internal/log"
)

var (
	authEmail     string
	passwordStdin bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and remember the session",
	Long: `Sign in with email and password. The session token is stored in
~/.askdocs/session.db and reused by later commands and the interactive UI.

The password is read without echo from a terminal, or as one line from
stdin when piped.`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account",
	Args:  cobra.NoArgs,
	RunE:  runRegister,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	Args:  cobra.NoArgs,
	RunE:  runWhoami,
}

func init() {
	loginCmd.Flags().StringVar(&authEmail, "email", "", "Account email (prompted when omitted)")
	loginCmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password as one line from stdin")
	registerCmd.Flags().StringVar(&authEmail, "email", "", "Account email (prompted when omitted)")
}

func runLogin(cmd *cobra.Command, args []string) error {
	rt, err := bootstrap()
	if err != nil {
		return err
	}
	defer rt.Close()

	p := newPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
	email := authEmail
	if email == "" {
		if email, err = p.line("Email"); err != nil {
			return err
		}
	}
	password, err := p.password("Password")
	if err != nil {
		return err
	}

	token, err := rt.client.Login(cmd.Context(), email, password)
	if err != nil {
		return rt.fail(log.EventLoginFailed, err)
	}
	if err := rt.store.SetToken(token); err != nil {
		return err
	}
	rt.logger.Event(log.EventLoginSucceeded, zap.String("email", email))

	fmt.Fprintf(cmd.OutOrStdout(), "%s Logged in as %s\n", successLabel.Sprint("✓"), email)
	return nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	rt, err := bootstrap()
	if err != nil {
		return err
	}
	defer rt.Close()

	p := newPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
	email := authEmail
	if email == "" {
		if email, err = p.line("Email"); err != nil {
			return err
		}
	}
	password, err := p.password("Password")
	if err != nil {
		return err
	}
	confirm, err := p.password("Confirm password")
	if err != nil {
		return err
	}
	if password != confirm {
		return errors.New("Passwords do not match")
	}

	if err := rt.client.Register(cmd.Context(), email, password); err != nil {
		return rt.fail(log.EventRegisterFailed, err)
	}
	rt.logger.Event(log.EventRegisterSucceeded, zap.String("email", email))

	fmt.Fprintf(cmd.OutOrStdout(), "%s Registration successful! Run: askdocs login --email %s\n",
		successLabel.Sprint("✓"), email)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	rt, err := bootstrap()
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := rt.store.Clear(); err != nil {
		return err
	}
	rt.logger.Event(log.EventLoggedOut)
	fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	rt, err := bootstrap()
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := rt.requireAuth(); err != nil {
		return err
	}
	u, err := rt.client.Me(cmd.Context())
	if err != nil {
		return rt.fail(log.EventProfileLoadFailed, err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), u.Email)
	return nil
}
