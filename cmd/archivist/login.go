package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mmcdole/archivist/internal/config"
	"github.com/mmcdole/archivist/internal/domain"
)

func newLoginCmd(configDir *string) *cobra.Command {
	var server, login string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the token",
		Long:  "Sign in to the archive server and store the token. Example:\n  archivist login --server http://localhost:8080 --user ivanova",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(*configDir)
			if err != nil {
				return err
			}
			defer a.Close()

			if server != "" {
				a.useServer(server)
			}
			if err := a.requireServer(); err != nil {
				return err
			}

			in := bufio.NewReader(cmd.InOrStdin())
			out := cmd.OutOrStdout()
			if login == "" {
				if login, err = prompt(in, out, "Login: "); err != nil {
					return err
				}
			}
			password, err := promptPassword(cmd.InOrStdin(), in, out, "Password: ")
			if err != nil {
				return err
			}

			token, err := signIn(cmd.Context(), a, domain.SignInInput{Login: login, Password: password})
			if err != nil {
				return err
			}

			a.cfg.Server.Token = token
			if err := config.SaveConfigTo(a.dir, a.cfg); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			fmt.Fprintf(out, "✓ Signed in as %s\n", login)
			return nil
		},
	}
	cmd.Flags().StringVar(&server, "server", "", "archive server URL (saved to config)")
	cmd.Flags().StringVar(&login, "user", "", "login name")
	return cmd
}

func signIn(ctx context.Context, a *app, in domain.SignInInput) (string, error) {
	detach := attachSpinner(a.counter, "Signing in...")
	defer detach()

	res, err := a.client.SignIn(ctx, in)
	if err != nil {
		a.logger.Error("sign-in failed", "login", in.Login, "error", err)
		return "", fmt.Errorf("sign-in failed: %w", err)
	}
	return res.Token, nil
}

func newSignupCmd(configDir *string) *cobra.Command {
	var server, login, fullName string

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account on the archive server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(*configDir)
			if err != nil {
				return err
			}
			defer a.Close()

			if server != "" {
				a.useServer(server)
			}
			if err := a.requireServer(); err != nil {
				return err
			}

			in := bufio.NewReader(cmd.InOrStdin())
			out := cmd.OutOrStdout()
			if login == "" {
				if login, err = prompt(in, out, "Login: "); err != nil {
					return err
				}
			}
			password, err := promptPassword(cmd.InOrStdin(), in, out, "Password: ")
			if err != nil {
				return err
			}

			input := domain.SignUpInput{Login: login, Password: password}
			if fullName != "" {
				input.FullName = &fullName
			}

			detach := attachSpinner(a.counter, "Creating account...")
			id, err := a.client.SignUp(cmd.Context(), input)
			detach()
			if err != nil {
				return fmt.Errorf("sign-up failed: %w", err)
			}

			fmt.Fprintf(out, "✓ Created user %s (id %d)\n", login, id)
			return nil
		},
	}
	cmd.Flags().StringVar(&server, "server", "", "archive server URL")
	cmd.Flags().StringVar(&login, "user", "", "login name")
	cmd.Flags().StringVar(&fullName, "full-name", "", "display name")
	return cmd
}

func newLogoutCmd(configDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.ClearToken(*configDir); err != nil {
				return fmt.Errorf("failed to clear token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "✓ Signed out")
			return nil
		},
	}
}

func prompt(in *bufio.Reader, out io.Writer, label string) (string, error) {
	fmt.Fprint(out, label)
	line, err := in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// promptPassword reads without echo when src is a terminal and falls back
// to a plain line otherwise (pipes, tests)
func promptPassword(src io.Reader, in *bufio.Reader, out io.Writer, label string) (string, error) {
	f, ok := src.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return prompt(in, out, label)
	}
	fd := int(f.Fd())

	fmt.Fprint(out, label)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(b), nil
}
