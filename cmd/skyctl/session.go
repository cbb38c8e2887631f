package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/cuemby/skyconsole/pkg/health"
	"github.com/cuemby/skyconsole/pkg/metrics"
	"github.com/cuemby/skyconsole/pkg/types"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// Environment commands
var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Show or switch the backend environment",
}

var envListCmd = public(&cobra.Command{
	Use:   "list",
	Short: "List selectable environments",
	RunE: func(cmd *cobra.Command, args []string) error {
		current := app.session.Environment()
		rows := make([][]string, 0, len(types.Environments))
		for _, env := range app.session.Environments() {
			marker := ""
			if env.Value == current {
				marker = "*"
			}
			rows = append(rows, []string{marker, string(env.Value), env.Label})
		}
		return render(cmd, app.session.Environments(), []string{"", "ENV", "NAME"}, rows)
	},
}, "/env")

var envUseCmd = public(&cobra.Command{
	Use:   "use ENV",
	Short: "Switch the backend environment",
	Long: `Switch the backend environment sent with every call.

The current login is kept. The backend of the new environment decides
whether the token is still accepted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.session.ChangeEnvironment(types.Environment(args[0])); err != nil {
			return err
		}
		success(cmd, "Environment set to %s", args[0])
		return nil
	},
}, "/env")

func init() {
	envCmd.AddCommand(envListCmd)
	envCmd.AddCommand(envUseCmd)
	rootCmd.AddCommand(envCmd)
}

// Session commands
var loginCmd = public(&cobra.Command{
	Use:   "login",
	Short: "Log in to the SkyTask backend",
	Long: `Log in with a username and password.

The password is read from --password, then the SKYCTL_PASSWORD environment
variable, then prompted for when stdin is a terminal.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		username, _ := cmd.Flags().GetString("username")
		tenant, _ := cmd.Flags().GetString("tenant")
		password, err := readPassword(cmd)
		if err != nil {
			return err
		}

		resp, err := app.session.Login(cmd.Context(), types.LoginRequest{
			Username:   username,
			Password:   password,
			TenantCode: tenant,
		})
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}

		success(cmd, "Logged in as %s (%s, %s)", resp.Username, app.session.TenantName(), app.session.Environment())
		if redirect, _ := cmd.Flags().GetString("redirect"); redirect != "" {
			fmt.Fprintln(cmd.OutOrStdout(), styles.Muted.Render("Continue with "+redirect))
		}
		return nil
	},
}, "/login")

var logoutCmd = public(&cobra.Command{
	Use:   "logout",
	Short: "Log out and forget the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		app.session.Logout(cmd.Context())
		success(cmd, "Logged out")
		return nil
	},
}, "/logout")

var whoamiCmd = protected(&cobra.Command{
	Use:   "whoami",
	Short: "Show the logged in profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		if fetch, _ := cmd.Flags().GetBool("fetch"); fetch {
			if _, err := app.session.FetchProfile(cmd.Context()); err != nil {
				return fmt.Errorf("failed to fetch profile: %w", err)
			}
		}

		s := app.session.Snapshot()
		p := s.Profile
		rows := [][]string{
			{"Username", p.Username},
			{"Display name", p.DisplayName},
			{"Tenant", fmt.Sprintf("%s (%s)", p.TenantName, p.TenantCode)},
			{"Environment", string(s.Environment)},
			{"Roles", strings.Join(p.Roles, ", ")},
			{"Permissions", strings.Join(p.Permissions, ", ")},
		}
		if p.UserID != 0 {
			rows = append([][]string{{"User ID", fmt.Sprint(p.UserID)}}, rows...)
		}
		return render(cmd, p, []string{"FIELD", "VALUE"}, rows)
	},
}, "/profile")

var refreshCmd = public(&cobra.Command{
	Use:   "refresh",
	Short: "Renew the access token with the stored refresh token",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := app.session.Refresh(cmd.Context()); err != nil {
			return fmt.Errorf("refresh failed: %w", err)
		}
		success(cmd, "Token refreshed")
		return nil
	},
}, "/refresh")

var statusCmd = public(&cobra.Command{
	Use:   "status",
	Short: "Check the session store, the backend and the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		retries, _ := cmd.Flags().GetInt("retries")
		checkers, err := health.ForServer(app.cfg.Server, app.cfg.Timeout, app.tlsConfig)
		if err != nil {
			return err
		}
		probe := health.Probe(cmd.Context(), health.Config{Interval: time.Second, Retries: retries}, checkers...)
		metrics.UpdateComponent(metrics.ComponentGateway, probe.Healthy, probe.Message)

		if app.session.IsAuthenticated() {
			metrics.UpdateComponent(metrics.ComponentSession, true, "logged in as "+app.session.Snapshot().Profile.Username)
		} else {
			metrics.UpdateComponent(metrics.ComponentSession, false, "not logged in")
		}

		report := metrics.GetHealth()
		readiness := metrics.GetReadiness()
		rows := [][]string{}
		for _, name := range []string{metrics.ComponentStore, metrics.ComponentGateway, metrics.ComponentSession} {
			rows = append(rows, []string{name, report.Components[name]})
		}
		if err := render(cmd, report, []string{"COMPONENT", "STATE"}, rows); err != nil {
			return err
		}
		if readiness.Status != "ready" {
			return fmt.Errorf("console not ready: %s", readiness.Message)
		}
		return nil
	},
}, "/status")

func init() {
	loginCmd.Flags().StringP("username", "u", "", "Username")
	loginCmd.Flags().StringP("password", "p", "", "Password")
	loginCmd.Flags().String("tenant", "", "Tenant code")
	loginCmd.Flags().String("redirect", "", "Route to continue with after login")
	_ = loginCmd.MarkFlagRequired("username")

	statusCmd.Flags().Int("retries", 1, "Attempts before the backend is reported unreachable")

	whoamiCmd.Flags().Bool("fetch", false, "Fetch the profile from the backend first")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(refreshCmd)
	rootCmd.AddCommand(statusCmd)
}

func readPassword(cmd *cobra.Command) (string, error) {
	if password, _ := cmd.Flags().GetString("password"); password != "" {
		return password, nil
	}
	if password := os.Getenv("SKYCTL_PASSWORD"); password != "" {
		return password, nil
	}

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
		data, err := term.ReadPassword(fd)
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(data), nil
	}

	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("no password given")
	}
	return strings.TrimRight(line, "\r\n"), nil
}
