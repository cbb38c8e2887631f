package main

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/cuemby/skyconsole/pkg/guard"
	"github.com/spf13/cobra"
)

// Route annotations attached to commands
const (
	annotationRoute       = "skyctl/route"
	annotationPublic      = "skyctl/public"
	annotationPermissions = "skyctl/permissions"
)

// errAlreadyLoggedIn is returned when login is asked for by an authenticated session
var errAlreadyLoggedIn = errors.New("already logged in, run \"skyctl logout\" first")

// protected marks cmd as a route that needs a login and any of perms
func protected(cmd *cobra.Command, route string, perms ...string) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[annotationRoute] = route
	cmd.Annotations[annotationPermissions] = strings.Join(perms, ",")
	return cmd
}

// public marks cmd as a route anyone may run
func public(cmd *cobra.Command, route string) *cobra.Command {
	protected(cmd, route)
	cmd.Annotations[annotationPublic] = "true"
	return cmd
}

func isRouted(cmd *cobra.Command) bool {
	_, ok := cmd.Annotations[annotationRoute]
	return ok
}

// routeFor builds the guard route of cmd. Positional arguments extend the path.
func routeFor(cmd *cobra.Command, args []string) guard.Route {
	route := guard.Route{
		Path:         cmd.Annotations[annotationRoute],
		Public:       cmd.Annotations[annotationPublic] == "true",
		RequiresAuth: cmd.Annotations[annotationPublic] != "true",
	}
	if len(args) > 0 {
		route.Path = path.Join(append([]string{route.Path}, args...)...)
	}
	if perms := cmd.Annotations[annotationPermissions]; perms != "" {
		route.Permissions = strings.Split(perms, ",")
	}
	return route
}

// enforceRoute runs the navigation guard for cmd and turns a redirect into an error
func enforceRoute(cmd *cobra.Command, args []string) error {
	from, _ := cmd.Flags().GetString("from")
	d := app.guard.Check(routeFor(cmd, args), from, app.session)

	switch d.Outcome {
	case guard.OutcomeAllow:
		return nil
	case guard.OutcomeLanding:
		return errAlreadyLoggedIn
	case guard.OutcomeLogin:
		return fmt.Errorf("login required, run \"skyctl login\" (redirect %s)", d.Location())
	default:
		fmt.Fprintln(cmd.ErrOrStderr(), styles.Warning.Render("⚠ "+d.Warning))
		return fmt.Errorf("access denied, redirected to %s", d.Location())
	}
}
