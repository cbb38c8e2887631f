// Package guard implements the console's navigation guard.
//
// Check is a pure decision over a target Route, the path being left and the
// session. Public routes are always allowed, except that an authenticated
// session asking for the login page is sent to the landing page. Routes that
// require auth send anonymous sessions to the login page with the requested
// path in the "redirect" query parameter. A route with a non-empty permission
// set that the session does not intersect is denied with a warning and the
// caller is sent back where it came from, or to the landing page when it came
// from the login page.
package guard
