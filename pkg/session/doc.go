/*
Package session implements the console's session manager.

A Manager holds one types.Session for the life of the process. It is loaded
from a storage.Store at construction, mutated by Login, Refresh,
FetchProfile, ChangeEnvironment and Logout, and written back after every
mutation. A session counts as authenticated only when both an access token
and a profile are held.

# Refresh

Refresh without a refresh token fails with ErrNoRefreshToken and makes no
network call. Otherwise concurrent callers share one backend call through a
singleflight group. The response is merged into the existing profile: roles
and permissions are replaced only when the response carries them, and the
old refresh token is kept when no new one is returned.

# Environment switching

ChangeEnvironment keeps the held credentials. A token issued for one
environment is sent to the next one as is; the backend decides whether it is
still accepted.

# Gateway wiring

Manager satisfies client.CredentialsSource (CurrentCredentials) and
client.Refresher (RefreshToken). Since the manager itself calls the backend
through the gateway, the two are tied together with late-bound closures; see
package client.
*/
package session
