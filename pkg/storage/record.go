package storage

import (
	"encoding/json"
	"fmt"

	"github.com/cuemby/skyconsole/pkg/log"
	"github.com/cuemby/skyconsole/pkg/types"
)

// EncodeSession serializes a session as the current record version
func EncodeSession(session types.Session) ([]byte, error) {
	record := types.SessionRecord{
		Version: types.SessionRecordVersion,
		Session: session,
	}
	data, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session: %w", err)
	}
	return data, nil
}

// DecodeSession parses a stored record field by field over the defaults.
// Fields that are missing or fail to decode keep their default value; a
// record that is not a JSON object yields the default session. It never fails.
//
// Both the versioned layout and the unversioned legacy layout (environment
// stored under "currentEnv") are accepted.
func DecodeSession(data []byte) types.Session {
	session := types.DefaultSession()
	if len(data) == 0 {
		return session
	}

	logger := log.WithComponent("storage")

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		logger.Warn().Err(err).Msg("Discarding unparsable session record")
		return session
	}

	var version int
	decodeField(fields, "version", &version)
	if version > types.SessionRecordVersion {
		logger.Warn().Int("version", version).Msg("Session record is newer than supported, reading known fields")
	}

	envKey := "environment"
	if _, ok := fields[envKey]; !ok {
		envKey = "currentEnv"
	}
	var env types.Environment
	if decodeField(fields, envKey, &env) && env.Valid() {
		session.Environment = env
	}

	decodeField(fields, "accessToken", &session.AccessToken)
	decodeField(fields, "refreshToken", &session.RefreshToken)

	var profile types.Profile
	if raw, ok := fields["profile"]; ok && string(raw) != "null" {
		if err := json.Unmarshal(raw, &profile); err == nil {
			if profile.Roles == nil {
				profile.Roles = []string{}
			}
			if profile.Permissions == nil {
				profile.Permissions = []string{}
			}
			session.Profile = &profile
		}
	}

	return session
}

func decodeField(fields map[string]json.RawMessage, key string, out any) bool {
	raw, ok := fields[key]
	if !ok {
		return false
	}
	return json.Unmarshal(raw, out) == nil
}
