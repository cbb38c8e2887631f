/*
Package storage provides durable persistence for the console session record.

The console keeps exactly one record per installation: the current environment,
the access and refresh tokens, and the cached profile. It lives under the
well-known key "skytask-auth" in the "session" bucket of a BoltDB file.

# Architecture

	┌──────────────── SESSION STORAGE ─────────────────┐
	│                                                    │
	│  session.Manager                                   │
	│       │  SaveSession / LoadSession / Delete        │
	│       ▼                                            │
	│  Store interface                                   │
	│   ├─ BoltStore   <dataDir>/skyconsole.db           │
	│   │    bucket "session", key "skytask-auth"        │
	│   └─ MemoryStore (tests, ephemeral consoles)       │
	│       │                                            │
	│       ▼                                            │
	│  EncodeSession / DecodeSession                     │
	│   - versioned JSON record                          │
	│   - field-by-field fallback to defaults            │
	└────────────────────────────────────────────────────┘

# Loading Rules

DecodeSession never fails. Each field is decoded independently:

  - a missing or mistyped field keeps its default
  - an environment outside dev/test/prod falls back to dev
  - a profile that does not decode is dropped, which leaves the session
    unauthenticated
  - a record that is not a JSON object yields the default session

The legacy unversioned layout written by the web console, which stored the
environment under "currentEnv", is read the same way.

# Sealing

WithSealer encrypts the record before it is written (see package security).
A stored value that does not unseal is still read when it is plaintext JSON,
so enabling sealing keeps an existing login. Anything else is discarded and
the default session is loaded.

# Usage

	store, err := storage.NewBoltStore(cfg.DataDir)
	if err != nil {
		return err
	}
	defer store.Close()

	mgr := session.NewManager(authAPI, store)
*/
package storage
