package main

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/cuemby/skyconsole/pkg/events"
	"github.com/cuemby/skyconsole/pkg/storage"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type closingStore struct {
	*storage.MemoryStore
	closed atomic.Int32
}

func (s *closingStore) Close() error {
	s.closed.Add(1)
	return nil
}

// TestExecuteReleasesApp tests that the store and broker are released
// whether the command succeeds or fails
func TestExecuteReleasesApp(t *testing.T) {
	tests := []struct {
		name    string
		runErr  error
		wantErr bool
	}{
		{name: "success"},
		{name: "command error", runErr: errors.New("backend unreachable"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Cleanup(func() { app = nil })

			store := &closingStore{MemoryStore: storage.NewMemoryStore()}
			broker := events.NewBroker()
			broker.Start()

			cmd := &cobra.Command{
				Use:           "x",
				SilenceUsage:  true,
				SilenceErrors: true,
				PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
					a := &consoleApp{
						store:  store,
						broker: broker,
						sub:    broker.Subscribe(),
						done:   make(chan struct{}),
					}
					go a.logEvents()
					app = a
					return nil
				},
				RunE: func(cmd *cobra.Command, args []string) error {
					return tt.runErr
				},
				PersistentPostRunE: teardown,
			}
			cmd.SetArgs([]string{})

			err := execute(context.Background(), cmd)
			if tt.wantErr {
				assert.ErrorIs(t, err, tt.runErr)
			} else {
				require.NoError(t, err)
			}

			assert.Nil(t, app)
			assert.Equal(t, int32(1), store.closed.Load())
			assert.Equal(t, 0, broker.SubscriberCount())
		})
	}
}

// TestCloseAppWithoutApp tests that closing is a no-op when setup never ran
func TestCloseAppWithoutApp(t *testing.T) {
	app = nil
	assert.NotPanics(t, closeApp)
	assert.Nil(t, app)
}
