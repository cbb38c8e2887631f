/*
Package events provides an in-process broker for console state changes.

Views (a TUI, a web bridge, or the CLI's debug logger) subscribe to the broker
and re-render when the session or a list controller changes. Publishing never
blocks on slow subscribers: each subscriber has a buffer of 50 events and events
that do not fit are dropped for that subscriber.

# Event Types

Session Events:
  - session.login, session.refreshed, session.profile
  - session.logout, session.environment

List Events (Metadata["resource"] names the collection):
  - list.loaded, list.failed
  - aggregate.loaded, aggregate.failed

# Usage

	broker := events.NewBroker()
	broker.Start()
	defer broker.Stop()

	sub := broker.Subscribe()
	go func() {
		for event := range sub {
			render(event)
		}
	}()

	mgr := session.NewManager(authAPI, store, session.WithPublisher(broker))

Components take a Publisher and call events.Publish, which tolerates nil.
*/
package events
