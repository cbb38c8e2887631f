/*
Package health probes the reachability of the SkyTask backend.

Two checkers are provided, both behind the Checker interface:

	TCPChecker   dial host:port of the backend
	HTTPChecker  GET a URL and match the status code against a range

Probe runs checkers in order. A failed check is retried until Config.Retries
consecutive failures mark it unhealthy; the first unhealthy checker ends the
probe:

	checkers, err := health.ForServer("https://skytask.example.com/api", 5*time.Second, nil)
	if err != nil {
		return err
	}
	result := health.Probe(ctx, health.DefaultConfig(), checkers...)
	if !result.Healthy {
		fmt.Println(result.Message)
	}

The HTTP check built by ForServer accepts any answer below 500. A 401 from a
backend that wants a login still proves the backend is up.
*/
package health
