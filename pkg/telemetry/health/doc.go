// Package health implements the probe endpoints served on the metrics
// listener: liveness, readiness, and build information.
//
// Liveness (/health) answers whether the process is alive and never
// consults components. Readiness (/ready) runs every registered check
// and answers 503 when one fails, which is how an orchestrator keeps
// traffic away from an instance whose site clients never came up.
// Version (/version) reports the build stamp baked in at link time.
//
// # Usage
//
//	checker := health.New(0)
//	checker.RegisterCheck("sites", func(ctx context.Context) error {
//		if manager.Count() == 0 {
//			return errors.New("no site clients initialized")
//		}
//		return nil
//	})
//
//	mux := http.NewServeMux()
//	health.HTTPMiddleware(mux, checker, version, commit, buildTime)
//
// Checks run concurrently under a shared per-check timeout, so a hung
// check delays readiness by at most the configured bound.
package health
