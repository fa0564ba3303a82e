// Package secrets generates and persists the random values a deployment needs but
// the operator never has to provide: session secret, OIDC client credentials and the
// auth sidecar's cookie secret.
//
// Values are generated lazily on first request and then always read back, so they
// are stable across container restarts. There is no expiry and no rotation; deleting
// the persisted value is the only way to get a new one.
//
// Two backends exist:
//
//   - FileStore: one file per name in a directory (default /persist/params)
//   - KubeStore: one key per name in a single Kubernetes Secret
//
// Two orchestrators generating the same name at once is an accepted race; the
// orchestrator is a single-instance startup tool.
package secrets
