// Package config provides configuration management for the omnibus orchestrator.
//
// This is the orchestrator's own configuration: file locations, the secret store
// backend, readiness tuning and the executables of the launched services. The
// deployment's user-facing settings (URL, EMAIL, TEAM, HTTPS, ...) are environment
// variables handled by the settings package.
//
// # Configuration Layers
//
// Configuration is loaded and merged in the following order:
//
//  1. Default Configuration (embedded in binary)
//     - Matches the container image layout (/persist, /settings, /custom)
//
//  2. Image Configuration (/settings/omnibus.yaml)
//     - Shipped with a derived image that moves files or swaps executables
//
//  3. Custom Configuration (/custom/omnibus.yaml)
//     - Mounted by the operator
//
// Each layer only overrides the keys it sets. A file passed with --config replaces
// layers 2 and 3. secretsDir, authDir, dexFullConfig and acmeStorage default to
// entries under persistDir once the layers have been applied.
//
// # Configuration Structure
//
//	paths:
//	  persistDir: /persist
//	  secretsDir: /persist/params   # optional, persistDir/params otherwise
//	  dexFullConfig: /persist/dex-full.yaml
//	secrets:
//	  backend: kubernetes      # or "file"
//	  namespace: grist
//	  secretName: grist-omnibus-params
//	  kubeContext: staging   # optional, in-cluster account otherwise
//	readiness:
//	  initialDelay: 100ms
//	  factor: 1.2
//	  maxDelay: 5s
//	services:
//	  tfa: ["traefik-forward-auth"]
//	settleDelay: 1s
package config
