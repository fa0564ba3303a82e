// Package settings turns the container environment into the complete environment
// every service of the stack is launched with.
//
// Derivation applies, in order: defaults for optional Grist settings, synonym
// resolution for the mandatory URL, EMAIL and TEAM, fixed ("brittle") values the
// stack depends on, network and port allocation from URL, identity-provider URLs,
// TLS settings for https URLs, and finally generated secrets for whatever the
// operator left unset.
//
// All configuration errors surface before any secret is generated, and before any
// process is launched. The result is a validated Settings whose environment cannot
// change afterwards.
package settings
