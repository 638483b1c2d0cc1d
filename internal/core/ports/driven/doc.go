// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
//   - PullRequestSource: Reads repositories, closed pull requests and their files
//   - Iterator: Lazy paginated sequence returned by the source
//   - SyncStore and SyncTx: Idempotent writes and retention purges
//   - RunStore: Pipeline run history
//   - CredentialProvider: API connection profile
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or connector package
package driven
