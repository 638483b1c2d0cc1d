// Package services implements the driving port interfaces.
// Services contain the sync engine and orchestrate calls to driven
// ports (adapters): the pull request source and the stores.
//
// The load phase walks each repository's closed pull requests newest
// first and stops at the first one that predates the run's window.
package services
