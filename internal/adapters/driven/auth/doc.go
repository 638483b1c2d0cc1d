// Package auth provides driven.CredentialProvider implementations for the
// GitHub connection profile: fixed credentials from configuration, or a
// profile file read on first use.
package auth
