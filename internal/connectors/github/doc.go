// Package github reads closed pull requests and their files from the
// GitHub REST API.
//
// # Architecture
//
// Client implements [driven.PullRequestSource]. It comprises:
//
//   - Client: lazily authenticated go-github client
//   - RateLimiter: proactive token bucket plus X-RateLimit-* tracking
//   - PageIterator: lazy page-by-page sequence behind [driven.Iterator]
//
// # Authentication
//
// Credentials come from a [driven.CredentialProvider] on first use and are
// kept for the client's lifetime. A token is sent as a bearer token through
// golang.org/x/oauth2; otherwise a login/password pair uses basic auth.
//
// # Rate Limiting
//
// Every call goes through retryOnRateLimit. When GitHub reports the quota as
// exhausted, the client sleeps until the reported reset time, rounded up to
// whole seconds, and repeats the call exactly once. A second quota failure is
// returned as *RateLimitError, which matches domain.ErrRateLimited.
//
// # Ordering
//
// Closed pull requests are listed with sort=updated and direction=desc.
// The API has no closed-time sort; since closing a pull request updates it,
// updated_at bounds closed_at from above and serves as the ordering key of
// the early-stop rule.
package github
