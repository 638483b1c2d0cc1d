package services

import (
	"context"

	"github.com/custodia-labs/prsync/internal/core/domain"
	"github.com/custodia-labs/prsync/internal/core/ports/driven"
)

// StopPredicate reports whether a walk should end at pr. The item it
// returns true for is not visited.
type StopPredicate func(pr domain.PullRequest) bool

// WalkResult summarises a pull request walk.
type WalkResult struct {
	Visited int
	Pages   int
	Stop    domain.StopReason
}

// pageCounter is implemented by iterators that know how many pages they fetched.
type pageCounter interface {
	Pages() int
}

// walkPullRequests consumes it in server order, calling visit for each
// pull request until stop matches or the listing is exhausted. Pages are
// only fetched as the walk reaches them, so an early stop bounds the
// number of requests. An error from visit or the iterator ends the walk.
func walkPullRequests(
	ctx context.Context,
	it driven.Iterator[domain.PullRequest],
	stop StopPredicate,
	visit func(domain.PullRequest) error,
) (res WalkResult, err error) {
	defer func() {
		if pc, ok := it.(pageCounter); ok {
			res.Pages = pc.Pages()
		}
	}()

	for it.Next(ctx) {
		pr := it.Value()
		if stop != nil && stop(pr) {
			res.Stop = domain.StopPredicate
			return res, nil
		}
		if err = visit(pr); err != nil {
			return res, err
		}
		res.Visited++
	}
	if err = it.Err(); err != nil {
		return res, err
	}

	res.Stop = domain.StopExhausted
	return res, nil
}
