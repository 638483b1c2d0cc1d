package github

import (
	"context"

	"github.com/custodia-labs/prsync/internal/core/ports/driven"
)

// FirstPage is the page number list endpoints start at.
const FirstPage = 1

// PageFetcher fetches one page. next is the following page number,
// or 0 when page was the last one.
type PageFetcher[T any] func(ctx context.Context, page int) (items []T, next int, err error)

// PageIterator is a lazy sequence over a paginated endpoint. A page is only
// requested when Next moves past the end of the previous one, so a caller
// that stops early never causes further requests.
type PageIterator[T any] struct {
	fetch PageFetcher[T]
	page  int  // next page to request
	done  bool // no page left to request
	buf   []T
	pos   int
	cur   T
	err   error
	pages int
}

var _ driven.Iterator[int] = (*PageIterator[int])(nil)

// NewPageIterator starts iterating at page. A page below FirstPage starts
// at FirstPage; pass a saved Cursor to resume.
func NewPageIterator[T any](page int, fetch PageFetcher[T]) *PageIterator[T] {
	if page < FirstPage {
		page = FirstPage
	}
	return &PageIterator[T]{fetch: fetch, page: page}
}

// Next advances to the next item, fetching the next page when needed.
func (it *PageIterator[T]) Next(ctx context.Context) bool {
	if it.err != nil {
		return false
	}
	for it.pos >= len(it.buf) {
		if it.done {
			return false
		}
		if err := ctx.Err(); err != nil {
			it.err = err
			return false
		}
		items, next, err := it.fetch(ctx, it.page)
		if err != nil {
			it.err = err
			return false
		}
		it.pages++
		it.buf, it.pos = items, 0
		if next == 0 {
			it.done = true
		} else {
			it.page = next
		}
	}
	it.cur = it.buf[it.pos]
	it.pos++
	return true
}

// Value returns the current item.
func (it *PageIterator[T]) Value() T {
	return it.cur
}

// Err returns the error that stopped iteration, if any.
func (it *PageIterator[T]) Err() error {
	return it.err
}

// Pages returns how many pages have been fetched so far.
func (it *PageIterator[T]) Pages() int {
	return it.pages
}

// Cursor returns the page the next fetch will request, or 0 once the
// last page has been fetched.
func (it *PageIterator[T]) Cursor() int {
	if it.done {
		return 0
	}
	return it.page
}
