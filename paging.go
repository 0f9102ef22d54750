package quill

import (
	"context"

	"github.com/arloliu/quill/internal/metrics"
	"github.com/arloliu/quill/types"
)

// NextPage returns the statement that continues stmt after result.
//
// The successor is identical to stmt except for the paging state; stmt
// itself is not modified. Paging tokens are opaque and passed back as is.
//
// Parameters:
//   - stmt: The statement that produced result
//   - result: The page to continue from
//
// Returns:
//   - Statement: The continuation statement
//   - error: types.ErrPagingExhausted if result is the last page
//
// Example:
//
//	for {
//	    res, err := session.Execute(ctx, stmt)
//	    if err != nil {
//	        return err
//	    }
//	    consume(res.All())
//	    stmt, err = quill.NextPage(stmt, res)
//	    if errors.Is(err, types.ErrPagingExhausted) {
//	        break
//	    }
//	}
func NextPage(stmt Statement, result *Result) (Statement, error) {
	if result == nil || !result.HasMorePages() {
		return Statement{}, types.ErrPagingExhausted
	}

	return stmt.Copy(result.pagingState), nil
}

// PagingPhase is the state of a Pager.
type PagingPhase uint8

const (
	// PhaseFresh means no page has been fetched yet.
	PhaseFresh PagingPhase = iota
	// PhasePaged means at least one page was fetched and more remain.
	PhasePaged
	// PhaseExhausted means the last page was fetched.
	PhaseExhausted
)

// String returns the phase name.
func (p PagingPhase) String() string {
	switch p {
	case PhaseFresh:
		return "fresh"
	case PhasePaged:
		return "paged"
	case PhaseExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Pager walks a statement page by page.
//
// Every Next call is exactly one round trip; nothing is fetched ahead. A
// failed Next leaves the pager where it was, so the same page can be retried.
// A Pager is not safe for concurrent use; share the Statement instead.
type Pager struct {
	exec    Executor
	stmt    Statement
	phase   PagingPhase
	pages   int
	metrics MetricsCollector
}

// NewPager creates a pager starting at stmt.
//
// A stmt that already carries a paging state resumes from that point.
func NewPager(exec Executor, stmt Statement) *Pager {
	return &Pager{
		exec:    exec,
		stmt:    stmt,
		phase:   PhaseFresh,
		metrics: metrics.NewNopMetrics(),
	}
}

// Next fetches the next page.
//
// Returns:
//   - *Result: The page
//   - error: types.ErrPagingExhausted once the last page was returned, or
//     the execution error
func (p *Pager) Next(ctx context.Context) (*Result, error) {
	if p.phase == PhaseExhausted {
		return nil, types.ErrPagingExhausted
	}
	if p.exec == nil {
		return nil, types.ErrNilSession
	}

	res, err := p.exec.Execute(ctx, p.stmt)
	if err != nil {
		return nil, err
	}
	p.pages++

	next, err := NextPage(p.stmt, res)
	if err != nil {
		p.phase = PhaseExhausted
		p.metrics.IncPagingExhausted()

		return res, nil
	}
	p.stmt = next
	p.phase = PhasePaged

	return res, nil
}

// Phase returns the pager state.
func (p *Pager) Phase() PagingPhase { return p.phase }

// Done reports whether the last page has been fetched.
func (p *Pager) Done() bool { return p.phase == PhaseExhausted }

// Pages returns the number of pages fetched so far.
func (p *Pager) Pages() int { return p.pages }

// Statement returns the statement the next call to Next will execute.
//
// It can be stored and resumed later with NewPager.
func (p *Pager) Statement() Statement { return p.stmt }
