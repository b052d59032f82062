package duplicates

import "context"

// Pending is the eventual outcome of an asynchronous analysis
type Pending struct {
	done   chan struct{}
	result *AnalysisResult
	err    error
}

func newPending() *Pending {
	return &Pending{done: make(chan struct{})}
}

func (p *Pending) resolve(result *AnalysisResult, err error) {
	p.result, p.err = result, err
	close(p.done)
}

// Done is closed once the analysis has finished
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the analysis finishes or ctx is done.
// Giving up on ctx does not stop the analysis.
func (p *Pending) Wait(ctx context.Context) (*AnalysisResult, error) {
	select {
	case <-p.done:
		return p.result, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
