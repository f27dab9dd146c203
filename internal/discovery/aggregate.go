package discovery

// FilterOpts controls Aggregator.Finalize.
type FilterOpts struct {
	// MinScore drops places rated below it. A place without a rating
	// counts as 0.
	MinScore float64
	// AllowInactive keeps temporarily and permanently closed places.
	AllowInactive bool
	// Limit caps the result in first-seen order. Zero means no cap.
	Limit int
}

// Aggregator merges tile results into one set keyed by place id. A later
// record replaces an earlier one with the same id but keeps its position.
// It is not safe for concurrent use.
type Aggregator struct {
	order   []string
	byID    map[string]Place
	dropped int
}

// NewAggregator returns an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{byID: make(map[string]Place)}
}

// Add merges records and returns how many carried a usable id.
func (a *Aggregator) Add(records ...Place) int {
	added := 0
	for _, r := range records {
		if r == nil {
			a.dropped++
			continue
		}
		id := r.ID()
		if id == "" {
			a.dropped++
			continue
		}
		if _, ok := a.byID[id]; !ok {
			a.order = append(a.order, id)
		}
		a.byID[id] = r
		added++
	}
	return added
}

// Len returns the number of distinct places seen.
func (a *Aggregator) Len() int { return len(a.order) }

// Dropped returns the number of records discarded for lacking an id.
func (a *Aggregator) Dropped() int { return a.dropped }

// Finalize applies the status filter, then the score filter, then the cap.
func (a *Aggregator) Finalize(opts FilterOpts) []Place {
	out := make([]Place, 0, len(a.order))
	for _, id := range a.order {
		p := a.byID[id]
		if !opts.AllowInactive && p.Status().Inactive() {
			continue
		}
		score, _ := p.Score()
		if score < opts.MinScore {
			continue
		}
		out = append(out, p)
		if opts.Limit > 0 && len(out) == opts.Limit {
			break
		}
	}
	return out
}
