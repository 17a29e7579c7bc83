// Package standards holds the value types that flow through a standards run:
// pull request diffs, pattern observations, condensed standards and token usage.
package standards

// PullRequest is a closed pull request as listed by the hosting API.
type PullRequest struct {
	number  int
	title   string
	diffURL string
}

// NewPullRequest creates a new PullRequest.
func NewPullRequest(number int, title, diffURL string) PullRequest {
	return PullRequest{number: number, title: title, diffURL: diffURL}
}

// Number returns the pull request number.
func (p PullRequest) Number() int { return p.number }

// Title returns the pull request title.
func (p PullRequest) Title() string { return p.title }

// DiffURL returns the URL serving the unified diff.
func (p PullRequest) DiffURL() string { return p.diffURL }

// Diff is the unified diff text of one pull request together with its
// measured token count.
type Diff struct {
	number int
	text   string
	tokens int
}

// NewDiff creates a new Diff.
func NewDiff(number int, text string, tokens int) Diff {
	return Diff{number: number, text: text, tokens: tokens}
}

// Number returns the originating pull request number.
func (d Diff) Number() int { return d.number }

// Text returns the raw diff text.
func (d Diff) Text() string { return d.text }

// Tokens returns the token count measured at collection time.
func (d Diff) Tokens() int { return d.tokens }

// DroppedDiff records a diff excluded by the retention ceiling.
type DroppedDiff struct {
	number int
	tokens int
}

// NewDroppedDiff creates a new DroppedDiff.
func NewDroppedDiff(number, tokens int) DroppedDiff {
	return DroppedDiff{number: number, tokens: tokens}
}

// Number returns the pull request number.
func (d DroppedDiff) Number() int { return d.number }

// Tokens returns the measured token count that exceeded the ceiling.
func (d DroppedDiff) Tokens() int { return d.tokens }

// Collection is the outcome of collecting diffs: retained diffs in hosting
// API order, plus the ones dropped for size.
type Collection struct {
	retained []Diff
	dropped  []DroppedDiff
}

// NewCollection creates a new Collection.
func NewCollection(retained []Diff, dropped []DroppedDiff) Collection {
	r := make([]Diff, len(retained))
	copy(r, retained)
	d := make([]DroppedDiff, len(dropped))
	copy(d, dropped)
	return Collection{retained: r, dropped: d}
}

// Diffs returns the retained diffs in order.
func (c Collection) Diffs() []Diff {
	r := make([]Diff, len(c.retained))
	copy(r, c.retained)
	return r
}

// Dropped returns the diffs excluded by the ceiling.
func (c Collection) Dropped() []DroppedDiff {
	d := make([]DroppedDiff, len(c.dropped))
	copy(d, c.dropped)
	return d
}
