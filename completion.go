package flagtree

import "strings"

// CompletionFunc computes candidates for the word being completed.
// prefix is the partial word typed so far.
type CompletionFunc func(ctx *Context, prefix string) (*CompletionResult, error)

// Item is one completion candidate.
type Item struct {
	Value       string
	Description string
}

// ActiveHelp is a contextual message shown alongside candidates.
// When Condition is set, the message is only shown if it returns true for the request Context.
type ActiveHelp struct {
	Message   string
	Condition func(ctx *Context) bool
}

// CompletionResult is the ordered output of a completion request.
type CompletionResult struct {
	Items      []Item
	ActiveHelp []ActiveHelp

	// Prefiltered marks results the callback already filtered by prefix.
	Prefiltered bool

	// partial marks results that were cut short, e.g. by a timeout.
	partial bool
}

// NewCompletionResult returns an empty result.
func NewCompletionResult() *CompletionResult {
	return &CompletionResult{}
}

// CompleteValues is a shorthand for a result made of plain values.
func CompleteValues(values ...string) *CompletionResult {
	r := NewCompletionResult()
	for _, v := range values {
		r.Add(v)
	}
	return r
}

// Add appends a candidate without description.
func (r *CompletionResult) Add(value string) *CompletionResult {
	r.Items = append(r.Items, Item{Value: value})
	return r
}

// AddWithDescription appends a described candidate.
func (r *CompletionResult) AddWithDescription(value, description string) *CompletionResult {
	r.Items = append(r.Items, Item{Value: value, Description: description})
	return r
}

// AddItems appends candidates.
func (r *CompletionResult) AddItems(items ...Item) *CompletionResult {
	r.Items = append(r.Items, items...)
	return r
}

// AddHelp appends an unconditional ActiveHelp message.
func (r *CompletionResult) AddHelp(message string) *CompletionResult {
	r.ActiveHelp = append(r.ActiveHelp, ActiveHelp{Message: message})
	return r
}

// AddConditionalHelp appends an ActiveHelp message shown only when cond holds.
func (r *CompletionResult) AddConditionalHelp(message string, cond func(ctx *Context) bool) *CompletionResult {
	r.ActiveHelp = append(r.ActiveHelp, ActiveHelp{Message: message, Condition: cond})
	return r
}

// Merge appends the items and help of other. A nil other is ignored.
func (r *CompletionResult) Merge(other *CompletionResult) *CompletionResult {
	if other == nil {
		return r
	}
	r.Items = append(r.Items, other.Items...)
	r.ActiveHelp = append(r.ActiveHelp, other.ActiveHelp...)
	r.partial = r.partial || other.partial
	return r
}

// Values returns the candidate values in order.
func (r *CompletionResult) Values() []string {
	out := make([]string, len(r.Items))
	for i, it := range r.Items {
		out[i] = it.Value
	}
	return out
}

// Messages returns the ActiveHelp messages in order, ignoring conditions.
func (r *CompletionResult) Messages() []string {
	out := make([]string, len(r.ActiveHelp))
	for i, h := range r.ActiveHelp {
		out[i] = h.Message
	}
	return out
}

// Clone returns a copy that shares nothing mutable with r.
func (r *CompletionResult) Clone() *CompletionResult {
	if r == nil {
		return nil
	}
	return &CompletionResult{
		Items:       append([]Item(nil), r.Items...),
		ActiveHelp:  append([]ActiveHelp(nil), r.ActiveHelp...),
		Prefiltered: r.Prefiltered,
		partial:     r.partial,
	}
}

// Partial reports whether the result was cut short.
func (r *CompletionResult) Partial() bool {
	return r.partial
}

// filter keeps items starting with prefix and drops duplicate values, keeping the first.
func (r *CompletionResult) filter(prefix string) {
	seen := make(map[string]bool, len(r.Items))
	kept := r.Items[:0]
	for _, it := range r.Items {
		if seen[it.Value] {
			continue
		}
		if !r.Prefiltered && !strings.HasPrefix(it.Value, prefix) {
			continue
		}
		seen[it.Value] = true
		kept = append(kept, it)
	}
	r.Items = kept
}

// resolveHelp drops ActiveHelp whose condition is false for ctx, or all of it when disabled.
func (r *CompletionResult) resolveHelp(ctx *Context, enabled bool) {
	if !enabled {
		r.ActiveHelp = nil
		return
	}
	kept := r.ActiveHelp[:0]
	for _, h := range r.ActiveHelp {
		if h.Condition == nil || h.Condition(ctx) {
			kept = append(kept, ActiveHelp{Message: h.Message})
		}
	}
	r.ActiveHelp = kept
}
