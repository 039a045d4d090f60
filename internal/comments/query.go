package comments

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/cases"

	"reelreview/internal/services"
	"reelreview/internal/video"
)

// Filters narrows a comment collection. Every set field must match; unset
// fields match everything.
type Filters struct {
	IsResolved  *bool
	Priorities  []Priority
	SearchQuery string
	Category    string
	Tags        []string
}

// IsZero reports whether the filters impose no constraint.
func (f Filters) IsZero() bool {
	return f.IsResolved == nil && len(f.Priorities) == 0 && strings.TrimSpace(f.SearchQuery) == "" &&
		strings.TrimSpace(f.Category) == "" && len(f.Tags) == 0
}

// Filter returns the comments matching every dimension of f, in input order.
// Search is case-insensitive over content and author name. Tags match when
// the comment carries any of the requested tags.
func Filter(list []Comment, f Filters) []Comment {
	fold := cases.Fold()
	query := fold.String(strings.TrimSpace(f.SearchQuery))
	category := fold.String(strings.TrimSpace(f.Category))
	tags := make(map[string]struct{}, len(f.Tags))
	for _, tag := range f.Tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags[fold.String(tag)] = struct{}{}
		}
	}

	out := make([]Comment, 0, len(list))
	for _, c := range list {
		if f.IsResolved != nil && c.IsResolved() != *f.IsResolved {
			continue
		}
		if len(f.Priorities) > 0 && !slices.Contains(f.Priorities, c.Priority) {
			continue
		}
		if query != "" &&
			!strings.Contains(fold.String(c.Content), query) &&
			!strings.Contains(fold.String(RenderMentions(c.Content)), query) &&
			!strings.Contains(fold.String(c.User.Name), query) {
			continue
		}
		if category != "" && fold.String(strings.TrimSpace(c.Category)) != category {
			continue
		}
		if len(tags) > 0 && !hasAnyTag(c.Tags, tags, fold) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func hasAnyTag(have []string, want map[string]struct{}, fold cases.Caser) bool {
	for _, tag := range have {
		if _, ok := want[fold.String(strings.TrimSpace(tag))]; ok {
			return true
		}
	}
	return false
}

// SortField selects the key Sort orders by.
type SortField string

const (
	SortByTimestamp SortField = "timestamp"
	SortByCreated   SortField = "created"
	SortByPriority  SortField = "priority"
)

// ParseSortField normalizes a sort key name. Empty input means timestamp.
func ParseSortField(value string) (SortField, error) {
	switch field := SortField(strings.ToLower(strings.TrimSpace(value))); field {
	case "":
		return SortByTimestamp, nil
	case SortByTimestamp, SortByCreated, SortByPriority:
		return field, nil
	default:
		return "", services.Wrap(services.ErrValidation, "comments", "sort", fmt.Sprintf("unknown sort field %q", value), nil)
	}
}

// Sort returns a stably sorted copy of list. Equal keys keep their input
// order in both directions.
func Sort(list []Comment, field SortField, ascending bool) []Comment {
	out := slices.Clone(list)
	compare := func(a, b Comment) int {
		switch field {
		case SortByCreated:
			return a.CreatedAt.Compare(b.CreatedAt)
		case SortByPriority:
			return cmp.Compare(a.Priority, b.Priority)
		default:
			return cmp.Compare(a.TimestampMs, b.TimestampMs)
		}
	}
	slices.SortStableFunc(out, func(a, b Comment) int {
		if ascending {
			return compare(a, b)
		}
		return compare(b, a)
	})
	return out
}

// BuildThreads groups a flat collection into root comments with their direct
// replies, preserving input order at both levels. Replies whose parent is
// missing or is itself a reply are dropped from the view.
func BuildThreads(list []Comment) []Comment {
	rootIndex := make(map[string]int, len(list))
	roots := make([]Comment, 0, len(list))
	for _, c := range list {
		if c.IsReply() {
			continue
		}
		if _, dup := rootIndex[c.ID]; dup {
			continue
		}
		root := c.Clone()
		root.Replies = []Comment{}
		rootIndex[c.ID] = len(roots)
		roots = append(roots, root)
	}
	for _, c := range list {
		if !c.IsReply() {
			continue
		}
		idx, ok := rootIndex[c.ParentID]
		if !ok {
			continue
		}
		reply := c.Clone()
		reply.Replies = nil
		roots[idx].Replies = append(roots[idx].Replies, reply)
	}
	return roots
}

// Summary counts comments for a review header.
type Summary struct {
	Total      int
	Open       int
	Resolved   int
	Replies    int
	ByPriority map[Priority]int
}

// Summarize counts the collection. Replies are counted separately and do not
// contribute to the open/resolved totals.
func Summarize(list []Comment) Summary {
	s := Summary{ByPriority: map[Priority]int{}}
	for _, c := range list {
		if c.IsReply() {
			s.Replies++
			continue
		}
		s.Total++
		if c.IsResolved() {
			s.Resolved++
		} else {
			s.Open++
			s.ByPriority[c.Priority]++
		}
	}
	return s
}

// Marker is a timeline position for one root comment.
type Marker struct {
	CommentID   string
	TimestampMs int64
	Percent     float64
	Priority    Priority
	Resolved    bool
}

// Markers places every root comment on the asset's timeline, ordered by
// timestamp.
func Markers(list []Comment, asset video.Asset) []Marker {
	roots := Sort(list, SortByTimestamp, true)
	out := make([]Marker, 0, len(roots))
	for _, c := range roots {
		if c.IsReply() {
			continue
		}
		out = append(out, Marker{
			CommentID:   c.ID,
			TimestampMs: c.TimestampMs,
			Percent:     asset.Percent(c.TimestampMs),
			Priority:    c.Priority,
			Resolved:    c.IsResolved(),
		})
	}
	return out
}

// Near returns the root comments within windowMs of ms, ordered by distance
// from ms with ties kept in timestamp order.
func Near(list []Comment, ms, windowMs int64) []Comment {
	if windowMs < 0 {
		windowMs = 0
	}
	var out []Comment
	for _, c := range Sort(list, SortByTimestamp, true) {
		if c.IsReply() {
			continue
		}
		if absDiff(c.TimestampMs, ms) <= windowMs {
			out = append(out, c)
		}
	}
	slices.SortStableFunc(out, func(a, b Comment) int {
		return cmp.Compare(absDiff(a.TimestampMs, ms), absDiff(b.TimestampMs, ms))
	})
	return out
}

func absDiff(a, b int64) int64 {
	if a > b {
		return a - b
	}
	return b - a
}
