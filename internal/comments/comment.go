package comments

import (
	"fmt"
	"strings"
	"time"

	"reelreview/internal/services"
)

// Priority ranks how urgent a comment is.
type Priority int

const (
	PriorityNormal    Priority = 0
	PriorityImportant Priority = 1
	PriorityCritical  Priority = 2
)

// String returns the lowercase label of the priority.
func (p Priority) String() string {
	switch p {
	case PriorityNormal:
		return "normal"
	case PriorityImportant:
		return "important"
	case PriorityCritical:
		return "critical"
	default:
		return fmt.Sprintf("priority(%d)", int(p))
	}
}

// Valid reports whether p is one of the defined priorities.
func (p Priority) Valid() bool {
	return p >= PriorityNormal && p <= PriorityCritical
}

// ParsePriority accepts a label or its numeric form.
func ParsePriority(value string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "0", "normal":
		return PriorityNormal, nil
	case "1", "important":
		return PriorityImportant, nil
	case "2", "critical":
		return PriorityCritical, nil
	default:
		return 0, services.Wrap(services.ErrValidation, "comments", "parse priority", fmt.Sprintf("unknown priority %q", value), nil)
	}
}

// Status is the resolution state of a comment.
type Status string

const (
	StatusOpen     Status = "open"
	StatusResolved Status = "resolved"
)

// Type discriminates the annotation payload.
type Type string

const (
	TypePoint   Type = "point"
	TypeRegion  Type = "region"
	TypeDrawing Type = "drawing"
	TypeText    Type = "text"
	TypeArrow   Type = "arrow"
	TypeAudio   Type = "audio"
)

// Types lists every comment type in display order.
var Types = []Type{TypePoint, TypeRegion, TypeDrawing, TypeText, TypeArrow, TypeAudio}

// Valid reports whether t is a known comment type.
func (t Type) Valid() bool {
	for _, known := range Types {
		if t == known {
			return true
		}
	}
	return false
}

// ParseType normalizes a comment type name. Empty input means text.
func ParseType(value string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(value)))
	if t == "" {
		return TypeText, nil
	}
	if !t.Valid() {
		return "", services.Wrap(services.ErrValidation, "comments", "parse type", fmt.Sprintf("unknown comment type %q", value), nil)
	}
	return t, nil
}

// User is the author identity attached to a comment.
type User struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// Comment is a timestamped, optionally annotated remark on a video.
type Comment struct {
	ID              string
	VideoID         string
	ParentID        string
	Content         string
	TimestampMs     int64
	Priority        Priority
	Status          Status
	ResolutionNotes string
	Type            Type
	Annotation      Annotation
	Category        string
	Tags            []string
	MentionedUsers  []string
	ReactionCounts  map[string]int
	ReactedBy       map[string][]string
	User            User
	CreatedAt       time.Time
	UpdatedAt       time.Time
	EditedAt        *time.Time
	ResolvedAt      *time.Time

	// Replies is populated only by BuildThreads.
	Replies []Comment
}

// IsReply reports whether the comment belongs to another comment's thread.
func (c Comment) IsReply() bool {
	return c.ParentID != ""
}

// IsResolved reports whether the comment is resolved.
func (c Comment) IsResolved() bool {
	return c.Status == StatusResolved
}

// Clone returns a deep copy that shares no slices or maps with c.
func (c Comment) Clone() Comment {
	out := c
	out.Tags = cloneStrings(c.Tags)
	out.MentionedUsers = cloneStrings(c.MentionedUsers)
	if c.ReactionCounts != nil {
		out.ReactionCounts = make(map[string]int, len(c.ReactionCounts))
		for k, v := range c.ReactionCounts {
			out.ReactionCounts[k] = v
		}
	}
	if c.ReactedBy != nil {
		out.ReactedBy = make(map[string][]string, len(c.ReactedBy))
		for k, v := range c.ReactedBy {
			out.ReactedBy[k] = cloneStrings(v)
		}
	}
	out.Annotation = cloneAnnotation(c.Annotation)
	if c.EditedAt != nil {
		t := *c.EditedAt
		out.EditedAt = &t
	}
	if c.ResolvedAt != nil {
		t := *c.ResolvedAt
		out.ResolvedAt = &t
	}
	if c.Replies != nil {
		out.Replies = make([]Comment, len(c.Replies))
		for i, r := range c.Replies {
			out.Replies[i] = r.Clone()
		}
	}
	return out
}

// Find returns the comment with id.
func Find(list []Comment, id string) (Comment, bool) {
	if i := indexOf(list, id); i >= 0 {
		return list[i], true
	}
	return Comment{}, false
}

func indexOf(list []Comment, id string) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneStrings(values []string) []string {
	if values == nil {
		return nil
	}
	return append([]string(nil), values...)
}

func normalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		key := strings.ToLower(tag)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, tag)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
