package comments

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"reelreview/internal/services"
	"reelreview/internal/video"
)

// ErrNestedReply marks an attempt to reply to a reply.
var ErrNestedReply = errors.New("replies cannot have replies")

// Draft holds the caller-supplied fields of a new comment.
type Draft struct {
	ID          string
	Content     string
	TimestampMs int64
	Priority    Priority
	Type        Type
	Annotation  Annotation
	Category    string
	Tags        []string
	Author      User
}

// Changes lists the editable fields. Nil fields are left untouched.
type Changes struct {
	Content  *string
	Priority *Priority
	Tags     *[]string
	Category *string
}

// New builds and validates an open root comment on asset. An empty draft ID
// is replaced with a generated one.
func New(d Draft, asset video.Asset, now time.Time) (Comment, error) {
	id := strings.TrimSpace(d.ID)
	if id == "" {
		id = uuid.NewString()
	}
	commentType := d.Type
	if commentType == "" {
		commentType = TypeText
		if d.Annotation != nil {
			commentType = d.Annotation.Type()
		}
	}
	now = now.UTC()
	c := Comment{
		ID:             id,
		VideoID:        asset.ID,
		Content:        strings.TrimSpace(d.Content),
		TimestampMs:    d.TimestampMs,
		Priority:       d.Priority,
		Status:         StatusOpen,
		Type:           commentType,
		Annotation:     cloneAnnotation(d.Annotation),
		Category:       strings.TrimSpace(d.Category),
		Tags:           normalizeTags(d.Tags),
		User:           d.Author,
		ReactionCounts: map[string]int{},
		ReactedBy:      map[string][]string{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	c.MentionedUsers = ExtractMentions(c.Content)
	if err := Validate(c, asset); err != nil {
		return Comment{}, err
	}
	return c, nil
}

// Add appends c to a copy of list. A duplicate id is a conflict.
func Add(list []Comment, c Comment) ([]Comment, error) {
	if indexOf(list, c.ID) >= 0 {
		return nil, services.Wrap(services.ErrConflict, "comments", "add", fmt.Sprintf("comment %s already exists", c.ID), nil)
	}
	out := make([]Comment, 0, len(list)+1)
	out = append(out, list...)
	return append(out, c.Clone()), nil
}

// Reply creates a reply to parentID. The reply inherits the parent's video
// and timestamp; the parent must be a root comment.
func Reply(list []Comment, parentID string, d Draft, asset video.Asset, now time.Time) ([]Comment, Comment, error) {
	parent, ok := Find(list, parentID)
	if !ok {
		return nil, Comment{}, notFound("reply", parentID)
	}
	if parent.IsReply() {
		return nil, Comment{}, services.Wrap(services.ErrValidation, "comments", "reply",
			fmt.Sprintf("comment %s is itself a reply", parentID), ErrNestedReply)
	}
	d.TimestampMs = parent.TimestampMs
	reply, err := New(d, asset, now)
	if err != nil {
		return nil, Comment{}, err
	}
	reply.ParentID = parent.ID
	reply.VideoID = parent.VideoID
	out, err := Add(list, reply)
	if err != nil {
		return nil, Comment{}, err
	}
	return out, reply, nil
}

// Edit applies changes to comment id. Mentions are re-extracted from the new
// content, replacing the previous list.
func Edit(list []Comment, id string, changes Changes, now time.Time) ([]Comment, Comment, error) {
	return update(list, id, "edit", now, func(c *Comment) error {
		if changes.Content != nil {
			content := strings.TrimSpace(*changes.Content)
			if content == "" && c.Type == TypeText {
				return services.Wrap(services.ErrValidation, "comments", "edit", "text comment requires content", nil)
			}
			c.Content = content
			c.MentionedUsers = ExtractMentions(content)
		}
		if changes.Priority != nil {
			if !changes.Priority.Valid() {
				return services.Wrap(services.ErrValidation, "comments", "edit",
					fmt.Sprintf("priority %d outside [0, 2]", int(*changes.Priority)), nil)
			}
			c.Priority = *changes.Priority
		}
		if changes.Tags != nil {
			c.Tags = normalizeTags(*changes.Tags)
		}
		if changes.Category != nil {
			c.Category = strings.TrimSpace(*changes.Category)
		}
		edited := now.UTC()
		c.EditedAt = &edited
		return nil
	})
}

// Resolve marks comment id resolved with optional notes. Resolving an already
// resolved comment replaces its notes.
func Resolve(list []Comment, id, notes string, now time.Time) ([]Comment, Comment, error) {
	return update(list, id, "resolve", now, func(c *Comment) error {
		resolved := now.UTC()
		c.Status = StatusResolved
		c.ResolutionNotes = strings.TrimSpace(notes)
		c.ResolvedAt = &resolved
		return nil
	})
}

// Reopen returns comment id to open and clears its resolution notes.
func Reopen(list []Comment, id string, now time.Time) ([]Comment, Comment, error) {
	return update(list, id, "reopen", now, func(c *Comment) error {
		c.Status = StatusOpen
		c.ResolutionNotes = ""
		c.ResolvedAt = nil
		return nil
	})
}

// React toggles userID's emoji reaction on comment id.
func React(list []Comment, id, emoji, userID string, now time.Time) ([]Comment, Comment, error) {
	emoji = strings.TrimSpace(emoji)
	userID = strings.TrimSpace(userID)
	if emoji == "" || userID == "" {
		return nil, Comment{}, services.Wrap(services.ErrValidation, "comments", "react", "emoji and user are required", nil)
	}
	return update(list, id, "react", now, func(c *Comment) error {
		*c = ToggleReaction(*c, emoji, userID)
		return nil
	})
}

// ToggleReaction adds userID's emoji reaction or removes it when present.
// Counts never go negative and a count reaching zero removes the emoji.
func ToggleReaction(c Comment, emoji, userID string) Comment {
	out := c.Clone()
	if out.ReactionCounts == nil {
		out.ReactionCounts = map[string]int{}
	}
	if out.ReactedBy == nil {
		out.ReactedBy = map[string][]string{}
	}
	users := out.ReactedBy[emoji]
	if i := slices.Index(users, userID); i >= 0 {
		users = slices.Delete(users, i, i+1)
		if len(users) == 0 {
			delete(out.ReactedBy, emoji)
		} else {
			out.ReactedBy[emoji] = users
		}
		if n := out.ReactionCounts[emoji] - 1; n > 0 {
			out.ReactionCounts[emoji] = n
		} else {
			delete(out.ReactionCounts, emoji)
		}
		return out
	}
	out.ReactedBy[emoji] = append(users, userID)
	out.ReactionCounts[emoji]++
	return out
}

// Delete removes comment id and, for a root, every reply to it. It returns
// the removed ids with id first.
func Delete(list []Comment, id string) ([]Comment, []string, error) {
	if indexOf(list, id) < 0 {
		return nil, nil, notFound("delete", id)
	}
	removed := []string{id}
	out := make([]Comment, 0, len(list))
	for _, c := range list {
		switch {
		case c.ID == id:
		case c.ParentID == id:
			removed = append(removed, c.ID)
		default:
			out = append(out, c)
		}
	}
	return out, removed, nil
}

func update(list []Comment, id, operation string, now time.Time, apply func(*Comment) error) ([]Comment, Comment, error) {
	i := indexOf(list, id)
	if i < 0 {
		return nil, Comment{}, notFound(operation, id)
	}
	c := list[i].Clone()
	if err := apply(&c); err != nil {
		return nil, Comment{}, err
	}
	c.UpdatedAt = now.UTC()
	out := slices.Clone(list)
	out[i] = c
	return out, c, nil
}

func notFound(operation, id string) error {
	return services.Wrap(services.ErrNotFound, "comments", operation, fmt.Sprintf("comment %s", id), nil)
}
