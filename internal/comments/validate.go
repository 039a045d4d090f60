package comments

import (
	"fmt"
	"strings"

	"reelreview/internal/services"
	"reelreview/internal/video"
)

// Validate checks a comment against the invariants of the video it belongs
// to. It reports the first violation as a services.ErrValidation error.
func Validate(c Comment, asset video.Asset) error {
	if strings.TrimSpace(c.ID) == "" {
		return invalid("comment id is required")
	}
	if c.ParentID == c.ID {
		return invalid("comment cannot reply to itself")
	}
	if c.VideoID != "" && asset.ID != "" && c.VideoID != asset.ID {
		return invalid(fmt.Sprintf("comment belongs to video %q, not %q", c.VideoID, asset.ID))
	}
	if err := asset.CheckTimestamp(c.TimestampMs); err != nil {
		return err
	}
	if !c.Priority.Valid() {
		return invalid(fmt.Sprintf("priority %d outside [0, 2]", int(c.Priority)))
	}
	if c.Status != StatusOpen && c.Status != StatusResolved {
		return invalid(fmt.Sprintf("unknown status %q", c.Status))
	}
	if !c.Type.Valid() {
		return invalid(fmt.Sprintf("unknown comment type %q", c.Type))
	}
	if c.Type == TypeText && strings.TrimSpace(c.Content) == "" {
		return invalid("text comment requires content")
	}
	if err := validateAnnotation(c.Type, c.Annotation); err != nil {
		return invalid(err.Error())
	}
	for emoji, count := range c.ReactionCounts {
		if count < 0 {
			return invalid(fmt.Sprintf("reaction %s has negative count", emoji))
		}
	}
	return nil
}

func invalid(message string) error {
	return services.Wrap(services.ErrValidation, "comments", "validate", message, nil)
}
