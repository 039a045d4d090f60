package api

import (
	"encoding/json"
	"maps"
	"slices"
	"time"

	"reelreview/internal/comments"
	"reelreview/internal/review"
	"reelreview/internal/store"
	"reelreview/internal/timecode"
	"reelreview/internal/video"
)

// FromVideo converts a stored asset to its API representation.
func FromVideo(rec *store.VideoRecord) Video {
	if rec == nil {
		return Video{}
	}
	dto := fromAsset(rec.Asset)
	dto.CreatedAt = formatTime(rec.CreatedAt)
	return dto
}

func fromAsset(a video.Asset) Video {
	return Video{
		ID:             a.ID,
		Title:          a.Title,
		SourceURL:      a.SourceURL,
		ThumbnailURL:   a.ThumbnailURL,
		DurationMs:     a.DurationMs,
		Duration:       timecode.FormatDuration(a.DurationMs),
		FrameRate:      a.FrameRate,
		FrameCount:     a.FrameCount(),
		Width:          a.Width,
		Height:         a.Height,
		AllowDownloads: a.AllowDownloads,
	}
}

// FromComment converts a comment, including threaded replies, using the
// asset's frame rate for the timecode label.
func FromComment(c comments.Comment, frameRate float64) Comment {
	dto := Comment{
		ID:              c.ID,
		VideoID:         c.VideoID,
		ParentID:        c.ParentID,
		Content:         c.Content,
		DisplayContent:  comments.RenderMentions(c.Content),
		TimestampMs:     c.TimestampMs,
		Timecode:        timecode.MsToSMPTE(c.TimestampMs, frameRate),
		Priority:        c.Priority.String(),
		Status:          string(c.Status),
		ResolutionNotes: c.ResolutionNotes,
		Type:            string(c.Type),
		Category:        c.Category,
		Tags:            slices.Clone(c.Tags),
		MentionedUsers:  slices.Clone(c.MentionedUsers),
		User:            User{ID: c.User.ID, Name: c.User.Name, AvatarURL: c.User.AvatarURL},
		CreatedAt:       formatTime(c.CreatedAt),
		UpdatedAt:       formatTime(c.UpdatedAt),
		EditedAt:        formatTimePtr(c.EditedAt),
		ResolvedAt:      formatTimePtr(c.ResolvedAt),
	}
	if raw, err := comments.MarshalAnnotation(c.Annotation); err == nil && raw != nil {
		dto.Annotation = json.RawMessage(raw)
	}
	if len(c.ReactionCounts) > 0 {
		dto.Reactions = maps.Clone(c.ReactionCounts)
	}
	if len(c.ReactedBy) > 0 {
		dto.ReactedBy = make(map[string][]string, len(c.ReactedBy))
		for emoji, users := range c.ReactedBy {
			dto.ReactedBy[emoji] = slices.Clone(users)
		}
	}
	for _, reply := range c.Replies {
		dto.Replies = append(dto.Replies, FromComment(reply, frameRate))
	}
	return dto
}

// FromComments converts a comment slice, preserving order.
func FromComments(list []comments.Comment, frameRate float64) []Comment {
	out := make([]Comment, 0, len(list))
	for _, c := range list {
		out = append(out, FromComment(c, frameRate))
	}
	return out
}

// FromSummary converts comment counts, keying priorities by label.
func FromSummary(s comments.Summary) CommentSummary {
	dto := CommentSummary{
		Total:      s.Total,
		Open:       s.Open,
		Resolved:   s.Resolved,
		Replies:    s.Replies,
		ByPriority: make(map[string]int, len(s.ByPriority)),
	}
	for p, n := range s.ByPriority {
		dto.ByPriority[p.String()] = n
	}
	return dto
}

// FromMarkers converts timeline markers.
func FromMarkers(markers []comments.Marker) []Marker {
	out := make([]Marker, 0, len(markers))
	for _, m := range markers {
		out = append(out, Marker{
			CommentID:   m.CommentID,
			TimestampMs: m.TimestampMs,
			Percent:     m.Percent,
			Priority:    m.Priority.String(),
			Resolved:    m.Resolved,
		})
	}
	return out
}

// FromParticipant converts a review participant.
func FromParticipant(p review.Participant) Participant {
	return Participant{
		ID:        p.ID,
		SessionID: p.SessionID,
		UserID:    p.UserID,
		Email:     p.Email,
		Name:      p.Name,
		Label:     p.Label(),
		Role:      string(p.Role),
		Status:    string(p.Status),
		Note:      p.Note,
		InvitedAt: formatTime(p.InvitedAt),
		DecidedAt: formatTimePtr(p.DecidedAt),
	}
}

// FromState converts a session snapshot with its participants and progress.
func FromState(s review.State, now time.Time) Session {
	dto := fromSession(s.Session, now)
	progress := review.ProgressOf(s)
	dto.Progress = Progress{
		Approved:         progress.Approved,
		Required:         progress.Required,
		Percent:          progress.Percent,
		Rejected:         progress.Rejected,
		ChangesRequested: progress.ChangesRequested,
		Pending:          progress.Pending,
	}
	dto.Participants = make([]Participant, 0, len(s.Participants))
	for _, p := range s.Participants {
		dto.Participants = append(dto.Participants, FromParticipant(p))
	}
	return dto
}

// LockedSession is the summary of a password-gated session shown to callers
// without the password.
func LockedSession(s review.Session, now time.Time) Session {
	dto := fromSession(s, now)
	dto.Locked = true
	dto.Progress = Progress{Required: s.RequiredApprovers}
	dto.Participants = []Participant{}
	return dto
}

func fromSession(s review.Session, now time.Time) Session {
	return Session{
		ID:                s.ID,
		VideoID:           s.VideoID,
		OwnerID:           s.OwnerID,
		Title:             s.Title,
		Description:       s.Description,
		DueDate:           formatTimePtr(s.DueDate),
		Overdue:           review.IsOverdue(s, now),
		RequiredApprovers: s.RequiredApprovers,
		IsPublic:          s.IsPublic,
		HasPassword:       s.Password != "",
		Status:            string(s.Status),
		SupersedesID:      s.SupersedesID,
		CreatedAt:         formatTime(s.CreatedAt),
		UpdatedAt:         formatTime(s.UpdatedAt),
		Participants:      []Participant{},
	}
}

// FromHealth converts a database health report. A failed check keeps the
// fields read before the failure.
func FromHealth(h store.DatabaseHealth, err error) Database {
	db := Database{
		Exists:         h.DatabaseExists,
		SizeBytes:      h.SizeBytes,
		SchemaVersion:  h.SchemaVersion,
		IntegrityCheck: h.IntegrityCheck,
	}
	if err != nil {
		db.Error = err.Error()
	}
	return db
}

// FromStats converts store counters.
func FromStats(s store.Stats) StoreStats {
	byStatus := s.SessionsByStatus
	if byStatus == nil {
		byStatus = map[string]int{}
	}
	return StoreStats{
		Videos:           s.Videos,
		Comments:         s.Comments,
		OpenComments:     s.OpenComments,
		Sessions:         s.Sessions,
		SessionsByStatus: byStatus,
	}
}
