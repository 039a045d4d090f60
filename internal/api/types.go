package api

import (
	"encoding/json"
	"time"

	"reelreview/internal/geometry"
)

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Video describes a registered asset.
type Video struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	SourceURL      string  `json:"sourceUrl,omitempty"`
	ThumbnailURL   string  `json:"thumbnailUrl,omitempty"`
	DurationMs     int64   `json:"durationMs"`
	Duration       string  `json:"duration"`
	FrameRate      float64 `json:"frameRate"`
	FrameCount     int64   `json:"frameCount"`
	Width          int     `json:"width"`
	Height         int     `json:"height"`
	AllowDownloads bool    `json:"allowDownloads"`
	CreatedAt      string  `json:"createdAt,omitempty"`
}

// User is a comment author.
type User struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// Comment is the transport form of a comment and, when threaded, its replies.
type Comment struct {
	ID              string              `json:"id"`
	VideoID         string              `json:"videoId"`
	ParentID        string              `json:"parentId,omitempty"`
	Content         string              `json:"content"`
	DisplayContent  string              `json:"displayContent"`
	TimestampMs     int64               `json:"timestampMs"`
	Timecode        string              `json:"timecode"`
	Priority        string              `json:"priority"`
	Status          string              `json:"status"`
	ResolutionNotes string              `json:"resolutionNotes,omitempty"`
	Type            string              `json:"type"`
	Annotation      json.RawMessage     `json:"annotation,omitempty"`
	Category        string              `json:"category,omitempty"`
	Tags            []string            `json:"tags,omitempty"`
	MentionedUsers  []string            `json:"mentionedUsers,omitempty"`
	Reactions       map[string]int      `json:"reactions,omitempty"`
	ReactedBy       map[string][]string `json:"reactedBy,omitempty"`
	User            User                `json:"user"`
	CreatedAt       string              `json:"createdAt,omitempty"`
	UpdatedAt       string              `json:"updatedAt,omitempty"`
	EditedAt        string              `json:"editedAt,omitempty"`
	ResolvedAt      string              `json:"resolvedAt,omitempty"`
	Replies         []Comment           `json:"replies,omitempty"`
}

// CommentSummary counts comments by state.
type CommentSummary struct {
	Total      int            `json:"total"`
	Open       int            `json:"open"`
	Resolved   int            `json:"resolved"`
	Replies    int            `json:"replies"`
	ByPriority map[string]int `json:"byPriority"`
}

// Marker positions a root comment on the timeline.
type Marker struct {
	CommentID   string  `json:"commentId"`
	TimestampMs int64   `json:"timestampMs"`
	Percent     float64 `json:"percent"`
	Priority    string  `json:"priority"`
	Resolved    bool    `json:"resolved"`
}

// CommentList is the response of a comment query.
type CommentList struct {
	VideoID  string         `json:"videoId"`
	Comments []Comment      `json:"comments"`
	Summary  CommentSummary `json:"summary"`
	Markers  []Marker       `json:"markers"`
}

// Participant is the transport form of a review participant.
type Participant struct {
	ID        string `json:"id"`
	SessionID string `json:"sessionId"`
	UserID    string `json:"userId,omitempty"`
	Email     string `json:"email,omitempty"`
	Name      string `json:"name,omitempty"`
	Label     string `json:"label"`
	Role      string `json:"role"`
	Status    string `json:"status"`
	Note      string `json:"note,omitempty"`
	InvitedAt string `json:"invitedAt,omitempty"`
	DecidedAt string `json:"decidedAt,omitempty"`
}

// Progress reports approvals toward the session quorum.
type Progress struct {
	Approved         int     `json:"approved"`
	Required         int     `json:"required"`
	Percent          float64 `json:"percent"`
	Rejected         int     `json:"rejected"`
	ChangesRequested int     `json:"changesRequested"`
	Pending          int     `json:"pending"`
}

// Session is the transport form of a review session. Passwords are never
// serialized; HasPassword tells clients to prompt for one.
type Session struct {
	ID                string        `json:"id"`
	VideoID           string        `json:"videoId"`
	OwnerID           string        `json:"ownerId,omitempty"`
	Title             string        `json:"title"`
	Description       string        `json:"description,omitempty"`
	DueDate           string        `json:"dueDate,omitempty"`
	Overdue           bool          `json:"overdue"`
	RequiredApprovers int           `json:"requiredApprovers"`
	IsPublic          bool          `json:"isPublic"`
	HasPassword       bool          `json:"hasPassword"`
	Locked            bool          `json:"locked,omitempty"`
	Status            string        `json:"status"`
	SupersedesID      string        `json:"supersedesId,omitempty"`
	CreatedAt         string        `json:"createdAt,omitempty"`
	UpdatedAt         string        `json:"updatedAt,omitempty"`
	Progress          Progress      `json:"progress"`
	Participants      []Participant `json:"participants"`
}

// StoreStats summarizes persisted activity.
type StoreStats struct {
	Videos           int            `json:"videos"`
	Comments         int            `json:"comments"`
	OpenComments     int            `json:"openComments"`
	Sessions         int            `json:"sessions"`
	SessionsByStatus map[string]int `json:"sessionsByStatus"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running      bool       `json:"running"`
	PID          int        `json:"pid"`
	DatabasePath string     `json:"databasePath"`
	LockFilePath string     `json:"lockFilePath"`
	APIBind      string     `json:"apiBind"`
	StartedAt    string     `json:"startedAt,omitempty"`
	Stats        StoreStats `json:"stats"`
	Database     Database   `json:"database"`
}

// Database describes the state of the SQLite file behind the store.
type Database struct {
	Exists         bool   `json:"exists"`
	SizeBytes      int64  `json:"sizeBytes"`
	SchemaVersion  int    `json:"schemaVersion"`
	IntegrityCheck string `json:"integrityCheck"`
	Error          string `json:"error,omitempty"`
}

// HealthResponse is the liveness answer of the daemon.
type HealthResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// TimecodeResponse describes one playback position.
type TimecodeResponse struct {
	Ms        int64   `json:"ms"`
	FrameRate float64 `json:"frameRate"`
	Timecode  string  `json:"timecode"`
	Frame     int64   `json:"frame"`
	FrameMs   int64   `json:"frameStartMs"`
}

// PathResponse returns processed stroke points and their SVG rendering.
type PathResponse struct {
	Points     []geometry.Point `json:"points"`
	InputCount int              `json:"inputCount"`
	SVG        string           `json:"svg"`
	Bounds     geometry.Rect    `json:"bounds"`
}

// DrawingResponse is the drawing left after replaying a DrawingRequest.
type DrawingResponse struct {
	Drawing    geometry.DrawingData `json:"drawing"`
	PointCount int                  `json:"pointCount"`
	Bounds     geometry.Rect        `json:"bounds"`
	CanUndo    bool                 `json:"canUndo"`
	CanRedo    bool                 `json:"canRedo"`
}

// VideoList is the response of a video listing.
type VideoList struct {
	Videos []Video `json:"videos"`
}

// SessionList is the response of a session listing.
type SessionList struct {
	VideoID  string    `json:"videoId"`
	Sessions []Session `json:"sessions"`
}

// DeleteCommentResponse lists the ids removed by a delete, replies included.
type DeleteCommentResponse struct {
	Removed []string `json:"removed"`
}

// ErrorResponse is the body of every failed HTTP request.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Kind    string   `json:"kind"`
	Details []string `json:"details,omitempty"`
}

// ListOptions selects, orders and shapes a comment query.
type ListOptions struct {
	Resolved   *bool
	Priorities []string
	Search     string
	Category   string
	Tags       []string
	Sort       string
	Descending bool
	Threaded   bool
	NearMs     *int64
	WindowMs   int64
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTime(*t)
}
