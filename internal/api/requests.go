package api

import (
	"encoding/json"
	"time"

	"reelreview/internal/geometry"
)

// RegisterVideoRequest registers or updates a video asset. A zero frame rate
// falls back to the configured default.
type RegisterVideoRequest struct {
	ID             string  `json:"id" validate:"required,max=128"`
	Title          string  `json:"title" validate:"required,max=256"`
	SourceURL      string  `json:"sourceUrl" validate:"omitempty,url"`
	ThumbnailURL   string  `json:"thumbnailUrl" validate:"omitempty,url"`
	DurationMs     int64   `json:"durationMs" validate:"gte=0"`
	FrameRate      float64 `json:"frameRate" validate:"gte=0,lte=240"`
	Width          int     `json:"width" validate:"gte=0"`
	Height         int     `json:"height" validate:"gte=0"`
	AllowDownloads bool    `json:"allowDownloads"`
}

// UserRequest identifies the acting user.
type UserRequest struct {
	ID        string `json:"id" validate:"required,max=128"`
	Name      string `json:"name" validate:"required,max=128"`
	AvatarURL string `json:"avatarUrl" validate:"omitempty,url"`
}

// CreateCommentRequest adds a root comment. When SessionID and ParticipantID
// are set the participant is marked as having commented.
type CreateCommentRequest struct {
	ID            string          `json:"id" validate:"omitempty,max=128"`
	Content       string          `json:"content"`
	TimestampMs   int64           `json:"timestampMs" validate:"gte=0"`
	Priority      string          `json:"priority" validate:"omitempty,oneof=normal important critical 0 1 2"`
	Type          string          `json:"type" validate:"omitempty,oneof=point region drawing text arrow audio"`
	Annotation    json.RawMessage `json:"annotation"`
	Category      string          `json:"category" validate:"max=64"`
	Tags          []string        `json:"tags" validate:"max=20,dive,required,max=32"`
	Author        UserRequest     `json:"author"`
	SessionID     string          `json:"sessionId" validate:"required_with=ParticipantID"`
	ParticipantID string          `json:"participantId" validate:"required_with=SessionID"`
}

// ImportCommentsRequest adds a batch of root comments to one video. The
// batch is stored all or nothing and cannot carry session activity.
type ImportCommentsRequest struct {
	Comments []CreateCommentRequest `json:"comments" validate:"required,min=1,max=500,dive"`
}

// ReplyCommentRequest adds a reply to a root comment.
type ReplyCommentRequest struct {
	ID       string      `json:"id" validate:"omitempty,max=128"`
	Content  string      `json:"content" validate:"required"`
	Priority string      `json:"priority" validate:"omitempty,oneof=normal important critical 0 1 2"`
	Author   UserRequest `json:"author"`
}

// EditCommentRequest changes editable comment fields. Omitted fields are kept.
type EditCommentRequest struct {
	Content  *string   `json:"content"`
	Priority *string   `json:"priority" validate:"omitempty,oneof=normal important critical 0 1 2"`
	Tags     *[]string `json:"tags" validate:"omitempty,max=20"`
	Category *string   `json:"category" validate:"omitempty,max=64"`
}

// ResolveCommentRequest resolves a comment with optional notes.
type ResolveCommentRequest struct {
	Notes string `json:"notes" validate:"max=2000"`
}

// ReactCommentRequest toggles a reaction.
type ReactCommentRequest struct {
	Emoji  string `json:"emoji" validate:"required,max=32"`
	UserID string `json:"userId" validate:"required,max=128"`
}

// InviteRequest adds a participant. Either UserID or Email is required.
type InviteRequest struct {
	ID     string `json:"id" validate:"omitempty,max=128"`
	UserID string `json:"userId" validate:"required_without=Email,max=128"`
	Email  string `json:"email" validate:"omitempty,email,max=254"`
	Name   string `json:"name" validate:"max=128"`
	Role   string `json:"role" validate:"omitempty,oneof=reviewer approver viewer"`
}

// CreateSessionRequest opens a review session. A zero RequiredApprovers
// falls back to the configured default.
type CreateSessionRequest struct {
	ID                string          `json:"id" validate:"omitempty,max=128"`
	OwnerID           string          `json:"ownerId" validate:"max=128"`
	Title             string          `json:"title" validate:"required,max=200"`
	Description       string          `json:"description" validate:"max=4000"`
	DueDate           *time.Time      `json:"dueDate"`
	RequiredApprovers int             `json:"requiredApprovers" validate:"gte=0,lte=50"`
	IsPublic          bool            `json:"isPublic"`
	Password          string          `json:"password" validate:"omitempty,min=4,max=128"`
	Participants      []InviteRequest `json:"participants" validate:"dive"`
}

// DecisionRequest records a participant verdict.
type DecisionRequest struct {
	Decision string `json:"decision" validate:"required,oneof=approve reject request_changes"`
	Note     string `json:"note" validate:"max=2000"`
}

// PathRequest carries raw stroke points for smoothing or simplification. A
// nil tolerance uses the configured default.
type PathRequest struct {
	Points    []geometry.Point `json:"points" validate:"required,min=1,max=20000"`
	Tolerance *float64         `json:"tolerance" validate:"omitempty,gte=0"`
}

// DrawingRequest replays drawing operations on top of an optional base
// drawing. Operations run in order through the configured capture filter
// and undo history.
type DrawingRequest struct {
	Base       *geometry.DrawingData `json:"base"`
	Operations []DrawingOperation    `json:"operations" validate:"required,min=1,max=1000,dive"`
}

// DrawingOperation is one step of a DrawingRequest. Stroke operations take
// the raw pointer samples of a pen gesture; shape operations take the drag
// start and end. An empty color or zero width uses the configured defaults.
type DrawingOperation struct {
	Op     string           `json:"op" validate:"required,oneof=stroke shape undo redo clear"`
	Tool   string           `json:"tool" validate:"omitempty,oneof=arrow rectangle circle"`
	Points []geometry.Point `json:"points" validate:"max=20000"`
	Color  string           `json:"color" validate:"omitempty,hexcolor"`
	Width  float64          `json:"width" validate:"gte=0,lte=100"`
}
