package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"reelreview/internal/comments"
)

const commentColumns = "id, video_id, parent_id, content, timestamp_ms, priority, status, resolution_notes, comment_type, annotation_json, category, tags_json, mentions_json, reactions_json, user_id, user_name, user_avatar_url, created_at, updated_at, edited_at, resolved_at"

// reactions is the persisted form of a comment's reaction state. Counts are
// derived from the user lists on load.
type reactions map[string][]string

// SaveComment inserts or replaces a comment row. Replies are not saved
// recursively; the collection is flat.
func (s *Store) SaveComment(ctx context.Context, c comments.Comment) error {
	args, err := commentArgs(c)
	if err != nil {
		return err
	}
	if _, err := s.execWithRetry(ctx, upsertCommentSQL, args...); err != nil {
		return fmt.Errorf("save comment: %w", err)
	}
	return nil
}

// SaveComments writes several comments in one transaction.
func (s *Store) SaveComments(ctx context.Context, list []comments.Comment) error {
	if len(list) == 0 {
		return nil
	}
	rows := make([][]any, 0, len(list))
	for _, c := range list {
		args, err := commentArgs(c)
		if err != nil {
			return err
		}
		rows = append(rows, args)
	}
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		for _, args := range rows {
			if _, err := tx.ExecContext(ctx, upsertCommentSQL, args...); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save comments: %w", err)
	}
	return nil
}

// GetComment fetches one comment. A missing comment returns nil without error.
func (s *Store) GetComment(ctx context.Context, id string) (*comments.Comment, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+commentColumns+` FROM comments WHERE id = ?`, id)
	c, err := scanComment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get comment: %w", err)
	}
	return c, nil
}

// CommentsByVideo returns the flat comment collection of a video ordered by
// timestamp then creation time.
func (s *Store) CommentsByVideo(ctx context.Context, videoID string) ([]comments.Comment, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT `+commentColumns+` FROM comments WHERE video_id = ? ORDER BY timestamp_ms, created_at, id`,
		videoID,
	)
	if err != nil {
		return nil, fmt.Errorf("query comments: %w", err)
	}
	defer rows.Close()

	var out []comments.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// DeleteComments removes the comments with the given ids and reports how many
// rows were deleted.
func (s *Store) DeleteComments(ctx context.Context, ids ...string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	res, err := s.execWithRetry(ctx, `DELETE FROM comments WHERE id IN (`+makePlaceholders(len(ids))+`)`, args...)
	if err != nil {
		return 0, fmt.Errorf("delete comments: %w", err)
	}
	return res.RowsAffected()
}

const upsertCommentSQL = `INSERT INTO comments (` + commentColumns + `)
    VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    ON CONFLICT(id) DO UPDATE SET
        parent_id = excluded.parent_id,
        content = excluded.content,
        timestamp_ms = excluded.timestamp_ms,
        priority = excluded.priority,
        status = excluded.status,
        resolution_notes = excluded.resolution_notes,
        comment_type = excluded.comment_type,
        annotation_json = excluded.annotation_json,
        category = excluded.category,
        tags_json = excluded.tags_json,
        mentions_json = excluded.mentions_json,
        reactions_json = excluded.reactions_json,
        user_id = excluded.user_id,
        user_name = excluded.user_name,
        user_avatar_url = excluded.user_avatar_url,
        updated_at = excluded.updated_at,
        edited_at = excluded.edited_at,
        resolved_at = excluded.resolved_at`

func commentArgs(c comments.Comment) ([]any, error) {
	annotation, err := comments.MarshalAnnotation(c.Annotation)
	if err != nil {
		return nil, err
	}
	var annotationJSON any
	if annotation != nil {
		annotationJSON = string(annotation)
	}
	tags, err := encodeJSON(c.Tags, len(c.Tags) == 0)
	if err != nil {
		return nil, fmt.Errorf("encode tags: %w", err)
	}
	mentions, err := encodeJSON(c.MentionedUsers, len(c.MentionedUsers) == 0)
	if err != nil {
		return nil, fmt.Errorf("encode mentions: %w", err)
	}
	reacted, err := encodeJSON(reactions(c.ReactedBy), len(c.ReactedBy) == 0)
	if err != nil {
		return nil, fmt.Errorf("encode reactions: %w", err)
	}
	return []any{
		c.ID,
		c.VideoID,
		nullableString(c.ParentID),
		c.Content,
		c.TimestampMs,
		int(c.Priority),
		string(c.Status),
		nullableString(c.ResolutionNotes),
		string(c.Type),
		annotationJSON,
		nullableString(c.Category),
		tags,
		mentions,
		reacted,
		nullableString(c.User.ID),
		nullableString(c.User.Name),
		nullableString(c.User.AvatarURL),
		formatTime(c.CreatedAt),
		formatTime(c.UpdatedAt),
		nullableTime(c.EditedAt),
		nullableTime(c.ResolvedAt),
	}, nil
}

func scanComment(scanner rowScanner) (*comments.Comment, error) {
	var (
		c             comments.Comment
		parentID      sql.NullString
		priority      int
		status        string
		notes         sql.NullString
		commentType   string
		annotationRaw sql.NullString
		category      sql.NullString
		tagsRaw       sql.NullString
		mentionsRaw   sql.NullString
		reactionsRaw  sql.NullString
		userID        sql.NullString
		userName      sql.NullString
		userAvatar    sql.NullString
		createdRaw    sql.NullString
		updatedRaw    sql.NullString
		editedRaw     sql.NullString
		resolvedRaw   sql.NullString
	)
	if err := scanner.Scan(
		&c.ID,
		&c.VideoID,
		&parentID,
		&c.Content,
		&c.TimestampMs,
		&priority,
		&status,
		&notes,
		&commentType,
		&annotationRaw,
		&category,
		&tagsRaw,
		&mentionsRaw,
		&reactionsRaw,
		&userID,
		&userName,
		&userAvatar,
		&createdRaw,
		&updatedRaw,
		&editedRaw,
		&resolvedRaw,
	); err != nil {
		return nil, err
	}

	c.ParentID = parentID.String
	c.Priority = comments.Priority(priority)
	c.Status = comments.Status(status)
	c.ResolutionNotes = notes.String
	c.Type = comments.Type(commentType)
	c.Category = category.String
	c.User = comments.User{ID: userID.String, Name: userName.String, AvatarURL: userAvatar.String}
	c.CreatedAt = parseTime(createdRaw)
	c.UpdatedAt = parseTime(updatedRaw)
	c.EditedAt = parseTimePtr(editedRaw)
	c.ResolvedAt = parseTimePtr(resolvedRaw)

	if annotationRaw.Valid {
		annotation, err := comments.UnmarshalAnnotation(c.Type, []byte(annotationRaw.String))
		if err != nil {
			return nil, fmt.Errorf("comment %s: %w", c.ID, err)
		}
		c.Annotation = annotation
	}
	if err := decodeJSON(tagsRaw, &c.Tags); err != nil {
		return nil, fmt.Errorf("comment %s tags: %w", c.ID, err)
	}
	if err := decodeJSON(mentionsRaw, &c.MentionedUsers); err != nil {
		return nil, fmt.Errorf("comment %s mentions: %w", c.ID, err)
	}
	var reacted reactions
	if err := decodeJSON(reactionsRaw, &reacted); err != nil {
		return nil, fmt.Errorf("comment %s reactions: %w", c.ID, err)
	}
	if len(reacted) > 0 {
		c.ReactedBy = make(map[string][]string, len(reacted))
		c.ReactionCounts = make(map[string]int, len(reacted))
		for emoji, users := range reacted {
			if len(users) == 0 {
				continue
			}
			c.ReactedBy[emoji] = users
			c.ReactionCounts[emoji] = len(users)
		}
	}
	return &c, nil
}
