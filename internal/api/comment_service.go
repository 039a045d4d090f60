package api

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"reelreview/internal/comments"
	"reelreview/internal/logging"
	"reelreview/internal/review"
	"reelreview/internal/services"
	"reelreview/internal/video"
)

// Comments queries a video's comments. Summary counts cover the whole video;
// markers and the comment list honour the filters.
func (s *Service) Comments(ctx context.Context, videoID string, opts ListOptions) (CommentList, error) {
	rec, err := s.loadVideo(ctx, videoID)
	if err != nil {
		return CommentList{}, s.fail(ctx, "list_comments", err)
	}
	list, err := s.repo.CommentsByVideo(ctx, videoID)
	if err != nil {
		return CommentList{}, s.fail(ctx, "list_comments", err)
	}
	filters, field, err := s.queryFrom(opts)
	if err != nil {
		return CommentList{}, s.fail(ctx, "list_comments", err)
	}

	var view []comments.Comment
	switch {
	case opts.Threaded:
		roots := make([]comments.Comment, 0, len(list))
		var replies []comments.Comment
		for _, c := range list {
			if c.IsReply() {
				replies = append(replies, c)
			} else {
				roots = append(roots, c)
			}
		}
		roots = s.narrow(comments.Filter(roots, filters), opts)
		roots = comments.Sort(roots, field, !opts.Descending)
		replies = comments.Sort(replies, comments.SortByCreated, true)
		view = comments.BuildThreads(append(roots, replies...))
	default:
		view = comments.Sort(s.narrow(comments.Filter(list, filters), opts), field, !opts.Descending)
	}

	return CommentList{
		VideoID:  videoID,
		Comments: FromComments(view, rec.FrameRate),
		Summary:  FromSummary(comments.Summarize(list)),
		Markers:  FromMarkers(comments.Markers(view, rec.Asset)),
	}, nil
}

func (s *Service) narrow(list []comments.Comment, opts ListOptions) []comments.Comment {
	if opts.NearMs == nil {
		return list
	}
	return comments.Near(list, *opts.NearMs, opts.WindowMs)
}

func (s *Service) queryFrom(opts ListOptions) (comments.Filters, comments.SortField, error) {
	filters := comments.Filters{
		IsResolved:  opts.Resolved,
		SearchQuery: opts.Search,
		Category:    opts.Category,
		Tags:        opts.Tags,
	}
	for _, raw := range opts.Priorities {
		p, err := comments.ParsePriority(raw)
		if err != nil {
			return comments.Filters{}, "", err
		}
		filters.Priorities = append(filters.Priorities, p)
	}
	sortKey := opts.Sort
	if strings.TrimSpace(sortKey) == "" {
		sortKey = s.cfg.Comments.DefaultSort
	}
	field, err := comments.ParseSortField(sortKey)
	if err != nil {
		return comments.Filters{}, "", err
	}
	return filters, field, nil
}

// CreateComment adds a root comment to a video.
func (s *Service) CreateComment(ctx context.Context, videoID string, req CreateCommentRequest) (Comment, error) {
	ctx = services.WithVideoID(ctx, videoID)
	ctx = services.WithActorID(ctx, req.Author.ID)
	if err := validateRequest("create comment", req); err != nil {
		return Comment{}, s.fail(ctx, "create_comment", err)
	}
	draft, err := s.draftFrom(req.ID, req.Content, req.Priority, req.Author)
	if err != nil {
		return Comment{}, s.fail(ctx, "create_comment", err)
	}
	draft.TimestampMs = req.TimestampMs
	draft.Category = req.Category
	draft.Tags = req.Tags
	if draft.Type, draft.Annotation, err = decodeAnnotation(req.Type, req.Annotation); err != nil {
		return Comment{}, s.fail(ctx, "create_comment", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.loadVideo(ctx, videoID)
	if err != nil {
		return Comment{}, s.fail(ctx, "create_comment", err)
	}
	list, err := s.repo.CommentsByVideo(ctx, videoID)
	if err != nil {
		return Comment{}, s.fail(ctx, "create_comment", err)
	}

	var (
		state      review.State
		hasSession bool
	)
	if req.SessionID != "" {
		ctx = services.WithSessionID(ctx, req.SessionID)
		if state, err = s.loadState(ctx, req.SessionID); err != nil {
			return Comment{}, s.fail(ctx, "create_comment", err)
		}
		if state.Session.VideoID != videoID {
			err = services.Wrap(services.ErrValidation, "api", "create comment",
				fmt.Sprintf("session %s reviews video %s, not %s", state.Session.ID, state.Session.VideoID, videoID), nil)
			return Comment{}, s.fail(ctx, "create_comment", err)
		}
		if state, _, err = review.MarkCommented(state, req.ParticipantID, s.now()); err != nil {
			return Comment{}, s.fail(ctx, "create_comment", err)
		}
		hasSession = true
	}

	c, err := comments.New(draft, rec.Asset, s.now())
	if err != nil {
		return Comment{}, s.fail(ctx, "create_comment", err)
	}
	if _, err := comments.Add(list, c); err != nil {
		return Comment{}, s.fail(ctx, "create_comment", err)
	}
	if err := s.repo.SaveComment(ctx, c); err != nil {
		return Comment{}, s.fail(ctx, "create_comment", err)
	}
	if hasSession {
		if err := s.repo.SaveReview(ctx, state); err != nil {
			return Comment{}, s.fail(ctx, "create_comment", err)
		}
	}

	s.metrics.CommentCreated(string(c.Type), false)
	s.logCommentEvent(ctx, "comment created", "comment_created", c)
	return FromComment(c, rec.FrameRate), nil
}

// ImportComments adds every comment in req to videoID in one transaction.
// A single invalid or duplicate comment rejects the whole batch.
func (s *Service) ImportComments(ctx context.Context, videoID string, req ImportCommentsRequest) (CommentList, error) {
	ctx = services.WithVideoID(ctx, videoID)
	if err := validateRequest("import comments", req); err != nil {
		return CommentList{}, s.fail(ctx, "import_comments", err)
	}
	drafts := make([]comments.Draft, 0, len(req.Comments))
	for i, item := range req.Comments {
		if item.SessionID != "" {
			err := services.Wrap(services.ErrValidation, "api", "import comments",
				fmt.Sprintf("comment %d: imported comments cannot belong to a review session", i), nil)
			return CommentList{}, s.fail(ctx, "import_comments", err)
		}
		draft, err := s.draftFrom(item.ID, item.Content, item.Priority, item.Author)
		if err != nil {
			return CommentList{}, s.fail(ctx, "import_comments", err)
		}
		draft.TimestampMs = item.TimestampMs
		draft.Category = item.Category
		draft.Tags = item.Tags
		if draft.Type, draft.Annotation, err = decodeAnnotation(item.Type, item.Annotation); err != nil {
			return CommentList{}, s.fail(ctx, "import_comments", err)
		}
		drafts = append(drafts, draft)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.loadVideo(ctx, videoID)
	if err != nil {
		return CommentList{}, s.fail(ctx, "import_comments", err)
	}
	list, err := s.repo.CommentsByVideo(ctx, videoID)
	if err != nil {
		return CommentList{}, s.fail(ctx, "import_comments", err)
	}
	now := s.now()
	added := make([]comments.Comment, 0, len(drafts))
	for _, draft := range drafts {
		c, err := comments.New(draft, rec.Asset, now)
		if err != nil {
			return CommentList{}, s.fail(ctx, "import_comments", err)
		}
		if list, err = comments.Add(list, c); err != nil {
			return CommentList{}, s.fail(ctx, "import_comments", err)
		}
		added = append(added, c)
	}
	if err := s.repo.SaveComments(ctx, added); err != nil {
		return CommentList{}, s.fail(ctx, "import_comments", err)
	}

	for _, c := range added {
		s.metrics.CommentCreated(string(c.Type), false)
	}
	logging.WithContext(ctx, s.logger).Info("comments imported",
		logging.String(logging.FieldEventType, "comments_imported"),
		logging.Int("count", len(added)),
	)
	return CommentList{
		VideoID:  videoID,
		Comments: FromComments(added, rec.FrameRate),
		Summary:  FromSummary(comments.Summarize(added)),
	}, nil
}

// ReplyComment adds a reply to a root comment.
func (s *Service) ReplyComment(ctx context.Context, parentID string, req ReplyCommentRequest) (Comment, error) {
	ctx = services.WithActorID(ctx, req.Author.ID)
	if err := validateRequest("reply comment", req); err != nil {
		return Comment{}, s.fail(ctx, "reply_comment", err)
	}
	draft, err := s.draftFrom(req.ID, req.Content, req.Priority, req.Author)
	if err != nil {
		return Comment{}, s.fail(ctx, "reply_comment", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	parent, rec, list, err := s.loadCommentScope(ctx, parentID)
	if err != nil {
		return Comment{}, s.fail(ctx, "reply_comment", err)
	}
	ctx = services.WithVideoID(ctx, parent.VideoID)
	_, reply, err := comments.Reply(list, parentID, draft, rec, s.now())
	if err != nil {
		return Comment{}, s.fail(ctx, "reply_comment", err)
	}
	if err := s.repo.SaveComment(ctx, reply); err != nil {
		return Comment{}, s.fail(ctx, "reply_comment", err)
	}
	s.metrics.CommentCreated(string(reply.Type), true)
	s.logCommentEvent(ctx, "reply created", "comment_replied", reply)
	return FromComment(reply, rec.FrameRate), nil
}

// EditComment changes content, priority, tags or category.
func (s *Service) EditComment(ctx context.Context, id string, req EditCommentRequest) (Comment, error) {
	if err := validateRequest("edit comment", req); err != nil {
		return Comment{}, s.fail(ctx, "edit_comment", err)
	}
	changes := comments.Changes{Tags: req.Tags, Category: req.Category}
	if req.Content != nil {
		if err := s.checkContentLength(*req.Content); err != nil {
			return Comment{}, s.fail(ctx, "edit_comment", err)
		}
		changes.Content = req.Content
	}
	if req.Priority != nil {
		p, err := comments.ParsePriority(*req.Priority)
		if err != nil {
			return Comment{}, s.fail(ctx, "edit_comment", err)
		}
		changes.Priority = &p
	}
	return s.mutateComment(ctx, id, "edit_comment", "comment edited", func(list []comments.Comment) ([]comments.Comment, comments.Comment, error) {
		return comments.Edit(list, id, changes, s.now())
	})
}

// ResolveComment marks a comment resolved with optional notes.
func (s *Service) ResolveComment(ctx context.Context, id string, req ResolveCommentRequest) (Comment, error) {
	if err := validateRequest("resolve comment", req); err != nil {
		return Comment{}, s.fail(ctx, "resolve_comment", err)
	}
	dto, err := s.mutateComment(ctx, id, "resolve_comment", "comment resolved", func(list []comments.Comment) ([]comments.Comment, comments.Comment, error) {
		return comments.Resolve(list, id, req.Notes, s.now())
	})
	if err == nil {
		s.metrics.CommentResolved()
	}
	return dto, err
}

// ReopenComment returns a resolved comment to open.
func (s *Service) ReopenComment(ctx context.Context, id string) (Comment, error) {
	return s.mutateComment(ctx, id, "reopen_comment", "comment reopened", func(list []comments.Comment) ([]comments.Comment, comments.Comment, error) {
		return comments.Reopen(list, id, s.now())
	})
}

// ReactComment toggles userID's emoji reaction.
func (s *Service) ReactComment(ctx context.Context, id string, req ReactCommentRequest) (Comment, error) {
	ctx = services.WithActorID(ctx, req.UserID)
	if err := validateRequest("react comment", req); err != nil {
		return Comment{}, s.fail(ctx, "react_comment", err)
	}
	return s.mutateComment(ctx, id, "react_comment", "reaction toggled", func(list []comments.Comment) ([]comments.Comment, comments.Comment, error) {
		return comments.React(list, id, req.Emoji, req.UserID, s.now())
	})
}

// DeleteComment removes a comment and, for a root, its replies. It returns
// the removed ids.
func (s *Service) DeleteComment(ctx context.Context, id string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, _, list, err := s.loadCommentScope(ctx, id)
	if err != nil {
		return nil, s.fail(ctx, "delete_comment", err)
	}
	ctx = services.WithVideoID(ctx, c.VideoID)
	_, removed, err := comments.Delete(list, id)
	if err != nil {
		return nil, s.fail(ctx, "delete_comment", err)
	}
	if _, err := s.repo.DeleteComments(ctx, removed...); err != nil {
		return nil, s.fail(ctx, "delete_comment", err)
	}
	s.metrics.CommentsDeleted(len(removed))
	logging.WithContext(ctx, s.logger).Info("comment deleted",
		logging.String(logging.FieldCommentID, id),
		logging.String(logging.FieldEventType, "comment_deleted"),
		logging.Int("removed", len(removed)),
	)
	return removed, nil
}

type commentMutation func(list []comments.Comment) ([]comments.Comment, comments.Comment, error)

func (s *Service) mutateComment(ctx context.Context, id, operation, message string, apply commentMutation) (Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, rec, list, err := s.loadCommentScope(ctx, id)
	if err != nil {
		return Comment{}, s.fail(ctx, operation, err)
	}
	ctx = services.WithVideoID(ctx, current.VideoID)
	_, updated, err := apply(list)
	if err != nil {
		return Comment{}, s.fail(ctx, operation, err)
	}
	if err := s.repo.SaveComment(ctx, updated); err != nil {
		return Comment{}, s.fail(ctx, operation, err)
	}
	s.logCommentEvent(ctx, message, operation, updated)
	return FromComment(updated, rec.FrameRate), nil
}

// loadCommentScope loads comment id with its video and the video's flat
// comment collection.
func (s *Service) loadCommentScope(ctx context.Context, id string) (comments.Comment, video.Asset, []comments.Comment, error) {
	c, err := s.repo.GetComment(ctx, id)
	if err != nil {
		return comments.Comment{}, video.Asset{}, nil, err
	}
	if c == nil {
		return comments.Comment{}, video.Asset{}, nil, services.Wrap(services.ErrNotFound, "api", "load comment", fmt.Sprintf("comment %s not found", id), nil)
	}
	rec, err := s.loadVideo(ctx, c.VideoID)
	if err != nil {
		return comments.Comment{}, video.Asset{}, nil, err
	}
	list, err := s.repo.CommentsByVideo(ctx, c.VideoID)
	if err != nil {
		return comments.Comment{}, video.Asset{}, nil, err
	}
	return *c, rec.Asset, list, nil
}

func (s *Service) draftFrom(id, content, priority string, author UserRequest) (comments.Draft, error) {
	if err := s.checkContentLength(content); err != nil {
		return comments.Draft{}, err
	}
	p, err := comments.ParsePriority(priority)
	if err != nil {
		return comments.Draft{}, err
	}
	return comments.Draft{
		ID:       id,
		Content:  content,
		Priority: p,
		Author:   comments.User{ID: author.ID, Name: author.Name, AvatarURL: author.AvatarURL},
	}, nil
}

func (s *Service) checkContentLength(content string) error {
	limit := s.cfg.Comments.MaxContentLength
	if limit > 0 && utf8.RuneCountInString(content) > limit {
		return services.Wrap(services.ErrValidation, "api", "check content",
			fmt.Sprintf("content exceeds %d characters", limit), nil)
	}
	return nil
}

func decodeAnnotation(rawType string, raw []byte) (comments.Type, comments.Annotation, error) {
	if strings.TrimSpace(rawType) == "" {
		if trimmed := strings.TrimSpace(string(raw)); trimmed != "" && trimmed != "null" {
			return "", nil, services.Wrap(services.ErrValidation, "api", "decode annotation", "type is required with an annotation", nil)
		}
		return "", nil, nil
	}
	t, err := comments.ParseType(rawType)
	if err != nil {
		return "", nil, err
	}
	annotation, err := comments.UnmarshalAnnotation(t, raw)
	if err != nil {
		return "", nil, err
	}
	return t, annotation, nil
}

func (s *Service) logCommentEvent(ctx context.Context, message, eventType string, c comments.Comment) {
	logger := logging.WithContext(ctx, s.logger)
	logger.Info(message,
		logging.String(logging.FieldCommentID, c.ID),
		logging.String(logging.FieldEventType, eventType),
		logging.String("comment_type", string(c.Type)),
		logging.String("status", string(c.Status)),
	)
	if s.directory == nil || len(c.MentionedUsers) == 0 {
		return
	}
	if _, unknown := comments.ResolveMentions(c, s.directory); len(unknown) > 0 {
		logging.WarnWithContext(logger, "comment mentions unknown users", "unknown_mentions",
			logging.String(logging.FieldCommentID, c.ID),
			logging.Any("user_ids", unknown),
			logging.String(logging.FieldErrorHint, "add the users to the team directory"),
		)
	}
}
