package main

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"reelreview/internal/api"
)

type authorFlags struct {
	id   string
	name string
}

func (a *authorFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&a.id, "author-id", "", "Author user id (defaults to the local user)")
	cmd.Flags().StringVar(&a.name, "author-name", "", "Author display name (defaults to the author id)")
}

func (a authorFlags) user() api.UserRequest {
	id := strings.TrimSpace(a.id)
	if id == "" {
		id = currentUser()
	}
	name := strings.TrimSpace(a.name)
	if name == "" {
		name = id
	}
	return api.UserRequest{ID: id, Name: name}
}

func newCommentCommand(ctx *commandContext) *cobra.Command {
	commentCmd := &cobra.Command{
		Use:   "comment",
		Short: "Manage timestamped comments and threads",
	}
	commentCmd.AddCommand(newCommentAddCommand(ctx))
	commentCmd.AddCommand(newCommentImportCommand(ctx))
	commentCmd.AddCommand(newCommentReplyCommand(ctx))
	commentCmd.AddCommand(newCommentListCommand(ctx))
	commentCmd.AddCommand(newCommentEditCommand(ctx))
	commentCmd.AddCommand(newCommentResolveCommand(ctx))
	commentCmd.AddCommand(newCommentReopenCommand(ctx))
	commentCmd.AddCommand(newCommentReactCommand(ctx))
	commentCmd.AddCommand(newCommentDeleteCommand(ctx))
	return commentCmd
}

func newCommentAddCommand(ctx *commandContext) *cobra.Command {
	var (
		req        api.CreateCommentRequest
		author     authorFlags
		at         string
		annotation string
		point      string
		region     string
	)

	cmd := &cobra.Command{
		Use:   "add <video-id>",
		Short: "Add a comment at a playback position",
		Long: "Add a root comment. --at takes milliseconds or HH:MM:SS:FF at the video's frame rate. " +
			"Spatial annotations come from --point x,y, --region x,y,w,h (percent of the frame) " +
			"or --annotation with raw JSON and --type.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if req.Type, req.Annotation, err = annotationFlags(req.Type, annotation, point, region); err != nil {
				return err
			}
			req.Author = author.user()
			return ctx.withService(cmd, func(c context.Context, svc *api.Service) error {
				video, err := svc.Video(c, args[0])
				if err != nil {
					return err
				}
				if strings.TrimSpace(at) != "" {
					if req.TimestampMs, err = parsePosition(at, video.FrameRate); err != nil {
						return err
					}
				}
				comment, err := svc.CreateComment(c, video.ID, req)
				if err != nil {
					return err
				}
				return printComment(cmd, ctx, "Added", comment)
			})
		},
	}

	cmd.Flags().StringVar(&req.ID, "id", "", "Comment id (generated when empty)")
	cmd.Flags().StringVarP(&req.Content, "message", "m", "", "Comment text; @[Name](user-id) mentions a user")
	cmd.Flags().StringVar(&at, "at", "0", "Position as milliseconds or HH:MM:SS:FF")
	cmd.Flags().StringVarP(&req.Priority, "priority", "p", "", "normal, important or critical")
	cmd.Flags().StringVar(&req.Type, "type", "", "Annotation type: point, region, drawing, text, arrow or audio")
	cmd.Flags().StringVar(&annotation, "annotation", "", "Annotation payload as JSON")
	cmd.Flags().StringVar(&point, "point", "", "Point annotation x,y in percent")
	cmd.Flags().StringVar(&region, "region", "", "Region annotation x,y,width,height in percent")
	cmd.Flags().StringVar(&req.Category, "category", "", "Category label")
	cmd.Flags().StringSliceVar(&req.Tags, "tag", nil, "Tag (repeatable)")
	cmd.Flags().StringVar(&req.SessionID, "session", "", "Review session the comment belongs to")
	cmd.Flags().StringVar(&req.ParticipantID, "participant", "", "Participant commenting in --session")
	author.register(cmd)
	return cmd
}

// annotationFlags builds the annotation payload from the convenience flags.
func annotationFlags(kind, raw, point, region string) (string, json.RawMessage, error) {
	set := 0
	for _, v := range []string{raw, point, region} {
		if strings.TrimSpace(v) != "" {
			set++
		}
	}
	if set > 1 {
		return "", nil, fmt.Errorf("use only one of --annotation, --point and --region")
	}
	switch {
	case strings.TrimSpace(point) != "":
		values, err := parseFloats(point, 2)
		if err != nil {
			return "", nil, fmt.Errorf("invalid --point: %w", err)
		}
		payload, _ := json.Marshal(map[string]float64{"x": values[0], "y": values[1]})
		return "point", payload, nil
	case strings.TrimSpace(region) != "":
		values, err := parseFloats(region, 4)
		if err != nil {
			return "", nil, fmt.Errorf("invalid --region: %w", err)
		}
		payload, _ := json.Marshal(map[string]float64{"x": values[0], "y": values[1], "width": values[2], "height": values[3]})
		return "region", payload, nil
	case strings.TrimSpace(raw) != "":
		if !json.Valid([]byte(raw)) {
			return "", nil, fmt.Errorf("invalid --annotation: not JSON")
		}
		return kind, json.RawMessage(raw), nil
	default:
		return kind, nil, nil
	}
}

func parseFloats(value string, n int) ([]float64, error) {
	parts := strings.Split(value, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("expected %d comma separated numbers", n)
	}
	out := make([]float64, 0, n)
	for _, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", part)
		}
		out = append(out, v)
	}
	return out, nil
}

func newCommentImportCommand(ctx *commandContext) *cobra.Command {
	var (
		fileFlag string
		author   authorFlags
	)

	cmd := &cobra.Command{
		Use:   "import <video-id>",
		Short: "Add a batch of comments from a JSON file",
		Long: "Reads a JSON array of comments (id, content, timestampMs, priority, type, annotation, " +
			"category, tags, author) from --file (- for stdin). Comments without an author get the " +
			"--author-id user. Either every comment is added or none is.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(fileFlag) == "" {
				return fmt.Errorf("--file is required")
			}
			raw, err := readInput(cmd.InOrStdin(), fileFlag)
			if err != nil {
				return fmt.Errorf("read comments: %w", err)
			}
			var req api.ImportCommentsRequest
			if err := json.Unmarshal(raw, &req.Comments); err != nil {
				return fmt.Errorf("decode comments: %w", err)
			}
			fallback := author.user()
			for i := range req.Comments {
				item := &req.Comments[i]
				if strings.TrimSpace(item.Author.ID) == "" {
					item.Author = fallback
				} else if strings.TrimSpace(item.Author.Name) == "" {
					item.Author.Name = item.Author.ID
				}
			}
			return ctx.withService(cmd, func(c context.Context, svc *api.Service) error {
				list, err := svc.ImportComments(c, args[0], req)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, list)
				}
				p := newPrinter(cmd)
				p.printf("Imported %d comments into %s\n", len(list.Comments), args[0])
				for _, comment := range list.Comments {
					p.printf("  %s %s %s\n", comment.ID, comment.Timecode, truncate(comment.DisplayContent, 60))
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&fileFlag, "file", "f", "", "JSON file with comments (- for stdin)")
	author.register(cmd)
	return cmd
}

func newCommentReplyCommand(ctx *commandContext) *cobra.Command {
	var (
		req    api.ReplyCommentRequest
		author authorFlags
	)

	cmd := &cobra.Command{
		Use:   "reply <comment-id>",
		Short: "Reply to a root comment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Author = author.user()
			return ctx.withService(cmd, func(c context.Context, svc *api.Service) error {
				reply, err := svc.ReplyComment(c, args[0], req)
				if err != nil {
					return err
				}
				return printComment(cmd, ctx, "Replied", reply)
			})
		},
	}

	cmd.Flags().StringVar(&req.ID, "id", "", "Reply id (generated when empty)")
	cmd.Flags().StringVarP(&req.Content, "message", "m", "", "Reply text")
	cmd.Flags().StringVarP(&req.Priority, "priority", "p", "", "normal, important or critical")
	author.register(cmd)
	_ = cmd.MarkFlagRequired("message")
	return cmd
}

func newCommentListCommand(ctx *commandContext) *cobra.Command {
	var (
		opts     api.ListOptions
		open     bool
		resolved bool
		near     string
	)

	cmd := &cobra.Command{
		Use:   "list <video-id>",
		Short: "List, filter and sort a video's comments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if open && resolved {
				return fmt.Errorf("--open and --resolved are mutually exclusive")
			}
			if open || resolved {
				opts.Resolved = &resolved
			}
			return ctx.withService(cmd, func(c context.Context, svc *api.Service) error {
				if strings.TrimSpace(near) != "" {
					video, err := svc.Video(c, args[0])
					if err != nil {
						return err
					}
					ms, err := parsePosition(near, video.FrameRate)
					if err != nil {
						return err
					}
					opts.NearMs = &ms
				}
				list, err := svc.Comments(c, args[0], opts)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, list)
				}
				renderCommentList(newPrinter(cmd), list)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&open, "open", false, "Only open comments")
	cmd.Flags().BoolVar(&resolved, "resolved", false, "Only resolved comments")
	cmd.Flags().StringSliceVar(&opts.Priorities, "priority", nil, "Priorities to include (repeatable)")
	cmd.Flags().StringVarP(&opts.Search, "search", "s", "", "Case-insensitive text search over content and author")
	cmd.Flags().StringVar(&opts.Category, "category", "", "Category to include")
	cmd.Flags().StringSliceVar(&opts.Tags, "tag", nil, "Tags to match (any)")
	cmd.Flags().StringVar(&opts.Sort, "sort", "", "timestamp, created or priority (defaults to comments.default_sort)")
	cmd.Flags().BoolVar(&opts.Descending, "desc", false, "Sort descending")
	cmd.Flags().BoolVar(&opts.Threaded, "threaded", false, "Group replies under their root comment")
	cmd.Flags().StringVar(&near, "near", "", "Only comments near a position (ms or HH:MM:SS:FF)")
	cmd.Flags().Int64Var(&opts.WindowMs, "window", 1000, "Window in milliseconds for --near")
	return cmd
}

func renderCommentList(p printer, list api.CommentList) {
	s := list.Summary
	summary := fmt.Sprintf("%d comments: %d open, %d resolved, %d replies", s.Total, s.Open, s.Resolved, s.Replies)
	if len(list.Comments) == 0 {
		p.println("No comments")
		p.println(summary)
		return
	}
	tbl := newListTable(
		column{title: "ID"},
		column{title: "Timecode"},
		column{title: "Priority"},
		column{title: "Status"},
		column{title: "Type"},
		column{title: "Author"},
		column{title: "Comment", wrap: 48},
		column{title: "Reactions"},
		column{title: "Created"},
	)
	for _, c := range list.Comments {
		tbl.add(commentRow(p, c, "")...)
		for _, reply := range c.Replies {
			tbl.add(commentRow(p, reply, "↳ ")...)
		}
	}
	tbl.summary(summary)
	p.println(tbl.render())
}

func commentRow(p printer, c api.Comment, prefix string) []string {
	return []string{
		prefix + c.ID,
		c.Timecode,
		p.priority(c.Priority),
		p.status(c.Status),
		c.Type,
		c.User.Name,
		c.DisplayContent,
		formatReactions(c.Reactions),
		p.relative(c.CreatedAt),
	}
}

func formatReactions(reactions map[string]int) string {
	if len(reactions) == 0 {
		return ""
	}
	emojis := make([]string, 0, len(reactions))
	for emoji := range reactions {
		emojis = append(emojis, emoji)
	}
	sort.Strings(emojis)
	parts := make([]string, 0, len(emojis))
	for _, emoji := range emojis {
		parts = append(parts, fmt.Sprintf("%s %d", emoji, reactions[emoji]))
	}
	return strings.Join(parts, " ")
}

func newCommentEditCommand(ctx *commandContext) *cobra.Command {
	var (
		content  string
		priority string
		category string
		tags     []string
	)

	cmd := &cobra.Command{
		Use:   "edit <comment-id>",
		Short: "Edit a comment's text, priority, tags or category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var req api.EditCommentRequest
			flags := cmd.Flags()
			if flags.Changed("message") {
				req.Content = &content
			}
			if flags.Changed("priority") {
				req.Priority = &priority
			}
			if flags.Changed("category") {
				req.Category = &category
			}
			if flags.Changed("tag") {
				req.Tags = &tags
			}
			if req.Content == nil && req.Priority == nil && req.Category == nil && req.Tags == nil {
				return fmt.Errorf("nothing to edit: pass --message, --priority, --category or --tag")
			}
			return ctx.withService(cmd, func(c context.Context, svc *api.Service) error {
				comment, err := svc.EditComment(c, args[0], req)
				if err != nil {
					return err
				}
				return printComment(cmd, ctx, "Edited", comment)
			})
		},
	}

	cmd.Flags().StringVarP(&content, "message", "m", "", "New comment text")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "normal, important or critical")
	cmd.Flags().StringVar(&category, "category", "", "Category label")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "Replacement tags (repeatable)")
	return cmd
}

func newCommentResolveCommand(ctx *commandContext) *cobra.Command {
	var req api.ResolveCommentRequest

	cmd := &cobra.Command{
		Use:   "resolve <comment-id>",
		Short: "Mark a comment resolved",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(cmd, func(c context.Context, svc *api.Service) error {
				comment, err := svc.ResolveComment(c, args[0], req)
				if err != nil {
					return err
				}
				return printComment(cmd, ctx, "Resolved", comment)
			})
		},
	}
	cmd.Flags().StringVar(&req.Notes, "notes", "", "Resolution notes")
	return cmd
}

func newCommentReopenCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reopen <comment-id>",
		Short: "Reopen a resolved comment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(cmd, func(c context.Context, svc *api.Service) error {
				comment, err := svc.ReopenComment(c, args[0])
				if err != nil {
					return err
				}
				return printComment(cmd, ctx, "Reopened", comment)
			})
		},
	}
}

func newCommentReactCommand(ctx *commandContext) *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "react <comment-id> <emoji>",
		Short: "Toggle an emoji reaction",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(userID) == "" {
				userID = currentUser()
			}
			return ctx.withService(cmd, func(c context.Context, svc *api.Service) error {
				comment, err := svc.ReactComment(c, args[0], api.ReactCommentRequest{Emoji: args[1], UserID: userID})
				if err != nil {
					return err
				}
				return printComment(cmd, ctx, "Reacted to", comment)
			})
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "Reacting user id (defaults to the local user)")
	return cmd
}

func newCommentDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <comment-id>",
		Short: "Delete a comment and, for a root comment, its replies",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(cmd, func(c context.Context, svc *api.Service) error {
				removed, err := svc.DeleteComment(c, args[0])
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, api.DeleteCommentResponse{Removed: removed})
				}
				newPrinter(cmd).printf("Deleted %d comment(s): %s\n", len(removed), strings.Join(removed, ", "))
				return nil
			})
		},
	}
}

func printComment(cmd *cobra.Command, ctx *commandContext, verb string, c api.Comment) error {
	if ctx.jsonOutput() {
		return writeJSON(cmd, c)
	}
	p := newPrinter(cmd)
	kind := "comment"
	if c.ParentID != "" {
		kind = "reply"
	}
	p.printf("%s %s %s at %s [%s, %s]\n", verb, kind, c.ID, c.Timecode, p.priority(c.Priority), p.status(c.Status))
	p.field("Content", c.DisplayContent)
	if len(c.Tags) > 0 {
		p.field("Tags", strings.Join(c.Tags, ", "))
	}
	p.field("Category", c.Category)
	p.field("Notes", c.ResolutionNotes)
	p.field("Reactions", formatReactions(c.Reactions))
	return nil
}
