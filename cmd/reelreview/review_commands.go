package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"reelreview/internal/api"
)

func newReviewCommand(ctx *commandContext) *cobra.Command {
	reviewCmd := &cobra.Command{
		Use:     "review",
		Aliases: []string{"session"},
		Short:   "Run approval sessions for a video",
	}
	reviewCmd.AddCommand(newReviewCreateCommand(ctx))
	reviewCmd.AddCommand(newReviewListCommand(ctx))
	reviewCmd.AddCommand(newReviewShowCommand(ctx))
	reviewCmd.AddCommand(newReviewInviteCommand(ctx))
	reviewCmd.AddCommand(newReviewRemoveCommand(ctx))
	reviewCmd.AddCommand(newReviewViewCommand(ctx))
	reviewCmd.AddCommand(newReviewDecideCommand(ctx))
	reviewCmd.AddCommand(newReviewAckCommand(ctx))
	reviewCmd.AddCommand(newReviewResetCommand(ctx))
	reviewCmd.AddCommand(newReviewSupersedeCommand(ctx))
	return reviewCmd
}

func newReviewCreateCommand(ctx *commandContext) *cobra.Command {
	var (
		req          api.CreateSessionRequest
		due          string
		participants []string
	)

	cmd := &cobra.Command{
		Use:   "create <video-id>",
		Short: "Open a review session",
		Long: "Open a review session on a video. Participants are given as " +
			"<user-id|email>[:role[:name]] where role is reviewer, approver or viewer.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(due) != "" {
				dueDate, err := parseDueDate(due)
				if err != nil {
					return err
				}
				req.DueDate = &dueDate
			}
			for _, value := range participants {
				invite, err := parseParticipant(value)
				if err != nil {
					return err
				}
				req.Participants = append(req.Participants, invite)
			}
			if strings.TrimSpace(req.OwnerID) == "" {
				req.OwnerID = currentUser()
			}
			return ctx.withService(cmd, func(c context.Context, svc *api.Service) error {
				session, err := svc.CreateSession(c, args[0], req)
				if err != nil {
					return err
				}
				return printSession(cmd, ctx, "Created", session)
			})
		},
	}

	cmd.Flags().StringVar(&req.ID, "id", "", "Session id (generated when empty)")
	cmd.Flags().StringVarP(&req.Title, "title", "t", "", "Session title")
	cmd.Flags().StringVarP(&req.Description, "description", "d", "", "Session description")
	cmd.Flags().StringVar(&req.OwnerID, "owner", "", "Owner user id (defaults to the local user)")
	cmd.Flags().StringVar(&due, "due", "", "Due date as YYYY-MM-DD or RFC3339")
	cmd.Flags().IntVar(&req.RequiredApprovers, "required", 0, "Approvals needed (defaults to review.default_required_approvers)")
	cmd.Flags().BoolVar(&req.IsPublic, "public", false, "Allow access without an invitation")
	cmd.Flags().StringVar(&req.Password, "password", "", "Password reviewers must present")
	cmd.Flags().StringArrayVar(&participants, "participant", nil, "Participant to invite (repeatable)")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

// parseDueDate accepts a calendar date (end of that day, local time) or an RFC3339 instant.
func parseDueDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	day, err := time.ParseInLocation(time.DateOnly, value, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --due %q: use YYYY-MM-DD or RFC3339", value)
	}
	return day.Add(24*time.Hour - time.Second), nil
}

func parseParticipant(value string) (api.InviteRequest, error) {
	parts := strings.SplitN(strings.TrimSpace(value), ":", 3)
	who := strings.TrimSpace(parts[0])
	if who == "" {
		return api.InviteRequest{}, fmt.Errorf("invalid participant %q: missing user id or email", value)
	}
	var invite api.InviteRequest
	if strings.Contains(who, "@") {
		invite.Email = who
	} else {
		invite.UserID = who
	}
	if len(parts) > 1 {
		invite.Role = strings.ToLower(strings.TrimSpace(parts[1]))
	}
	if len(parts) > 2 {
		invite.Name = strings.TrimSpace(parts[2])
	}
	return invite, nil
}

func newReviewListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list <video-id>",
		Short: "List review sessions for a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(cmd, func(c context.Context, svc *api.Service) error {
				sessions, err := svc.Sessions(c, args[0])
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, api.SessionList{VideoID: args[0], Sessions: sessions})
				}
				p := newPrinter(cmd)
				if len(sessions) == 0 {
					p.println("No review sessions")
					return nil
				}
				tbl := newListTable(
					column{title: "ID"},
					column{title: "Title"},
					column{title: "Status"},
					column{title: "Approvals", align: alignRight},
					column{title: "People", align: alignRight},
					column{title: "Due"},
					column{title: "Created"},
				)
				openCount := 0
				for _, s := range sessions {
					if s.Status == "pending" || s.Status == "changes_requested" {
						openCount++
					}
					people := strconv.Itoa(len(s.Participants))
					if s.Locked {
						people = "locked"
					}
					tbl.add(
						s.ID,
						truncate(s.Title, 36),
						p.status(s.Status),
						progressLabel(s.Progress),
						people,
						dueLabel(p, s),
						p.relative(s.CreatedAt),
					)
				}
				tbl.summary(fmt.Sprintf("%d sessions, %d open", len(sessions), openCount))
				p.println(tbl.render())
				return nil
			})
		},
	}
}

func newReviewShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <session-id>",
		Short: "Show a session and its participants",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(cmd, func(c context.Context, svc *api.Service) error {
				session, err := svc.Session(c, args[0])
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, session)
				}
				renderSession(newPrinter(cmd), session)
				return nil
			})
		},
	}
}

func newReviewInviteCommand(ctx *commandContext) *cobra.Command {
	var req api.InviteRequest

	cmd := &cobra.Command{
		Use:   "invite <session-id> <user-id|email>",
		Short: "Invite a participant",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.Contains(args[1], "@") {
				req.Email = args[1]
			} else {
				req.UserID = args[1]
			}
			return ctx.withService(cmd, func(c context.Context, svc *api.Service) error {
				session, err := svc.InviteParticipant(c, args[0], req)
				if err != nil {
					return err
				}
				return printSession(cmd, ctx, "Invited to", session)
			})
		},
	}
	cmd.Flags().StringVar(&req.ID, "id", "", "Participant id (generated when empty)")
	cmd.Flags().StringVar(&req.Name, "name", "", "Display name")
	cmd.Flags().StringVar(&req.Role, "role", "", "reviewer, approver or viewer")
	return cmd
}

// participantAction wires a "<session-id> <participant-id>" subcommand to a service call.
func participantAction(ctx *commandContext, use, short, verb string, call func(*api.Service, context.Context, string, string) (api.Session, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <session-id> <participant-id>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(cmd, func(c context.Context, svc *api.Service) error {
				session, err := call(svc, c, args[0], args[1])
				if err != nil {
					return err
				}
				return printSession(cmd, ctx, verb, session)
			})
		},
	}
}

func newReviewRemoveCommand(ctx *commandContext) *cobra.Command {
	return participantAction(ctx, "remove", "Remove a participant", "Updated", (*api.Service).RemoveParticipant)
}

func newReviewViewCommand(ctx *commandContext) *cobra.Command {
	return participantAction(ctx, "view", "Record that a participant watched the video", "Viewed", (*api.Service).MarkViewed)
}

func newReviewResetCommand(ctx *commandContext) *cobra.Command {
	return participantAction(ctx, "reset", "Return a participant to pending", "Reset", (*api.Service).ResetParticipant)
}

func newReviewDecideCommand(ctx *commandContext) *cobra.Command {
	var req api.DecisionRequest

	cmd := &cobra.Command{
		Use:   "decide <session-id> <participant-id> <approve|reject|request_changes>",
		Short: "Record a participant's decision",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Decision = strings.ReplaceAll(strings.ToLower(args[2]), "-", "_")
			return ctx.withService(cmd, func(c context.Context, svc *api.Service) error {
				session, err := svc.Decide(c, args[0], args[1], req)
				if err != nil {
					return err
				}
				return printSession(cmd, ctx, "Recorded decision on", session)
			})
		},
	}
	cmd.Flags().StringVarP(&req.Note, "note", "m", "", "Decision note")
	return cmd
}

func newReviewAckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "ack <session-id>",
		Short: "Acknowledge requested changes and resume the review",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(cmd, func(c context.Context, svc *api.Service) error {
				session, err := svc.AcknowledgeChanges(c, args[0])
				if err != nil {
					return err
				}
				return printSession(cmd, ctx, "Acknowledged", session)
			})
		},
	}
}

func newReviewSupersedeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "supersede <session-id>",
		Short: "Start a fresh round that replaces an approved or rejected session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(cmd, func(c context.Context, svc *api.Service) error {
				session, err := svc.SupersedeSession(c, args[0])
				if err != nil {
					return err
				}
				return printSession(cmd, ctx, "Created", session)
			})
		},
	}
}

func printSession(cmd *cobra.Command, ctx *commandContext, verb string, s api.Session) error {
	if ctx.jsonOutput() {
		return writeJSON(cmd, s)
	}
	p := newPrinter(cmd)
	p.printf("%s session %s [%s] %s approvals\n", verb, s.ID, p.status(s.Status), progressLabel(s.Progress))
	return nil
}

func renderSession(p printer, s api.Session) {
	p.printf("%s\n", s.Title)
	p.field("ID", s.ID)
	p.field("Video", s.VideoID)
	p.field("Status", p.status(s.Status))
	p.field("Approvals", fmt.Sprintf("%s (%.0f%%)", progressLabel(s.Progress), s.Progress.Percent))
	p.field("Owner", s.OwnerID)
	p.field("Description", s.Description)
	p.field("Due", dueLabel(p, s))
	p.field("Access", accessLabel(s))
	p.field("Supersedes", s.SupersedesID)
	p.field("Created", p.relative(s.CreatedAt))

	if len(s.Participants) == 0 {
		p.println("No participants")
		return
	}
	tbl := newListTable(
		column{title: "ID"},
		column{title: "Participant"},
		column{title: "Role"},
		column{title: "Status"},
		column{title: "Note", wrap: 40},
		column{title: "Decided"},
	)
	for _, part := range s.Participants {
		tbl.add(
			part.ID,
			part.Label,
			titleLabel(part.Role),
			p.status(part.Status),
			part.Note,
			p.relative(part.DecidedAt),
		)
	}
	p.println(tbl.render())
}

func progressLabel(progress api.Progress) string {
	return fmt.Sprintf("%d/%d", progress.Approved, progress.Required)
}

func dueLabel(p printer, s api.Session) string {
	if s.DueDate == "" {
		return ""
	}
	label := p.relative(s.DueDate)
	if s.Overdue {
		label += " (overdue)"
	}
	return label
}

func accessLabel(s api.Session) string {
	parts := []string{"invite only"}
	if s.IsPublic {
		parts[0] = "public"
	}
	if s.HasPassword {
		parts = append(parts, "password")
	}
	return strings.Join(parts, ", ")
}
