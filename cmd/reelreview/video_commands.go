package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"reelreview/internal/api"
)

func newVideoCommand(ctx *commandContext) *cobra.Command {
	videoCmd := &cobra.Command{
		Use:   "video",
		Short: "Register and inspect videos",
	}
	videoCmd.AddCommand(newVideoAddCommand(ctx))
	videoCmd.AddCommand(newVideoListCommand(ctx))
	videoCmd.AddCommand(newVideoShowCommand(ctx))
	videoCmd.AddCommand(newVideoRemoveCommand(ctx))
	return videoCmd
}

func newVideoAddCommand(ctx *commandContext) *cobra.Command {
	var req api.RegisterVideoRequest

	cmd := &cobra.Command{
		Use:   "add <id>",
		Short: "Register or update a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.ID = args[0]
			return ctx.withService(cmd, func(c context.Context, svc *api.Service) error {
				video, err := svc.RegisterVideo(c, req)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, video)
				}
				p := newPrinter(cmd)
				p.printf("Registered %s (%s, %d frames)\n", video.ID, video.Duration, video.FrameCount)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&req.Title, "title", "t", "", "Video title")
	cmd.Flags().Int64Var(&req.DurationMs, "duration-ms", 0, "Duration in milliseconds")
	cmd.Flags().Float64Var(&req.FrameRate, "fps", 0, "Frame rate (defaults to review.default_frame_rate)")
	cmd.Flags().IntVar(&req.Width, "width", 0, "Frame width in pixels")
	cmd.Flags().IntVar(&req.Height, "height", 0, "Frame height in pixels")
	cmd.Flags().StringVar(&req.SourceURL, "source", "", "Source media URL")
	cmd.Flags().StringVar(&req.ThumbnailURL, "thumbnail", "", "Thumbnail URL")
	cmd.Flags().BoolVar(&req.AllowDownloads, "allow-downloads", false, "Allow reviewers to download the source")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newVideoListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered videos",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(cmd, func(c context.Context, svc *api.Service) error {
				videos, err := svc.Videos(c)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, api.VideoList{Videos: videos})
				}
				p := newPrinter(cmd)
				if len(videos) == 0 {
					p.println("No videos registered")
					return nil
				}
				tbl := newListTable(
					column{title: "ID"},
					column{title: "Title"},
					column{title: "Duration", align: alignRight},
					column{title: "FPS", align: alignRight},
					column{title: "Frames", align: alignRight},
					column{title: "Resolution"},
					column{title: "Added"},
				)
				for _, v := range videos {
					tbl.add(
						v.ID,
						truncate(v.Title, 40),
						v.Duration,
						fmtFloat(v.FrameRate),
						strconv.FormatInt(v.FrameCount, 10),
						resolution(v),
						p.relative(v.CreatedAt),
					)
				}
				tbl.summary(fmt.Sprintf("%d videos", len(videos)))
				p.println(tbl.render())
				return nil
			})
		},
	}
}

func newVideoShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a video with comment and review counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(cmd, func(c context.Context, svc *api.Service) error {
				video, err := svc.Video(c, args[0])
				if err != nil {
					return err
				}
				list, err := svc.Comments(c, video.ID, api.ListOptions{})
				if err != nil {
					return err
				}
				sessions, err := svc.Sessions(c, video.ID)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, struct {
						Video    api.Video          `json:"video"`
						Summary  api.CommentSummary `json:"summary"`
						Sessions []api.Session      `json:"sessions"`
					}{video, list.Summary, sessions})
				}
				p := newPrinter(cmd)
				p.printf("%s\n", video.Title)
				p.field("ID", video.ID)
				p.field("Duration", fmt.Sprintf("%s (%dms, %d frames @ %s fps)", video.Duration, video.DurationMs, video.FrameCount, fmtFloat(video.FrameRate)))
				p.field("Resolution", resolution(video))
				p.field("Source", video.SourceURL)
				p.field("Downloads", yesNo(video.AllowDownloads))
				p.field("Added", p.relative(video.CreatedAt))
				p.field("Comments", fmt.Sprintf("%d open, %d resolved, %d replies", list.Summary.Open, list.Summary.Resolved, list.Summary.Replies))
				p.field("Reviews", strconv.Itoa(len(sessions)))
				for _, s := range sessions {
					p.printf("    %s  %s  %s\n", s.ID, p.status(s.Status), s.Title)
				}
				return nil
			})
		},
	}
}

func resolution(v api.Video) string {
	if v.Width <= 0 || v.Height <= 0 {
		return ""
	}
	return fmt.Sprintf("%dx%d", v.Width, v.Height)
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

func newVideoRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Delete a video with its comments and review sessions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(cmd, func(c context.Context, svc *api.Service) error {
				if err := svc.RemoveVideo(c, args[0]); err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, map[string]string{"removed": args[0]})
				}
				newPrinter(cmd).printf("Removed %s\n", args[0])
				return nil
			})
		},
	}
}
