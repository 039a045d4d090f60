package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"reelreview/internal/api"
	"reelreview/internal/timecode"
)

func newTimecodeCommand(ctx *commandContext) *cobra.Command {
	var fps float64

	cmd := &cobra.Command{
		Use:   "timecode <ms|HH:MM:SS:FF>",
		Short: "Convert between milliseconds and SMPTE timecode",
		Long: "Convert a playback position in milliseconds to HH:MM:SS:FF, or a timecode " +
			"back to the first millisecond of its frame. --fps defaults to review.default_frame_rate.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			rate := fps
			if rate == 0 {
				rate = cfg.Review.DefaultFrameRate
			}
			ms, err := parsePosition(args[0], rate)
			if err != nil {
				return err
			}
			svc := api.NewService(nil, cfg)
			resp, err := svc.Timecode(ms, rate)
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, resp)
			}
			p := newPrinter(cmd)
			p.printf("%s  %dms  frame %d (starts at %dms) @ %s fps\n",
				resp.Timecode, resp.Ms, resp.Frame, resp.FrameMs, strconv.FormatFloat(resp.FrameRate, 'f', -1, 64))
			return nil
		},
	}

	cmd.Flags().Float64Var(&fps, "fps", 0, "Frame rate (defaults to the configured rate)")
	return cmd
}

// parsePosition accepts plain milliseconds or an HH:MM:SS:FF timecode.
func parsePosition(value string, frameRate float64) (int64, error) {
	value = strings.TrimSpace(value)
	if strings.Contains(value, ":") {
		tc, err := timecode.Parse(value)
		if err != nil {
			return 0, err
		}
		return tc.Millis(frameRate)
	}
	ms, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid position %q: expected milliseconds or HH:MM:SS:FF", value)
	}
	return ms, nil
}
