package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"reelreview/internal/api"
	"reelreview/internal/geometry"
)

func newPathCommand(ctx *commandContext) *cobra.Command {
	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Process freehand drawing paths",
	}
	pathCmd.AddCommand(newPathProcessCommand(ctx, "simplify", "Reduce stroke points with Douglas-Peucker", true))
	pathCmd.AddCommand(newPathProcessCommand(ctx, "smooth", "Render stroke points as a smooth SVG path", false))
	pathCmd.AddCommand(newPathDrawCommand(ctx))
	return pathCmd
}

func newPathProcessCommand(ctx *commandContext, name, short string, simplify bool) *cobra.Command {
	var (
		pointsFlag string
		fileFlag   string
		tolerance  float64
	)

	cmd := &cobra.Command{
		Use:   name,
		Short: short,
		Long: "Points come from --points (\"x,y x,y ...\") or --file (a JSON array of {\"x\",\"y\"} " +
			"objects, - for stdin).",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			points, err := readPoints(cmd.InOrStdin(), pointsFlag, fileFlag)
			if err != nil {
				return err
			}
			req := api.PathRequest{Points: points}
			if cmd.Flags().Changed("tolerance") {
				req.Tolerance = &tolerance
			}
			svc := api.NewService(nil, cfg)
			var resp api.PathResponse
			if simplify {
				resp, err = svc.SimplifyPath(req)
			} else {
				resp, err = svc.SmoothPath(req)
			}
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, resp)
			}
			p := newPrinter(cmd)
			p.printf("points: %d -> %d\n", resp.InputCount, len(resp.Points))
			p.printf("bounds: %s,%s %sx%s\n", fmtFloat(resp.Bounds.X), fmtFloat(resp.Bounds.Y), fmtFloat(resp.Bounds.Width), fmtFloat(resp.Bounds.Height))
			p.println(resp.SVG)
			return nil
		},
	}

	cmd.Flags().StringVar(&pointsFlag, "points", "", "Space separated x,y pairs")
	cmd.Flags().StringVarP(&fileFlag, "file", "f", "", "JSON file with points (- for stdin)")
	if simplify {
		cmd.Flags().Float64Var(&tolerance, "tolerance", 0, "Maximum deviation in path units (defaults to drawing.simplify_tolerance)")
	}
	return cmd
}

func newPathDrawCommand(ctx *commandContext) *cobra.Command {
	var fileFlag string

	cmd := &cobra.Command{
		Use:   "draw",
		Short: "Replay drawing operations with undo and redo",
		Long: "Reads a JSON object with an optional \"base\" drawing and an \"operations\" list " +
			"(stroke, shape, undo, redo, clear) from --file (- for stdin) and prints the resulting drawing.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if strings.TrimSpace(fileFlag) == "" {
				return fmt.Errorf("--file is required")
			}
			raw, err := readInput(cmd.InOrStdin(), fileFlag)
			if err != nil {
				return fmt.Errorf("read operations: %w", err)
			}
			var req api.DrawingRequest
			if err := json.Unmarshal(raw, &req); err != nil {
				return fmt.Errorf("decode operations: %w", err)
			}
			resp, err := api.NewService(nil, cfg).Drawing(req)
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, resp)
			}
			p := newPrinter(cmd)
			p.printf("strokes: %d (%d points)\n", len(resp.Drawing.Strokes), resp.PointCount)
			p.printf("bounds: %s,%s %sx%s\n", fmtFloat(resp.Bounds.X), fmtFloat(resp.Bounds.Y), fmtFloat(resp.Bounds.Width), fmtFloat(resp.Bounds.Height))
			p.printf("undo: %t redo: %t\n", resp.CanUndo, resp.CanRedo)
			return nil
		},
	}

	cmd.Flags().StringVarP(&fileFlag, "file", "f", "", "JSON file with drawing operations (- for stdin)")
	return cmd
}

func readInput(stdin io.Reader, file string) ([]byte, error) {
	if file == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(file)
}

func readPoints(stdin io.Reader, inline, file string) ([]geometry.Point, error) {
	switch {
	case strings.TrimSpace(inline) != "" && strings.TrimSpace(file) != "":
		return nil, fmt.Errorf("use either --points or --file, not both")
	case strings.TrimSpace(inline) != "":
		return parsePoints(inline)
	case strings.TrimSpace(file) != "":
		raw, err := readInput(stdin, file)
		if err != nil {
			return nil, fmt.Errorf("read points: %w", err)
		}
		var points []geometry.Point
		if err := json.Unmarshal(raw, &points); err != nil {
			return nil, fmt.Errorf("decode points: %w", err)
		}
		return points, nil
	default:
		return nil, fmt.Errorf("points are required (--points or --file)")
	}
}

// parsePoints reads "x,y" pairs separated by whitespace or semicolons.
func parsePoints(value string) ([]geometry.Point, error) {
	fields := strings.FieldsFunc(value, func(r rune) bool {
		return r == ' ' || r == ';' || r == '\t' || r == '\n'
	})
	points := make([]geometry.Point, 0, len(fields))
	for _, field := range fields {
		xs, ys, ok := strings.Cut(field, ",")
		if !ok {
			return nil, fmt.Errorf("invalid point %q: expected x,y", field)
		}
		x, errX := strconv.ParseFloat(strings.TrimSpace(xs), 64)
		y, errY := strconv.ParseFloat(strings.TrimSpace(ys), 64)
		if errX != nil || errY != nil {
			return nil, fmt.Errorf("invalid point %q: coordinates must be numbers", field)
		}
		points = append(points, geometry.Point{X: x, Y: y})
	}
	return points, nil
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
