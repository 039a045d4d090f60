package config

import (
	"errors"
	"fmt"
	"math"
	"net"
	"regexp"
)

var hexColorPattern = regexp.MustCompile(`^#(?:[0-9a-f]{3}|[0-9a-f]{6}|[0-9a-f]{8})$`)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateReview(); err != nil {
		return err
	}
	if err := c.validateDrawing(); err != nil {
		return err
	}
	if err := c.validateComments(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if c.Paths.DataDir == "" {
		return errors.New("paths.data_dir must be set")
	}
	if c.Paths.LogDir == "" {
		return errors.New("paths.log_dir must be set")
	}
	if _, _, err := net.SplitHostPort(c.Paths.APIBind); err != nil {
		return fmt.Errorf("paths.api_bind %q must be host:port: %w", c.Paths.APIBind, err)
	}
	return nil
}

func (c *Config) validateReview() error {
	if c.Review.DefaultRequiredApprovers < 1 || c.Review.DefaultRequiredApprovers > maxRequiredApprovers {
		return fmt.Errorf("review.default_required_approvers must be between 1 and %d", maxRequiredApprovers)
	}
	rate := c.Review.DefaultFrameRate
	if math.IsNaN(rate) || rate <= 0 || rate > maxFrameRate {
		return fmt.Errorf("review.default_frame_rate must be greater than 0 and at most %v", maxFrameRate)
	}
	return nil
}

func (c *Config) validateDrawing() error {
	if c.Drawing.SimplifyTolerance < 0 {
		return errors.New("drawing.simplify_tolerance must be >= 0")
	}
	if c.Drawing.MinPointDistance < 0 {
		return errors.New("drawing.min_point_distance must be >= 0")
	}
	if c.Drawing.DefaultWidth <= 0 {
		return errors.New("drawing.default_width must be positive")
	}
	if !hexColorPattern.MatchString(c.Drawing.DefaultColor) {
		return fmt.Errorf("drawing.default_color %q must be a hex colour", c.Drawing.DefaultColor)
	}
	return nil
}

func (c *Config) validateComments() error {
	if c.Comments.MaxContentLength < 1 {
		return errors.New("comments.max_content_length must be positive")
	}
	switch c.Comments.DefaultSort {
	case "timestamp", "created", "priority":
		return nil
	default:
		return fmt.Errorf("comments.default_sort must be timestamp, created or priority, got %q", c.Comments.DefaultSort)
	}
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level %q is not supported", c.Logging.Level)
	}
}
