package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeDrawing()
	c.normalizeComments()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if value, ok := os.LookupEnv(DataDirEnv); ok && strings.TrimSpace(value) != "" {
		c.Paths.DataDir = strings.TrimSpace(value)
	}
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	return nil
}

func (c *Config) normalizeDrawing() {
	c.Drawing.DefaultColor = strings.ToLower(strings.TrimSpace(c.Drawing.DefaultColor))
	if c.Drawing.DefaultColor == "" {
		c.Drawing.DefaultColor = defaultDrawingColor
	}
	if c.Drawing.DefaultWidth == 0 {
		c.Drawing.DefaultWidth = defaultDrawingWidth
	}
	if c.Drawing.HistoryLimit < 0 {
		c.Drawing.HistoryLimit = 0
	}
}

func (c *Config) normalizeComments() {
	c.Comments.DefaultSort = strings.ToLower(strings.TrimSpace(c.Comments.DefaultSort))
	if c.Comments.DefaultSort == "" {
		c.Comments.DefaultSort = defaultCommentSort
	}
	if c.Comments.MaxContentLength == 0 {
		c.Comments.MaxContentLength = defaultMaxContentLength
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
