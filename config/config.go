/*
NAME
  config.go

DESCRIPTION
  config.go defines Config, the settings for a bvprobe run, modeled on
  revid/config/config.go's style: a flat struct of exported, individually
  documented fields with enum-valued settings and a Validate method that
  defaults unset fields rather than failing outright.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package config contains the configuration settings for bvprobe.
package config

import (
	"time"

	"github.com/ausocean/utils/logging"
)

// IndexDepth selects how thoroughly a stream is indexed.
type IndexDepth int

// Recognized index depths.
const (
	// IndexQuick scans unit framing only, reporting keyframe positions
	// without parsing parameter sets or slice/frame headers.
	IndexQuick IndexDepth = iota

	// IndexFull parses every parameter set and frame header, producing a
	// complete FrameRecord per frame.
	IndexFull
)

// OutputFormat selects how probe results are rendered.
const (
	// OutputJSON writes one JSON document summarizing the index.
	OutputJSON = iota

	// OutputText writes a human-readable table to stdout.
	OutputText
)

// Config provides parameters relevant to a bvprobe run. Default values for
// unset fields are applied by Validate.
type Config struct {
	// InputPath is the elementary stream, IVF, MP4, MKV or MPEG-TS file to
	// probe. Required.
	InputPath string

	// WatchDir, if set, causes bvprobe to watch the directory for new
	// files (via fsnotify) and probe each one as it appears, instead of
	// processing a single InputPath once.
	WatchDir string

	// Depth selects IndexQuick or IndexFull.
	Depth IndexDepth

	// Output selects OutputJSON or OutputText.
	Output int

	// OutputPath defines the destination file for results; empty means
	// stdout.
	OutputPath string

	// CacheCapacity is a frame-cache size setting; Validate defaults 0 to
	// 16. bvprobe does not read it: the -grids pipeline always builds its
	// cache with framecache.DefaultCapacity.
	CacheCapacity int

	// OverlayStride is an overlay sample-spacing setting, in luma samples;
	// Validate defaults 0 to 16. No overlay grid builder reads it.
	OverlayStride int

	// Workers is a worker-count setting; 0 defaults to 4. bvprobe does not
	// read it: the watch loop probes files one at a time.
	Workers uint

	// PollInterval is the period of the directory watcher's ticker; 0
	// defaults to 2s. The watcher does nothing on a tick: files are only
	// probed on fsnotify create/write events.
	PollInterval time.Duration

	// Suppress holds logger suppression state.
	Suppress bool

	// LogPath names a log file. bvprobe does not read it: its -logpath flag
	// sets up the lumberjack-rotated log file directly.
	LogPath string

	// Logger holds an implementation of the Logger interface as defined
	// by github.com/ausocean/utils/logging.
	Logger logging.Logger
}

// Validate defaults unset fields and reports an error if InputPath and
// WatchDir are both unset.
func (c *Config) Validate() error {
	if c.InputPath == "" && c.WatchDir == "" {
		return errInputRequired
	}
	if c.CacheCapacity == 0 {
		c.logDefault("CacheCapacity", 16)
		c.CacheCapacity = 16
	}
	if c.OverlayStride == 0 {
		c.logDefault("OverlayStride", 16)
		c.OverlayStride = 16
	}
	if c.Workers == 0 {
		c.logDefault("Workers", 4)
		c.Workers = 4
	}
	if c.PollInterval == 0 {
		c.PollInterval = 2 * time.Second
	}
	return nil
}

func (c *Config) logDefault(name string, def interface{}) {
	if c.Logger != nil {
		c.Logger.Info(name+" bad or unset, defaulting", name, def)
	}
}
