package constants

import (
	"io/fs"
	"time"
)

const (
	// DefaultDirPerm is the default permission used when creating directories.
	DefaultDirPerm fs.FileMode = 0o755
	// DefaultFilePerm is the default permission used when creating files.
	DefaultFilePerm fs.FileMode = 0o644
)

const (
	// NavigationTimeout bounds each of the two navigation wait tiers.
	NavigationTimeout = 30 * time.Second
	// PaintSampleTimeout caps how long the paint-timing observer may wait.
	PaintSampleTimeout = 5 * time.Second
	// SlowPaintThreshold is the first-contentful-paint latency above which a
	// site is considered slow.
	SlowPaintThreshold = 3000 * time.Millisecond
	// MatchedTextLimit caps the evidentiary excerpt stored per vulnerability.
	MatchedTextLimit = 100
	// ResultFilenameStemLimit caps the sanitized domain portion of a result
	// filename.
	ResultFilenameStemLimit = 50
)
