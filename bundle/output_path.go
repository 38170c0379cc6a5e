package bundle

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"cbundle/config"
	"cbundle/state"
	"cbundle/storage"
)

const exportExt = ".txt"

// buildOutputPath returns path of exported index under dst. Name comes from
// configured template, it may contain subdirectories. Every path segment is
// cleaned and optionally transliterated.
func buildOutputPath(c *storage.Case, pages int, dst string, env *state.LocalEnv, now time.Time) string {
	cfg := &env.Cfg.Export

	expanded, err := expandTemplate(config.ExportNameTemplateFieldName, cfg.NameTemplate, c, pages, now)
	if err != nil {
		env.Log.Warn("Unable to prepare output filename", zap.Error(err))
		expanded = ""
	}
	segments := splitAndCleanPath(filepath.FromSlash(expanded))
	if len(segments) == 0 {
		// fallback to case name
		segments = []string{c.Name}
	}

	parts := make([]string, 0, len(segments)+1)
	parts = append(parts, dst)
	for _, s := range segments {
		if s = cleanPathSegment(s, cfg.Transliterate); len(s) > 0 {
			parts = append(parts, s)
		}
	}
	if len(parts) == 1 {
		parts = append(parts, "index")
	}
	parts[len(parts)-1] += exportExt
	return filepath.Join(parts...)
}

func splitAndCleanPath(path string) []string {
	path = strings.TrimSuffix(path, string(os.PathSeparator))
	segments := make([]string, 0, 8)

	for head, tail := filepath.Split(path); tail != ""; head, tail = filepath.Split(head) {
		segments = slices.Insert(segments, 0, tail)
		head = strings.TrimSuffix(head, string(os.PathSeparator))
		if head == "" {
			break
		}
	}
	return segments
}

func cleanPathSegment(segment string, transliterate bool) string {
	if transliterate {
		segment = slug.Make(segment)
	}
	return config.CleanFileName(segment)
}
