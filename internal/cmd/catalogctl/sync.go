package catalogctl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SyncedCommand records one skill copied into the commands directory.
type SyncedCommand struct {
	Plugin string `json:"plugin"`
	Source string `json:"source"`
	Dest   string `json:"dest"`
}

// SyncCommands copies every <pluginsDir>/<plugin>/skills/<skill>/SKILL.md to
// <dest>/<plugin>.md. Skills are visited in lexical order, so a plugin with
// several skills ends up with the last one.
func SyncCommands(ctx context.Context, pluginsDir, dest string) ([]SyncedCommand, error) {
	if strings.TrimSpace(dest) == "" {
		return nil, fmt.Errorf("commands directory is required")
	}
	skillFiles, err := filepath.Glob(filepath.Join(pluginsDir, "*", "skills", "*", "SKILL.md"))
	if err != nil {
		return nil, fmt.Errorf("find skills: %w", err)
	}
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return nil, fmt.Errorf("create commands directory: %w", err)
	}

	synced := []SyncedCommand{}
	for _, source := range skillFiles {
		if err := ctx.Err(); err != nil {
			return synced, err
		}
		rel, err := filepath.Rel(pluginsDir, source)
		if err != nil {
			return synced, fmt.Errorf("resolve %s: %w", source, err)
		}
		plugin := strings.Split(filepath.ToSlash(rel), "/")[0]
		target := filepath.Join(dest, plugin+".md")
		if err := copyFile(source, target); err != nil {
			return synced, err
		}
		synced = append(synced, SyncedCommand{Plugin: plugin, Source: source, Dest: target})
	}
	return synced, nil
}

func copyFile(source, target string) error {
	data, err := os.ReadFile(source)
	if err != nil {
		return fmt.Errorf("read %s: %w", source, err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", target, err)
	}
	return nil
}
