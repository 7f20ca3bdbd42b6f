package server

import (
	"context"
	"encoding/json"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"forge/internal/progress"
)

// watchProgress broadcasts the progress state to the hub whenever the
// progress file changes, with a periodic rebroadcast so late-joining
// clients and missed events still converge.
func (s *Server) watchProgress(ctx context.Context) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		s.pollOnly(ctx)
		return
	}
	defer watcher.Close()

	// Watch the directory: atomic renames replace the file inode, so
	// watching the file itself would go stale after the first write.
	dir := filepath.Dir(s.progressPath)
	if err := watcher.Add(dir); err != nil {
		s.pollOnly(ctx)
		return
	}

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	s.broadcastProgress()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(s.progressPath) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				s.broadcastProgress()
			}
		case _, ok := <-watcher.Errors:
			if !ok {
				return
			}
		case <-ticker.C:
			s.broadcastProgress()
		}
	}
}

// pollOnly is the fallback when filesystem watching is unavailable.
func (s *Server) pollOnly(ctx context.Context) {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.broadcastProgress()
		}
	}
}

func (s *Server) broadcastProgress() {
	state, err := progress.Read(s.progressPath)
	if err != nil {
		return
	}
	data, err := json.Marshal(state)
	if err != nil {
		return
	}
	s.hub.Broadcast(data)
}
