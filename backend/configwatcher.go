package backend

import (
	"context"
	"log"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// ConfigWatcher re-reads the config file whenever it changes on disk,
// delivering valid configs on Reloads.
type ConfigWatcher struct {
	path         string
	discordAppID string
	watcher      *fsnotify.Watcher
	reloads      chan *Config
}

func NewConfigWatcher(path, discordAppID string) (*ConfigWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// watch the directory, since editors often replace the file instead of writing it
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, err
	}
	return &ConfigWatcher{
		path:         filepath.Clean(path),
		discordAppID: discordAppID,
		watcher:      w,
		reloads:      make(chan *Config, 1),
	}, nil
}

func (c *ConfigWatcher) Reloads() <-chan *Config {
	return c.reloads
}

// Start watches until ctx is done.
func (c *ConfigWatcher) Start(ctx context.Context) {
	go func() {
		defer c.watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-c.watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != c.path || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
					continue
				}
				c.reload()
			case err, ok := <-c.watcher.Errors:
				if !ok {
					return
				}
				log.Printf("Config watcher error: %v", err)
			}
		}
	}()
}

func (c *ConfigWatcher) reload() {
	cfg, err := ReadConfigFile(c.path, c.discordAppID)
	if err != nil {
		log.Printf("Ignoring invalid config change: %v", err)
		return
	}
	// only the newest config matters
	select {
	case <-c.reloads:
	default:
	}
	c.reloads <- cfg
}
