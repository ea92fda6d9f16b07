package config

import (
	"github.com/fsnotify/fsnotify"

	"github.com/codefionn/chatwire/internal/logger"
)

// Watch re-loads the config file whenever it changes and hands the result
// to apply. It returns a stop function. Only changes that survive Load's
// validation are applied; a broken edit keeps the previous configuration.
func Watch(path string, apply func(*Config)) (func(), error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				cfg, err := Load(path)
				if err != nil {
					logger.Warn("Ignoring config change in %s: %v", path, err)
					continue
				}
				logger.Info("Config file %s changed, re-applying", path)
				apply(cfg)

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("Config watcher error: %v", err)

			case <-done:
				return
			}
		}
	}()

	return func() {
		close(done)
		watcher.Close()
	}, nil
}
