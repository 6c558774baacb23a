package config

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// Watch reloads the layered configuration whenever the user file changes
// and hands the result to onChange. It returns a stop function. Editors
// and the web UI both rewrite the file in place, so writes and creates
// are the interesting events.
func Watch(logger *logrus.Logger, onChange func(Config)) (func() error, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(UserFile)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, err
	}

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != UserFile {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				cfg, err := Load()
				if err != nil {
					logger.Warnf("Config reload failed: %v", err)
					continue
				}
				logger.Info("Configuration reloaded")
				onChange(cfg)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warnf("Config watcher error: %v", err)
			}
		}
	}()

	return watcher.Close, nil
}
