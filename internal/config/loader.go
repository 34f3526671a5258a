package config

import (
	"fmt"
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/Rendxnn/logpipe/internal/generate"
)

// PoolFile is the YAML layout of the optional generator pool file.
type PoolFile struct {
	Pool     []generate.Option `yaml:"pool"`
	Products []string          `yaml:"products"`
}

// Loader reads the pool file and watches it for changes so the producer can
// pick up new response options without a restart.
type Loader struct {
	path     string
	mu       sync.RWMutex
	current  *PoolFile
	onChange []func(*PoolFile)
}

// NewLoader creates a Loader and performs the initial load.
func NewLoader(path string) (*Loader, error) {
	l := &Loader{path: path}
	pf, err := l.load()
	if err != nil {
		return nil, err
	}
	l.current = pf
	return l, nil
}

// Pool returns the current (latest) pool file contents.
func (l *Loader) Pool() *PoolFile {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.current
}

// OnChange registers a callback invoked whenever the file reloads.
func (l *Loader) OnChange(fn func(*PoolFile)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onChange = append(l.onChange, fn)
}

// Watch starts a background goroutine that hot-reloads the pool file on
// changes. Call the returned stop function to clean up.
func (l *Loader) Watch() (stop func(), err error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("pool watcher: %w", err)
	}
	if err := w.Add(l.path); err != nil {
		w.Close()
		return nil, fmt.Errorf("pool watcher add %s: %w", l.path, err)
	}

	done := make(chan struct{})
	go func() {
		defer w.Close()
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
					pf, err := l.load()
					if err != nil {
						// Keep serving the previous pool.
						continue
					}
					l.mu.Lock()
					l.current = pf
					callbacks := make([]func(*PoolFile), len(l.onChange))
					copy(callbacks, l.onChange)
					l.mu.Unlock()
					for _, fn := range callbacks {
						fn(pf)
					}
				}
			case <-w.Errors:
				// Ignore watcher errors.
			case <-done:
				return
			}
		}
	}()

	return func() { close(done) }, nil
}

func (l *Loader) load() (*PoolFile, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("read pool file %s: %w", l.path, err)
	}
	var pf PoolFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("parse pool file %s: %w", l.path, err)
	}
	if err := validatePool(&pf); err != nil {
		return nil, fmt.Errorf("pool file %s: %w", l.path, err)
	}
	return &pf, nil
}

// validatePool rejects entries the generator could not emit sensibly.
func validatePool(pf *PoolFile) error {
	for i, opt := range pf.Pool {
		if opt.Method == "" || opt.Path == "" {
			return fmt.Errorf("pool[%d]: method and path are required", i)
		}
		if opt.StatusCode < 100 || opt.StatusCode > 599 {
			return fmt.Errorf("pool[%d]: status_code %d out of range", i, opt.StatusCode)
		}
	}
	return nil
}
