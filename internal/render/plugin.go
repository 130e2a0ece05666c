package render

import (
	"fmt"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/audioset/internal/block"
	"github.com/dgnsrekt/audioset/internal/vault"
)

// ProcessorFunc turns the body of a fenced block into a renderable result.
type ProcessorFunc func(source string, v *vault.Vault) Result

// Registry maps fenced block languages to processors. Renderers only
// replace blocks whose language is registered.
type Registry struct {
	mu         sync.RWMutex
	processors map[string]ProcessorFunc
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{processors: make(map[string]ProcessorFunc)}
}

// Register binds lang to fn. A language can only be bound once.
func (r *Registry) Register(lang string, fn ProcessorFunc) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.processors[lang]; ok {
		return fmt.Errorf("a processor for %q is already registered", lang)
	}
	r.processors[lang] = fn
	return nil
}

// Unregister removes the processor for lang.
func (r *Registry) Unregister(lang string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.processors, lang)
}

// Lookup returns the processor for lang.
func (r *Registry) Lookup(lang string) (ProcessorFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.processors[lang]
	return fn, ok
}

// Languages returns the registered languages, sorted.
func (r *Registry) Languages() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	langs := make([]string, 0, len(r.processors))
	for lang := range r.processors {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// Plugin registers the audioset processor with a host registry.
type Plugin struct {
	registry *Registry
	logger   *log.Logger
	loaded   bool
}

// NewPlugin returns a plugin for registry. A nil logger uses the default.
func NewPlugin(registry *Registry, logger *log.Logger) *Plugin {
	if logger == nil {
		logger = log.Default()
	}
	return &Plugin{registry: registry, logger: logger}
}

// Load registers the audioset processor.
func (p *Plugin) Load() error {
	if p.loaded {
		return nil
	}
	if err := p.registry.Register(block.Language, Process); err != nil {
		return err
	}
	p.loaded = true
	p.logger.Debug("Audioset plugin loaded")
	return nil
}

// Unload removes the audioset processor.
func (p *Plugin) Unload() {
	if !p.loaded {
		return
	}
	p.registry.Unregister(block.Language)
	p.loaded = false
	p.logger.Debug("audioset unloaded")
}

// Loaded reports whether the processor is registered.
func (p *Plugin) Loaded() bool {
	return p.loaded
}
