package parsers

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
)

// ErrUnknownFormat is returned when no parser is registered for a format.
var ErrUnknownFormat = errors.New("unknown content format")

// Registry maps format names and file extensions to parsers. It is filled
// once at startup and only read afterwards.
type Registry struct {
	parsers    map[string]Parser // format name -> parser
	extensions map[string]string // extension -> format name
	logger     *slog.Logger
	mu         sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		parsers:    make(map[string]Parser),
		extensions: make(map[string]string),
		logger:     logger,
	}
}

// NewDefaultRegistry returns a registry holding the txt and markdown parsers.
func NewDefaultRegistry(logger *slog.Logger) *Registry {
	r := NewRegistry(logger)
	for _, p := range []Parser{NewTxt(), NewMarkdown()} {
		if err := r.Register(p); err != nil {
			// Built-in names are distinct.
			panic(err)
		}
	}
	return r
}

// Register adds a parser under its name and extensions.
func (r *Registry) Register(p Parser) error {
	if p == nil {
		return errors.New("cannot register nil parser")
	}
	name := strings.ToLower(p.Name())
	if name == "" {
		return errors.New("parser must have a non-empty name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.parsers[name]; exists {
		return fmt.Errorf("parser for format %q already registered", name)
	}
	r.parsers[name] = p

	exts := p.Extensions()
	if len(exts) == 0 {
		r.extensions[name] = name
	}
	for _, ext := range exts {
		ext = normalizeExt(ext)
		if ext == "" {
			continue
		}
		r.extensions[ext] = name
	}

	r.logger.Debug("registered content parser", "format", name, "extensions", exts)
	return nil
}

// Resolve returns the parser for a format name, or nil.
func (r *Registry) Resolve(format string) Parser {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.parsers[strings.ToLower(format)]
}

// FormatForExt returns the format name for a file extension, or "".
func (r *Registry) FormatForExt(ext string) string {
	ext = normalizeExt(ext)
	if ext == "" {
		return ""
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.extensions[ext]
}

// Formats returns the registered format names, sorted.
func (r *Registry) Formats() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.parsers))
	for name := range r.parsers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
