package tools

import (
	"embed"
	"fmt"
	"sort"
	"sync"

	"incidentflow/core"
)

// Arg is one named input of a tool. Values reach the script as environment variables.
type Arg struct {
	Name        string `json:"name" yaml:"name" validate:"required"`
	Type        string `json:"type" yaml:"type"`
	Description string `json:"description" yaml:"description"`
	Required    bool   `json:"required" yaml:"required"`
	Default     string `json:"default,omitempty" yaml:"default,omitempty"`
}

// FileSpec is a file mounted into the tool container before the script runs
type FileSpec struct {
	Destination string `json:"destination" yaml:"destination" validate:"required"`
	Content     string `json:"content" yaml:"content"`
}

// Tool is a script executed inside a container image
type Tool struct {
	Name        string     `json:"name" yaml:"name" validate:"required"`
	Description string     `json:"description" yaml:"description"`
	Type        string     `json:"type" yaml:"type" validate:"required,oneof=docker"`
	Image       string     `json:"image" yaml:"image" validate:"required"`
	Content     string     `json:"content" yaml:"content" validate:"required"`
	Args        []Arg      `json:"args" yaml:"args" validate:"dive"`
	WithFiles   []FileSpec `json:"with_files,omitempty" yaml:"with_files,omitempty" validate:"dive"`
}

func (t Tool) Validate() error {
	return core.ValidateModel(t)
}

// Arg returns the named argument
func (t Tool) Arg(name string) (Arg, bool) {
	for _, a := range t.Args {
		if a.Name == name {
			return a, true
		}
	}
	return Arg{}, false
}

// ResolveArgs merges the supplied values over the argument defaults and reports
// required arguments that are still missing.
func (t Tool) ResolveArgs(values map[string]string) (map[string]string, error) {
	resolved := make(map[string]string, len(t.Args))
	var missing []string
	for _, a := range t.Args {
		v, ok := values[a.Name]
		if !ok || v == "" {
			v = a.Default
		}
		if v == "" && a.Required {
			missing = append(missing, a.Name)
			continue
		}
		resolved[a.Name] = v
	}
	if len(missing) > 0 {
		return nil, &core.ValidationError{Model: t.Name, Fields: missing}
	}
	return resolved, nil
}

// Registry holds tools grouped by collection
type Registry struct {
	mu          sync.RWMutex
	collections map[string]map[string]Tool
}

func NewRegistry() *Registry {
	return &Registry{collections: make(map[string]map[string]Tool)}
}

// Register adds tool to collection. Names are unique within a collection.
func (r *Registry) Register(collection string, tool Tool) error {
	if err := tool.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	tools, ok := r.collections[collection]
	if !ok {
		tools = make(map[string]Tool)
		r.collections[collection] = tools
	}
	if _, exists := tools[tool.Name]; exists {
		return fmt.Errorf("tool %s already registered in %s: %w", tool.Name, collection, core.ErrDuplicate)
	}
	tools[tool.Name] = tool
	return nil
}

func (r *Registry) Get(collection, name string) (Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tool, ok := r.collections[collection][name]
	if !ok {
		return Tool{}, fmt.Errorf("tool %s in %s: %w", name, collection, core.ErrNotFound)
	}
	return tool, nil
}

// List returns the tools of a collection sorted by name
func (r *Registry) List(collection string) []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := make([]Tool, 0, len(r.collections[collection]))
	for _, t := range r.collections[collection] {
		tools = append(tools, t)
	}
	sort.Slice(tools, func(i, j int) bool { return tools[i].Name < tools[j].Name })
	return tools
}

//go:embed scripts/*.sh
var scriptFS embed.FS

func script(name string) string {
	content, err := scriptFS.ReadFile("scripts/" + name + ".sh")
	if err != nil {
		panic(fmt.Sprintf("missing tool script %s: %v", name, err))
	}
	return string(content)
}
