package types

// Manifest is the user-edited project file (luapm.yaml). Dependency
// values are raw constraint strings, parsed by core on resolution.
type Manifest struct {
	Name            string            `yaml:"name"`
	Version         string            `yaml:"version"`
	Lua             string            `yaml:"lua,omitempty"`
	Dependencies    map[string]string `yaml:"dependencies,omitempty"`
	DevDependencies map[string]string `yaml:"dev_dependencies,omitempty"`
}
