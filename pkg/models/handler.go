package models

// HandlerDescriptor describes a registered specialist handler.
// Descriptors are loaded at process start and immutable afterwards.
type HandlerDescriptor struct {
	// Name is the unique handler name.
	Name string `json:"name" yaml:"name"`
	// Domains lists the domain tags this handler serves.
	Domains []string `json:"domains" yaml:"domains"`
	// Keywords is the lexical match table for this handler. A request
	// matches this handler when its text contains any keyword.
	Keywords []string `json:"keywords" yaml:"keywords"`
	// DependsOn lists domain tags whose handlers must complete before
	// this handler runs, when those handlers are selected for the
	// same request.
	DependsOn []string `json:"depends_on,omitempty" yaml:"depends_on"`
	// Command is the shell command invoked for this handler's tasks.
	// The handler contract is external: the core only observes the
	// command's exit status and output.
	Command string `json:"command,omitempty" yaml:"command"`
}

// ServesDomain returns true if the descriptor serves the given domain tag.
func (d *HandlerDescriptor) ServesDomain(tag string) bool {
	for _, dom := range d.Domains {
		if dom == tag {
			return true
		}
	}
	return false
}
