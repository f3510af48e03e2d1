package loam

// DiagramMetadata is the frontmatter of a library document.
// Tags use "mapstructure" to match the YAML keys loam decodes.
type DiagramMetadata struct {
	ID          string   `json:"id" mapstructure:"id"`
	Title       string   `json:"title" mapstructure:"title"`
	Description string   `json:"description" mapstructure:"description"`
	Tags        []string `json:"tags" mapstructure:"tags"`

	// Start names the entity animations begin from when none is given.
	Start string `json:"start" mapstructure:"start"`

	// Source holds the diagram text for documents without a body (json/yaml).
	Source string `json:"source" mapstructure:"source"`
}
