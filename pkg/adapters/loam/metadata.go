package loam

// GraphMetadata is the structured part of a graph document. In Markdown
// documents it is the frontmatter and the body becomes the description; JSON
// and YAML documents carry it whole.
// It uses "mapstructure" tags to match standard Frontmatter/YAML keys.
type GraphMetadata struct {
	ID          string `json:"id" mapstructure:"id"`
	Name        string `json:"name" mapstructure:"name"`
	Title       string `json:"title" mapstructure:"title"`
	Description string `json:"description" mapstructure:"description"`

	// Graph sections are kept undecoded; the compiler parses them.
	Nodes       []any `json:"nodes" mapstructure:"nodes"`
	Connections []any `json:"connections" mapstructure:"connections"`
	Variables   []any `json:"variables" mapstructure:"variables"`
}
