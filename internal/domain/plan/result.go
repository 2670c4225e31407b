package plan

// Document is one projected result row: identifier, title, url, and the
// matched category fields.
type Document struct {
	ID     string            `json:"id"`
	Title  string            `json:"title"`
	URL    string            `json:"url"`
	Fields map[string]string `json:"fields,omitempty"`
}

// GroupCount is one bucket of a grouped-count result.
type GroupCount struct {
	Keys  map[string]string `json:"keys"`
	Count int64             `json:"count"`
}

// Result is the output of executing a plan. Exactly one of Documents,
// Groups, or Count carries the payload, depending on the plan's final
// stage.
type Result struct {
	Documents []Document   `json:"documents,omitempty"`
	Groups    []GroupCount `json:"groups,omitempty"`
	Count     int64        `json:"count"`
}
