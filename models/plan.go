package models

// Tool identifiers. The router only ever selects one of these.
const (
	ToolLawRAG    = "law_rag_tool"
	ToolNews      = "news_tool"
	ToolBlog      = "blog_tool"
	ToolWebSearch = "websearch_tool"
	ToolDBQuery   = "db_query_tool"
	ToolGeneral   = "general_tool"
)

// ToolPlan is the router's decision: exactly one tool plus its arguments.
type ToolPlan struct {
	Tool string            `json:"tool"`
	Args map[string]string `json:"args"`
}

// Query returns the normalized question text carried by the plan.
func (p ToolPlan) Query() string {
	return p.Args["query"]
}

// StructuredKey returns the detected statute citation, if the router parsed
// one. ok is false when the plan carries no key and the law tool must start
// at the semantic-search phase.
func (p ToolPlan) StructuredKey() (law, article string, ok bool) {
	law = p.Args["law"]
	article = p.Args["article"]
	return law, article, law != "" && article != ""
}
