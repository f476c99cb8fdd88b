package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// repositoryIDProperty is shared by every tool that addresses a
// registered repository.
func repositoryIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"description": "Numeric id of a registered repository",
	}
}

// registerRepositoryTool returns the tool definition for register_repository
func registerRepositoryTool() mcp.Tool {
	return mcp.Tool{
		Name:        "register_repository",
		Description: "Register a GitHub repository so it can be indexed and searched",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"full_name": map[string]interface{}{
					"type":        "string",
					"description": "Repository full name in owner/name form (e.g., 'golang/go')",
				},
			},
			Required: []string{"full_name"},
		},
	}
}

// startIndexingTool returns the tool definition for start_indexing
func startIndexingTool() mcp.Tool {
	return mcp.Tool{
		Name:        "start_indexing",
		Description: "Start an asynchronous indexing job for a registered repository and return its job id",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"repository_id": repositoryIDProperty(),
				"full_name": map[string]interface{}{
					"type":        "string",
					"description": "Repository full name, accepted instead of repository_id",
				},
				"force": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, discard the existing index and rebuild from scratch",
					"default":     false,
				},
			},
		},
	}
}

// getProgressTool returns the tool definition for get_progress
func getProgressTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_progress",
		Description: "Get a progress snapshot of an indexing job, including terminal ones",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"job_id": map[string]interface{}{
					"type":        "string",
					"description": "Job id returned by start_indexing",
				},
			},
			Required: []string{"job_id"},
		},
	}
}

// cancelIndexingTool returns the tool definition for cancel_indexing
func cancelIndexingTool() mcp.Tool {
	return mcp.Tool{
		Name:        "cancel_indexing",
		Description: "Request cancellation of a running indexing job",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"job_id": map[string]interface{}{
					"type":        "string",
					"description": "Job id returned by start_indexing",
				},
			},
			Required: []string{"job_id"},
		},
	}
}

// searchCodeTool returns the tool definition for search_code
func searchCodeTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_code",
		Description: "Semantic search over an indexed repository's code blocks",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"repository_id": repositoryIDProperty(),
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Natural language or keyword query",
				},
				"max_results": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results to return (1-100)",
					"default":     10,
					"minimum":     1,
					"maximum":     100,
				},
				"min_score": map[string]interface{}{
					"type":        "number",
					"description": "Minimum similarity score threshold (0.0-1.0)",
					"minimum":     0.0,
					"maximum":     1.0,
				},
			},
			Required: []string{"repository_id", "query"},
		},
	}
}

// repositoryStatsTool returns the tool definition for repository_stats
func repositoryStatsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "repository_stats",
		Description: "Report indexing state and index statistics for a repository",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"repository_id": repositoryIDProperty(),
			},
			Required: []string{"repository_id"},
		},
	}
}

// deleteIndexTool returns the tool definition for delete_index
func deleteIndexTool() mcp.Tool {
	return mcp.Tool{
		Name:        "delete_index",
		Description: "Delete a repository's vector index and incremental bookkeeping",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"repository_id": repositoryIDProperty(),
			},
			Required: []string{"repository_id"},
		},
	}
}
