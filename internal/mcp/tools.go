package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/reviewlens/reviewlens/internal/repostore"
	"github.com/reviewlens/reviewlens/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams      = -32602 // Invalid method parameters
	ErrorCodeInternalError      = -32603 // Internal JSON-RPC error
	ErrorCodeRepoNotFound       = -32001 // Repository is not registered
	ErrorCodeIndexingInProgress = -32002 // Another indexing job is already running
	ErrorCodeJobNotFound        = -32003 // Unknown job id
	ErrorCodeEmptyQuery         = -32004 // Query parameter is empty
)

// handleRegisterRepository handles the register_repository tool invocation
func (s *Server) handleRegisterRepository(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	fullName, _ := args["full_name"].(string)
	owner, name, err := splitFullName(fullName)
	if err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, err.Error(), map[string]interface{}{
			"param": "full_name",
		})
	}

	// Registration is idempotent: re-registering returns the existing
	// record.
	if existing, err := s.store.GetRepositoryByFullName(ctx, fullName); err == nil {
		return repositoryResult(existing, false), nil
	} else if !errors.Is(err, types.ErrNotFound) {
		return nil, internalError(err)
	}

	repo := &repostore.Repository{
		FullName:   fullName,
		OwnerLogin: owner,
		Name:       name,
	}
	if err := s.store.CreateRepository(ctx, repo); err != nil {
		return nil, internalError(err)
	}
	s.log.Info("repository registered", "repository", fullName, "id", repo.ID)
	return repositoryResult(repo, true), nil
}

func repositoryResult(repo *repostore.Repository, created bool) *mcp.CallToolResult {
	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"repository_id": repo.ID,
		"full_name":     repo.FullName,
		"created":       created,
	}))
}

// handleStartIndexing handles the start_indexing tool invocation
func (s *Server) handleStartIndexing(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	repositoryID, err := s.resolveRepositoryID(ctx, args)
	if err != nil {
		return nil, err
	}
	force := getBoolDefault(args, "force", false)

	jobID, err := s.indexer.StartIndexing(ctx, repositoryID, force)
	switch {
	case errors.Is(err, types.ErrSyncInProgress):
		return nil, newMCPError(ErrorCodeIndexingInProgress, "indexing already in progress", map[string]interface{}{
			"repository_id": repositoryID,
		})
	case errors.Is(err, types.ErrNotFound):
		return nil, newMCPError(ErrorCodeRepoNotFound, "repository not registered", map[string]interface{}{
			"repository_id": repositoryID,
		})
	case err != nil:
		return nil, internalError(err)
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"job_id":        jobID,
		"repository_id": repositoryID,
		"force":         force,
	})), nil
}

// handleGetProgress handles the get_progress tool invocation
func (s *Server) handleGetProgress(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	jobID, _ := args["job_id"].(string)
	if jobID == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "job_id parameter is required", nil)
	}

	progress, err := s.indexer.GetProgress(jobID)
	if errors.Is(err, types.ErrNotFound) {
		return nil, newMCPError(ErrorCodeJobNotFound, "job not found", map[string]interface{}{
			"job_id": jobID,
		})
	}
	if err != nil {
		return nil, internalError(err)
	}

	encoded, err := json.MarshalIndent(progress, "", "  ")
	if err != nil {
		return nil, internalError(err)
	}
	return mcp.NewToolResultText(string(encoded)), nil
}

// handleCancelIndexing handles the cancel_indexing tool invocation
func (s *Server) handleCancelIndexing(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	jobID, _ := args["job_id"].(string)
	if jobID == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "job_id parameter is required", nil)
	}

	err := s.indexer.CancelIndexing(jobID)
	if errors.Is(err, types.ErrNotFound) {
		return nil, newMCPError(ErrorCodeJobNotFound, "job not found", map[string]interface{}{
			"job_id": jobID,
		})
	}
	if err != nil {
		return nil, internalError(err)
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"job_id":    jobID,
		"cancelled": true,
	})), nil
}

// handleSearchCode handles the search_code tool invocation
func (s *Server) handleSearchCode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	repositoryID, err := s.resolveRepositoryID(ctx, args)
	if err != nil {
		return nil, err
	}

	query, _ := args["query"].(string)
	if strings.TrimSpace(query) == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query parameter is required and cannot be empty", map[string]interface{}{
			"param": "query",
		})
	}

	limit := getIntDefault(args, "max_results", 10)
	if limit < 1 || limit > 100 {
		return nil, newMCPError(ErrorCodeInvalidParams, "max_results must be between 1 and 100", map[string]interface{}{
			"param": "max_results",
			"value": limit,
		})
	}
	minScore := getFloatDefault(args, "min_score", 0)
	if minScore < 0 || minScore > 1 {
		return nil, newMCPError(ErrorCodeInvalidParams, "min_score must be between 0.0 and 1.0", map[string]interface{}{
			"param": "min_score",
			"value": minScore,
		})
	}

	matches, err := s.searcher.Search(ctx, repositoryID, query, minScore, limit)
	if err != nil {
		return nil, internalError(err)
	}

	results := make([]map[string]interface{}, len(matches))
	for i, m := range matches {
		results[i] = map[string]interface{}{
			"file_path":  m.Block.FilePath,
			"identifier": m.Block.Identifier,
			"block_type": string(m.Block.Type),
			"start_line": m.Block.StartLine,
			"end_line":   m.Block.EndLine,
			"score":      m.Score,
			"content":    m.Block.Content,
		}
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"repository_id": repositoryID,
		"query":         query,
		"count":         len(results),
		"results":       results,
	})), nil
}

// handleRepositoryStats handles the repository_stats tool invocation
func (s *Server) handleRepositoryStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	repositoryID, err := s.resolveRepositoryID(ctx, args)
	if err != nil {
		return nil, err
	}

	stats, err := s.indexer.Stats(ctx, repositoryID)
	if errors.Is(err, types.ErrNotFound) {
		return nil, newMCPError(ErrorCodeRepoNotFound, "repository not registered", map[string]interface{}{
			"repository_id": repositoryID,
		})
	}
	if err != nil {
		return nil, internalError(err)
	}

	response := map[string]interface{}{
		"repository_id":  stats.RepositoryID,
		"full_name":      stats.FullName,
		"state":          string(stats.State),
		"indexed_points": stats.IndexedPoints,
		"tracked_files":  stats.TrackedFiles,
		"languages":      stats.Languages,
	}
	if stats.StateMessage != "" {
		response["state_message"] = stats.StateMessage
	}
	if !stats.LastSyncedAt.IsZero() {
		response["last_synced_at"] = stats.LastSyncedAt.Format(time.RFC3339)
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleDeleteIndex handles the delete_index tool invocation
func (s *Server) handleDeleteIndex(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	repositoryID, err := s.resolveRepositoryID(ctx, args)
	if err != nil {
		return nil, err
	}

	if err := s.indexer.DeleteIndex(ctx, repositoryID); err != nil {
		if errors.Is(err, types.ErrSyncInProgress) {
			return nil, newMCPError(ErrorCodeIndexingInProgress, "cannot delete index while a job is running", map[string]interface{}{
				"repository_id": repositoryID,
			})
		}
		return nil, internalError(err)
	}
	s.log.Info("index deleted", "repository_id", repositoryID)

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"repository_id": repositoryID,
		"deleted":       true,
	})), nil
}

// resolveRepositoryID accepts either a repository_id or a full_name
// argument and returns the repository's id.
func (s *Server) resolveRepositoryID(ctx context.Context, args map[string]interface{}) (int64, error) {
	if id, ok := getInt64(args, "repository_id"); ok {
		return id, nil
	}

	fullName, _ := args["full_name"].(string)
	if fullName == "" {
		return 0, newMCPError(ErrorCodeInvalidParams, "repository_id or full_name is required", nil)
	}
	repo, err := s.store.GetRepositoryByFullName(ctx, fullName)
	if errors.Is(err, types.ErrNotFound) {
		return 0, newMCPError(ErrorCodeRepoNotFound, "repository not registered", map[string]interface{}{
			"full_name": fullName,
		})
	}
	if err != nil {
		return 0, internalError(err)
	}
	return repo.ID, nil
}

// Helper functions

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

func internalError(err error) error {
	return newMCPError(ErrorCodeInternalError, "internal error", map[string]interface{}{
		"error": err.Error(),
	})
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// splitFullName validates and splits an owner/name repository reference.
func splitFullName(fullName string) (owner, name string, err error) {
	parts := strings.Split(fullName, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("full_name must be in owner/name form, got %q", fullName)
	}
	return parts[0], parts[1], nil
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getBoolDefault extracts a boolean parameter with a default value
func getBoolDefault(args map[string]interface{}, key string, defaultValue bool) bool {
	if val, ok := args[key].(bool); ok {
		return val
	}
	return defaultValue
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getFloatDefault extracts a number parameter with a default value
func getFloatDefault(args map[string]interface{}, key string, defaultValue float64) float64 {
	if val, ok := args[key].(float64); ok {
		return val
	}
	if val, ok := args[key].(int); ok {
		return float64(val)
	}
	return defaultValue
}

// getInt64 extracts an integer parameter, reporting presence.
func getInt64(args map[string]interface{}, key string) (int64, bool) {
	switch v := args[key].(type) {
	case float64:
		return int64(v), true
	case int:
		return int64(v), true
	case int64:
		return v, true
	}
	return 0, false
}
