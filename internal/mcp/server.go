package mcp

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/reviewlens/reviewlens/internal/indexer"
	"github.com/reviewlens/reviewlens/internal/repostore"
	"github.com/reviewlens/reviewlens/internal/searcher"
)

const (
	// ServerName is the MCP server name
	ServerName = "reviewlens"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Server exposes the indexing pipeline over MCP stdio. All logging goes
// to stderr; stdout belongs to the protocol.
type Server struct {
	mcp      *server.MCPServer
	store    repostore.Store
	indexer  *indexer.Indexer
	searcher *searcher.Searcher
	log      *slog.Logger
}

// NewServer wires an MCP server around already-constructed dependencies.
func NewServer(store repostore.Store, idx *indexer.Indexer, srch *searcher.Searcher, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}

	s := &Server{
		mcp:      server.NewMCPServer(ServerName, ServerVersion),
		store:    store,
		indexer:  idx,
		searcher: srch,
		log:      log,
	}
	s.registerTools()
	return s
}

// Serve runs the stdio transport until the peer disconnects.
func (s *Server) Serve(ctx context.Context) error {
	s.log.Info("mcp server starting", "name", ServerName, "version", ServerVersion)
	return server.ServeStdio(s.mcp)
}

func (s *Server) registerTools() {
	s.mcp.AddTool(registerRepositoryTool(), s.handleRegisterRepository)
	s.mcp.AddTool(startIndexingTool(), s.handleStartIndexing)
	s.mcp.AddTool(getProgressTool(), s.handleGetProgress)
	s.mcp.AddTool(cancelIndexingTool(), s.handleCancelIndexing)
	s.mcp.AddTool(searchCodeTool(), s.handleSearchCode)
	s.mcp.AddTool(repositoryStatsTool(), s.handleRepositoryStats)
	s.mcp.AddTool(deleteIndexTool(), s.handleDeleteIndex)
}
