// Package mcp implements a Model Context Protocol server over stdio.
// Requests arrive as newline-delimited JSON-RPC 2.0 on stdin and
// responses leave the same way on stdout, which is why nothing in this
// process may ever print to stdout. Tools are thin wrappers around the
// site clients: they resolve a site, shape the REST route and
// query/body from the tool arguments, and pass the site's JSON reply
// back to the caller.
package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"presshq/pressgate/pkg/cache"
	"presshq/pressgate/pkg/sitefactory"
	"presshq/pressgate/pkg/telemetry/logging"
)

// maxLineBytes bounds one JSON-RPC line. Large payloads (post content,
// settings blobs) fit comfortably; anything bigger is a protocol
// violation.
const maxLineBytes = 1024 * 1024

// Server answers MCP requests using the site clients it is given.
type Server struct {
	sites   *sitefactory.Manager
	cache   *cache.Manager
	logger  *logging.Logger
	name    string
	version string
}

// New creates an MCP server. The cache manager may be nil when caching
// is disabled; cache tools then report that it is not configured.
func New(sites *sitefactory.Manager, cacheMgr *cache.Manager, logger *logging.Logger, name, version string) *Server {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Server{
		sites:   sites,
		cache:   cacheMgr,
		logger:  logger,
		name:    name,
		version: version,
	}
}

// Run reads JSON-RPC requests from r line by line and writes responses
// to w. It returns when r is closed, the scanner fails, or ctx is
// cancelled between requests.
func (s *Server) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, maxLineBytes), maxLineBytes)

	s.logger.Info("mcp server listening", "server", s.name, "version", s.version)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			s.logger.Warn("unparseable request line", "error", err)
			s.writeResponse(w, Response{
				JSONRPC: "2.0",
				Error:   &RPCError{Code: CodeParseError, Message: "parse error"},
			})
			continue
		}

		resp := s.dispatch(ctx, &req)
		if resp == nil {
			// notification, no response
			continue
		}
		s.writeResponse(w, *resp)
	}
	return scanner.Err()
}

func (s *Server) dispatch(ctx context.Context, req *Request) *Response {
	s.logger.Debug("mcp request", "method", req.Method)

	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	default:
		return &Response{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   &RPCError{Code: CodeMethodNotFound, Message: fmt.Sprintf("unknown method: %s", req.Method)},
		}
	}
}

func (s *Server) handleInitialize(req *Request) *Response {
	return &Response{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: InitializeResult{
			ProtocolVersion: protocolVersion,
			ServerInfo:      ServerInfo{Name: s.name, Version: s.version},
			Capabilities:    map[string]any{"tools": map[string]any{}},
		},
	}
}

func (s *Server) handleToolsList(req *Request) *Response {
	return &Response{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result:  ToolsListResult{Tools: allTools},
	}
}

func (s *Server) handleToolsCall(ctx context.Context, req *Request) (resp *Response) {
	// A handler panic must not kill the stdio loop.
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("tool handler panic", "panic", fmt.Sprint(r))
			resp = &Response{
				JSONRPC: "2.0",
				ID:      req.ID,
				Error:   &RPCError{Code: CodeInternalError, Message: "internal error"},
			}
		}
	}()

	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil || params.Name == "" {
		return &Response{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   &RPCError{Code: CodeInvalidParams, Message: "invalid params"},
		}
	}

	handler, ok := toolHandlers[params.Name]
	if !ok {
		return &Response{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  errorResult(fmt.Sprintf("unknown tool: %s", params.Name)),
		}
	}

	args := map[string]any{}
	if len(params.Arguments) > 0 {
		if err := json.Unmarshal(params.Arguments, &args); err != nil {
			return &Response{
				JSONRPC: "2.0",
				ID:      req.ID,
				Result:  errorResult("tool arguments must be a JSON object"),
			}
		}
	}

	s.logger.Debug("tool call", "tool", params.Name)
	result := handler(ctx, s, args)
	if result.IsError {
		s.logger.Debug("tool call failed", "tool", params.Name)
	}

	return &Response{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result:  result,
	}
}

func (s *Server) writeResponse(w io.Writer, resp Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		s.logger.Error("response marshal failed", "error", err)
		return
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		s.logger.Error("response write failed", "error", err)
	}
}
