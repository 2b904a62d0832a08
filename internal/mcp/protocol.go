// Package mcp implements a streamable HTTP server for the Model Context
// Protocol: JSON-RPC requests over POST, notification delivery over a
// per-session SSE stream, and replay of missed notifications via
// Last-Event-ID checkpoints.
package mcp

import "encoding/json"

// SessionIDHeader carries the session identity on requests and responses.
const SessionIDHeader = "Mcp-Session-Id"

// protocolVersion is the MCP revision this server speaks.
const protocolVersion = "2024-11-05"

// JSON-RPC error codes.
const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeSessionError   = -32000
)

// Request is an incoming JSON-RPC 2.0 request or notification. A nil ID
// marks a notification.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// IsNotification reports whether the request carries no id.
func (r Request) IsNotification() bool {
	return len(r.ID) == 0 || string(r.ID) == "null"
}

// Response is an outgoing JSON-RPC 2.0 response.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError is the JSON-RPC error object.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func newResult(id json.RawMessage, result any) Response {
	return Response{JSONRPC: "2.0", ID: id, Result: result}
}

func newError(id json.RawMessage, code int, message string) Response {
	return Response{JSONRPC: "2.0", ID: id, Error: &RPCError{Code: code, Message: message}}
}

// Notification is a server-to-client JSON-RPC notification.
type Notification struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

// LogMessageParams is the body of a notifications/message notification.
type LogMessageParams struct {
	Level            string          `json:"level"`
	Logger           string          `json:"logger,omitempty"`
	Data             string          `json:"data"`
	RelatedRequestID json.RawMessage `json:"relatedRequestId,omitempty"`
}

// ResourceUpdatedParams is the body of a notifications/resources/updated
// notification.
type ResourceUpdatedParams struct {
	URI string `json:"uri"`
}

// Tool describes a callable tool for tools/list.
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

// ListToolsResult is the tools/list response body.
type ListToolsResult struct {
	Tools []Tool `json:"tools"`
}

// CallToolParams are the tools/call request parameters.
type CallToolParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments,omitempty"`
}

// TextContent is a single text payload in a tool result.
type TextContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// CallToolResult is the tools/call response body: a sequence of text
// payloads, each a serialized object.
type CallToolResult struct {
	Content []TextContent `json:"content"`
	IsError bool          `json:"isError,omitempty"`
}

// textResult wraps a JSON-serializable payload as a single-element tool
// result.
func textResult(payload any) CallToolResult {
	data, err := json.Marshal(payload)
	if err != nil {
		data = []byte(`{"error":"internal encoding failure"}`)
	}
	return CallToolResult{Content: []TextContent{{Type: "text", Text: string(data)}}}
}

// InitializeResult is the initialize response body.
type InitializeResult struct {
	ProtocolVersion string         `json:"protocolVersion"`
	Capabilities    map[string]any `json:"capabilities"`
	ServerInfo      ServerInfo     `json:"serverInfo"`
}

// ServerInfo identifies this server to clients.
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}
