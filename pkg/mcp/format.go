package mcp

import "encoding/json"

// textResult wraps a plain message as tool output.
func textResult(text string) ToolCallResult {
	return ToolCallResult{
		Content: []ContentBlock{{Type: "text", Text: text}},
	}
}

// errorResult wraps a failure message as tool output with the error
// flag set.
func errorResult(text string) ToolCallResult {
	return ToolCallResult{
		Content: []ContentBlock{{Type: "text", Text: text}},
		IsError: true,
	}
}

// rawResult passes a WordPress JSON reply through unchanged.
func rawResult(raw json.RawMessage) ToolCallResult {
	return textResult(string(raw))
}

// jsonResult renders a management snapshot as indented JSON.
func jsonResult(v any) ToolCallResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult("encoding result: " + err.Error())
	}
	return textResult(string(data))
}
