package prompt

import "errors"

var (
	ErrUnknownTool     = errors.New("unknown tool")
	ErrInvalidField    = errors.New("field not valid for tool")
	ErrInvalidValue    = errors.New("invalid value for field")
	ErrNotFound        = errors.New("modifier not found")
	ErrNodeNotFound    = errors.New("node not found")
	ErrUnknownTemplate = errors.New("unknown node template")
)
