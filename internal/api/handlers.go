package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/leofalp/promptcraft/core/compose"
	"github.com/leofalp/promptcraft/core/export"
	"github.com/leofalp/promptcraft/core/prompt"
	"github.com/leofalp/promptcraft/providers/ai"
)

type updateRequest struct {
	Field prompt.Field    `json:"field"`
	Value json.RawMessage `json:"value"`
}

type tagRequest struct {
	Tag string `json:"tag"`
}

type syncRequest struct {
	Tag string `json:"tag"`
	Add bool   `json:"add"`
}

type nodeRequest struct {
	TemplateKey string `json:"templateKey"`
}

type fieldRequest struct {
	Field string `json:"field"`
	Value any    `json:"value"`
}

type valueRequest struct {
	Value any `json:"value"`
}

type referenceRequest struct {
	URL string `json:"url"`
}

type textResponse struct {
	Tool prompt.ToolID `json:"tool"`
	Text string        `json:"text"`
}

func (s *Server) toolParam(c echo.Context) (prompt.ToolID, error) {
	tool, ok := prompt.ParseToolID(c.Param("tool"))
	if !ok {
		return "", fmt.Errorf("%w: %q", prompt.ErrUnknownTool, c.Param("tool"))
	}
	return tool, nil
}

// pathParam returns the unescaped path parameter name.
func pathParam(c echo.Context, name string) string {
	value := c.Param(name)
	if unescaped, err := url.PathUnescape(value); err == nil {
		return unescaped
	}
	return value
}

func (s *Server) getCatalog(c echo.Context) error {
	return c.JSON(http.StatusOK, s.catalog)
}

func (s *Server) getSettings(c echo.Context) error {
	current, err := s.settings.Load()
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, current.Masked())
}

// putSettings saves the record. A key equal to the masked form of the stored
// key keeps the stored key, so the UI can round-trip what GET returned.
func (s *Server) putSettings(c echo.Context) error {
	var incoming ai.Settings
	if err := c.Bind(&incoming); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid settings body")
	}

	id, ok := ai.ParseProviderID(string(incoming.Provider))
	if !ok {
		return writeError(c, fmt.Errorf("%w: %q", ai.ErrUnknownProvider, incoming.Provider))
	}
	incoming.Provider = id

	current, err := s.settings.Load()
	if err != nil {
		return writeError(c, err)
	}
	if incoming.APIKey != "" && incoming.APIKey == current.Masked().APIKey {
		incoming.APIKey = current.APIKey
	}

	if err := s.settings.Save(incoming); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, incoming.Masked())
}

func (s *Server) listPrompts(c echo.Context) error {
	return c.JSON(http.StatusOK, s.prompts.Snapshot())
}

func (s *Server) getPrompt(c echo.Context) error {
	tool, err := s.toolParam(c)
	if err != nil {
		return writeError(c, err)
	}
	shape, _ := s.prompts.Shape(tool)
	return c.JSON(http.StatusOK, shape)
}

// decodeFieldValue turns the raw JSON value into the Go type Update expects
// for field.
func decodeFieldValue(field prompt.Field, raw json.RawMessage) (any, error) {
	var (
		value any
		err   error
	)
	switch field {
	case prompt.FieldModifiers:
		var modifiers []string
		err = json.Unmarshal(raw, &modifiers)
		value = modifiers
	case prompt.FieldNodes:
		var nodes []prompt.GraphNode
		err = json.Unmarshal(raw, &nodes)
		value = nodes
	case prompt.FieldParams:
		var params []prompt.Param
		err = json.Unmarshal(raw, &params)
		value = params
	default:
		var text string
		err = json.Unmarshal(raw, &text)
		value = text
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", prompt.ErrInvalidValue, field, err)
	}
	return value, nil
}

func (s *Server) updatePrompt(c echo.Context) error {
	tool, err := s.toolParam(c)
	if err != nil {
		return writeError(c, err)
	}

	var req updateRequest
	if err := c.Bind(&req); err != nil || len(req.Value) == 0 {
		return errorJSON(c, http.StatusBadRequest, "body must be {\"field\": ..., \"value\": ...}")
	}
	value, err := decodeFieldValue(req.Field, req.Value)
	if err != nil {
		return writeError(c, err)
	}

	shape, err := s.prompts.Update(tool, req.Field, value)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, shape)
}

func (s *Server) clearPrompt(c echo.Context) error {
	tool, err := s.toolParam(c)
	if err != nil {
		return writeError(c, err)
	}
	shape, err := s.prompts.Clear(tool)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, shape)
}

func (s *Server) addModifier(c echo.Context) error {
	tool, err := s.toolParam(c)
	if err != nil {
		return writeError(c, err)
	}
	var req tagRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid body")
	}

	shape, err := s.prompts.AddModifier(tool, req.Tag)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, shape)
}

func (s *Server) deleteModifier(c echo.Context) error {
	tool, err := s.toolParam(c)
	if err != nil {
		return writeError(c, err)
	}
	shape, err := s.prompts.DeleteEnhancer(tool, pathParam(c, "tag"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, shape)
}

func (s *Server) editModifier(c echo.Context) error {
	tool, err := s.toolParam(c)
	if err != nil {
		return writeError(c, err)
	}
	var req tagRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid body")
	}

	shape, err := s.prompts.EditEnhancer(tool, pathParam(c, "tag"), req.Tag)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, shape)
}

func (s *Server) syncEnhancer(c echo.Context) error {
	var req syncRequest
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Tag) == "" {
		return errorJSON(c, http.StatusBadRequest, "body must be {\"tag\": ..., \"add\": true|false}")
	}
	return c.JSON(http.StatusOK, s.prompts.SyncEnhancerAcrossBuilders(req.Tag, req.Add))
}

func (s *Server) addNode(c echo.Context) error {
	var req nodeRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid body")
	}
	node, err := s.prompts.AddNode(req.TemplateKey)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, node)
}

// importNodes accepts a node list or a ComfyUI API-format workflow as the raw
// request body.
func (s *Server) importNodes(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, 1<<20))
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "could not read body")
	}
	nodes, err := prompt.ParseNodes(string(body))
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, s.prompts.ImportNodes(nodes))
}

func nodeID(c echo.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return 0, fmt.Errorf("%w: node id %q", prompt.ErrInvalidValue, c.Param("id"))
	}
	return id, nil
}

func (s *Server) removeNode(c echo.Context) error {
	id, err := nodeID(c)
	if err != nil {
		return writeError(c, err)
	}
	shape, err := s.prompts.RemoveNode(id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, shape)
}

func (s *Server) setNodeField(c echo.Context) error {
	id, err := nodeID(c)
	if err != nil {
		return writeError(c, err)
	}
	var req fieldRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid body")
	}

	shape, err := s.prompts.SetNodeField(id, req.Field, req.Value)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, shape)
}

func (s *Server) setParam(c echo.Context) error {
	var req valueRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid body")
	}
	shape, err := s.prompts.SetParam(pathParam(c, "name"), req.Value)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, shape)
}

func (s *Server) composePrompt(c echo.Context) error {
	tool, err := s.toolParam(c)
	if err != nil {
		return writeError(c, err)
	}
	text, _ := compose.Current(s.prompts.Snapshot(), tool)
	return c.JSON(http.StatusOK, textResponse{Tool: tool, Text: text})
}

// copyPrompt composes the prompt and records it in the history. The actual
// clipboard write happens in the browser.
func (s *Server) copyPrompt(c echo.Context) error {
	tool, err := s.toolParam(c)
	if err != nil {
		return writeError(c, err)
	}
	text, _ := compose.Current(s.prompts.Snapshot(), tool)
	entry, ok := s.history.Add(tool, text)
	if !ok {
		return errorJSON(c, http.StatusBadRequest, "nothing to copy")
	}
	return c.JSON(http.StatusOK, entry)
}

func (s *Server) exportPrompt(c echo.Context) error {
	tool, err := s.toolParam(c)
	if err != nil {
		return writeError(c, err)
	}
	shape, _ := s.prompts.Shape(tool)
	now := s.now()

	document := export.Markdown(tool, shape, compose.Compose(tool, shape), now)
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", export.FileName(tool, now)))
	return c.Blob(http.StatusOK, "text/markdown; charset=utf-8", []byte(document))
}

func (s *Server) enhancePrompt(c echo.Context) error {
	tool, err := s.toolParam(c)
	if err != nil {
		return writeError(c, err)
	}
	b, _ := s.builders.Get(tool)

	text, err := b.Enhance(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, textResponse{Tool: tool, Text: text})
}

func (s *Server) autoNegative(c echo.Context) error {
	tool, err := s.toolParam(c)
	if err != nil {
		return writeError(c, err)
	}
	b, _ := s.builders.Get(tool)

	text, err := b.AutoNegative(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, textResponse{Tool: tool, Text: text})
}

// seedFromReference replaces the main prompt with the Markdown of a web page.
func (s *Server) seedFromReference(c echo.Context) error {
	tool, err := s.toolParam(c)
	if err != nil {
		return writeError(c, err)
	}
	var req referenceRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid body")
	}

	page, err := s.fetcher.Fetch(c.Request().Context(), req.URL)
	if err != nil {
		return errorJSON(c, http.StatusBadGateway, err.Error())
	}
	shape, err := s.prompts.Update(tool, prompt.FieldMain, page.Markdown)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, shape)
}

func (s *Server) listHistory(c echo.Context) error {
	return c.JSON(http.StatusOK, s.history.List())
}

func (s *Server) clearHistory(c echo.Context) error {
	s.history.Clear()
	return c.NoContent(http.StatusNoContent)
}
