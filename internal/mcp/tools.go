package mcp

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"snapsort/internal/model"
	"snapsort/internal/organize"
	"snapsort/internal/protocol"
)

var toolOrder = []string{
	protocol.ToolNameListFiles,
	protocol.ToolNameAnalyzeFile,
	protocol.ToolNameListCategories,
	protocol.ToolNameSuggestCategory,
	protocol.ToolNameCreateDirectory,
	protocol.ToolNameMoveFile,
	protocol.ToolNameSuggestFilename,
}

type toolHandler func(context.Context, map[string]interface{}) (toolCallResult, *toolExecutionError)

type toolDefinition struct {
	Name         string                 `json:"name"`
	Description  string                 `json:"description"`
	InputSchema  map[string]interface{} `json:"inputSchema"`
	OutputSchema map[string]interface{} `json:"outputSchema,omitempty"`
	handler      toolHandler            `json:"-"`
}

type toolsCallParams struct {
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments,omitempty"`
}

type toolCallResult struct {
	Content           []toolContentItem `json:"content"`
	StructuredContent interface{}       `json:"structuredContent,omitempty"`
	IsError           bool              `json:"isError,omitempty"`
}

type toolContentItem struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type toolExecutionError struct {
	Code      string
	Message   string
	Retryable bool
}

func (s *Server) buildToolRegistry() map[string]toolDefinition {
	return map[string]toolDefinition{
		protocol.ToolNameListFiles: {
			Name:         protocol.ToolNameListFiles,
			Description:  "List image files in a directory.",
			InputSchema:  listFilesInputSchema(),
			OutputSchema: listFilesOutputSchema(),
			handler:      s.handleListFilesTool,
		},
		protocol.ToolNameAnalyzeFile: {
			Name:         protocol.ToolNameAnalyzeFile,
			Description:  "Extract text or a description from a screenshot via OCR, escalating to a vision model when OCR is sparse.",
			InputSchema:  analyzeFileInputSchema(),
			OutputSchema: analyzeFileOutputSchema(),
			handler:      s.handleAnalyzeFileTool,
		},
		protocol.ToolNameListCategories: {
			Name:         protocol.ToolNameListCategories,
			Description:  "List the configured organization categories with their keyword hints.",
			InputSchema:  emptyInputSchema(),
			OutputSchema: listCategoriesOutputSchema(),
			handler:      s.handleListCategoriesTool,
		},
		protocol.ToolNameSuggestCategory: {
			Name:         protocol.ToolNameSuggestCategory,
			Description:  "Match extracted text against category keywords; returns the best category with a confidence score.",
			InputSchema:  suggestCategoryInputSchema(),
			OutputSchema: suggestCategoryOutputSchema(),
			handler:      s.handleSuggestCategoryTool,
		},
		protocol.ToolNameCreateDirectory: {
			Name:         protocol.ToolNameCreateDirectory,
			Description:  "Create a category directory under the base folder. Idempotent.",
			InputSchema:  createDirectoryInputSchema(),
			OutputSchema: createDirectoryOutputSchema(),
			handler:      s.handleCreateDirectoryTool,
		},
		protocol.ToolNameMoveFile: {
			Name:         protocol.ToolNameMoveFile,
			Description:  "Move or copy a file into a destination directory, resolving name collisions.",
			InputSchema:  moveFileInputSchema(),
			OutputSchema: moveFileOutputSchema(),
			handler:      s.handleMoveFileTool,
		},
		protocol.ToolNameSuggestFilename: {
			Name:         protocol.ToolNameSuggestFilename,
			Description:  "Build a filesystem-safe descriptive filename from extracted text.",
			InputSchema:  suggestFilenameInputSchema(),
			OutputSchema: suggestFilenameOutputSchema(),
			handler:      s.handleSuggestFilenameTool,
		},
	}
}

// Tools returns the descriptor set in stable order.
func (s *Server) Tools() []toolDefinition {
	tools := make([]toolDefinition, 0, len(s.tools))
	for _, name := range toolOrder {
		if tool, ok := s.tools[name]; ok {
			tools = append(tools, tool)
		}
	}
	if len(tools) == 0 {
		names := make([]string, 0, len(s.tools))
		for name := range s.tools {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			tools = append(tools, s.tools[name])
		}
	}
	return tools
}

func newToolErrorResult(toolErr toolExecutionError) toolCallResult {
	text := fmt.Sprintf("ERROR: %s: %s", toolErr.Code, toolErr.Message)
	return toolCallResult{
		IsError: true,
		Content: []toolContentItem{
			{Type: "text", Text: text},
		},
		StructuredContent: map[string]interface{}{
			"error": map[string]interface{}{
				"code":      toolErr.Code,
				"message":   toolErr.Message,
				"retryable": toolErr.Retryable,
			},
		},
	}
}

func (s *Server) handleListFilesTool(_ context.Context, args map[string]interface{}) (toolCallResult, *toolExecutionError) {
	if err := assertNoUnknownArguments(args, map[string]struct{}{
		"directory": {},
		"recursive": {},
		"max_count": {},
	}); err != nil {
		return toolCallResult{}, &toolExecutionError{Code: protocol.ErrorCodeInvalidField, Message: err.Error()}
	}

	directory, ok, err := parseRequiredString(args, "directory")
	if err != nil {
		return toolCallResult{}, &toolExecutionError{Code: protocol.ErrorCodeInvalidField, Message: err.Error()}
	}
	if !ok {
		return toolCallResult{}, &toolExecutionError{Code: protocol.ErrorCodeMissingField, Message: "directory is required"}
	}
	recursive, err := parseOptionalBool(args, "recursive", false)
	if err != nil {
		return toolCallResult{}, &toolExecutionError{Code: protocol.ErrorCodeInvalidField, Message: err.Error()}
	}
	maxCount := 100
	if raw, exists := args["max_count"]; exists {
		parsed, parseErr := parseInteger(raw, "max_count")
		if parseErr != nil {
			return toolCallResult{}, &toolExecutionError{Code: protocol.ErrorCodeInvalidField, Message: parseErr.Error()}
		}
		maxCount = parsed
	}
	if maxCount < 1 || maxCount > 5000 {
		return toolCallResult{}, &toolExecutionError{Code: protocol.ErrorCodeInvalidRange, Message: "max_count must be between 1 and 5000"}
	}

	directory = organize.NormalizePath(expandHome(directory))
	info, statErr := os.Stat(directory)
	if statErr != nil || !info.IsDir() {
		return toolCallResult{}, &toolExecutionError{Code: protocol.ErrorCodeNotFound, Message: "directory not found: " + directory}
	}

	files, listErr := listImageFiles(directory, recursive)
	if listErr != nil {
		return toolCallResult{}, &toolExecutionError{Code: protocol.ErrorCodeExecutionFailed, Message: listErr.Error()}
	}

	totalCount := len(files)
	truncated := false
	if totalCount > maxCount {
		files = files[:maxCount]
		truncated = true
	}

	fileMaps := make([]map[string]interface{}, 0, len(files))
	for _, f := range files {
		fileMaps = append(fileMaps, map[string]interface{}{
			"path":          f.Path,
			"name":          f.Filename,
			"size_bytes":    f.SizeBytes,
			"modified_time": f.ModifiedTime,
		})
	}

	structured := map[string]interface{}{
		"directory":   directory,
		"files":       fileMaps,
		"total_count": totalCount,
		"truncated":   truncated,
	}
	text := fmt.Sprintf("found %d image(s) in %s", totalCount, directory)
	if truncated {
		text += fmt.Sprintf(" (showing first %d)", maxCount)
	}
	return toolCallResult{
		Content:           []toolContentItem{{Type: "text", Text: text}},
		StructuredContent: structured,
	}, nil
}

func listImageFiles(directory string, recursive bool) ([]model.FileInfo, error) {
	var files []model.FileInfo
	if recursive {
		err := filepath.WalkDir(directory, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if d.IsDir() || !organize.IsImage(path) {
				return nil
			}
			info, infoErr := d.Info()
			if infoErr != nil {
				return nil
			}
			files = append(files, model.FileInfo{
				Path:         path,
				Filename:     d.Name(),
				SizeBytes:    info.Size(),
				ModifiedTime: info.ModTime().Unix(),
			})
			return nil
		})
		if err != nil {
			return nil, err
		}
	} else {
		entries, err := os.ReadDir(directory)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			if entry.IsDir() || !organize.IsImage(entry.Name()) {
				continue
			}
			info, infoErr := entry.Info()
			if infoErr != nil {
				continue
			}
			files = append(files, model.FileInfo{
				Path:         filepath.Join(directory, entry.Name()),
				Filename:     entry.Name(),
				SizeBytes:    info.Size(),
				ModifiedTime: info.ModTime().Unix(),
			})
		}
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

func (s *Server) handleAnalyzeFileTool(ctx context.Context, args map[string]interface{}) (toolCallResult, *toolExecutionError) {
	if err := assertNoUnknownArguments(args, map[string]struct{}{
		"path":           {},
		"force_fallback": {},
	}); err != nil {
		return toolCallResult{}, &toolExecutionError{Code: protocol.ErrorCodeInvalidField, Message: err.Error()}
	}

	path, ok, err := parseRequiredString(args, "path")
	if err != nil {
		return toolCallResult{}, &toolExecutionError{Code: protocol.ErrorCodeInvalidField, Message: err.Error()}
	}
	if !ok {
		return toolCallResult{}, &toolExecutionError{Code: protocol.ErrorCodeMissingField, Message: "path is required"}
	}
	forceFallback, err := parseOptionalBool(args, "force_fallback", false)
	if err != nil {
		return toolCallResult{}, &toolExecutionError{Code: protocol.ErrorCodeInvalidField, Message: err.Error()}
	}

	path = organize.NormalizePath(expandHome(path))
	if _, statErr := os.Stat(path); statErr != nil {
		if errors.Is(statErr, os.ErrNotExist) {
			return toolCallResult{}, &toolExecutionError{Code: protocol.ErrorCodeNotFound, Message: "file not found: " + path}
		}
		return toolCallResult{}, &toolExecutionError{Code: protocol.ErrorCodeUnreadableFile, Message: statErr.Error()}
	}
	if f, openErr := os.Open(path); openErr != nil {
		return toolCallResult{}, &toolExecutionError{Code: protocol.ErrorCodeUnreadableFile, Message: openErr.Error()}
	} else {
		_ = f.Close()
	}

	analysis := s.engine.Analyze(ctx, path, forceFallback)

	structured := map[string]interface{}{
		"path":               path,
		"extracted_text":     analysis.ExtractedText,
		"vision_description": analysis.VisionDescription,
		"method":             analysis.Method,
		"word_count":         analysis.WordCount,
		"elapsed_ms":         analysis.ElapsedMS,
		"success":            analysis.Success,
	}
	if analysis.Error != "" {
		structured["error"] = analysis.Error
	}

	text := fmt.Sprintf("analyzed %s via %s (%d words)", filepath.Base(path), analysis.Method, analysis.WordCount)
	if !analysis.Success {
		text = fmt.Sprintf("analysis of %s failed: %s", filepath.Base(path), analysis.Error)
	}
	return toolCallResult{
		Content:           []toolContentItem{{Type: "text", Text: text}},
		StructuredContent: structured,
	}, nil
}

func (s *Server) handleListCategoriesTool(_ context.Context, args map[string]interface{}) (toolCallResult, *toolExecutionError) {
	if err := assertNoUnknownArguments(args, map[string]struct{}{}); err != nil {
		return toolCallResult{}, &toolExecutionError{Code: protocol.ErrorCodeInvalidField, Message: err.Error()}
	}

	categories := s.classifier.Categories(s.cfg.Organization.Categories)
	categoryMaps := make([]map[string]interface{}, 0, len(categories))
	for _, c := range categories {
		categoryMaps = append(categoryMaps, map[string]interface{}{
			"name":        c.Name,
			"description": c.Description,
			"keywords":    c.Keywords,
		})
	}

	structured := map[string]interface{}{
		"categories":  categoryMaps,
		"base_folder": s.cfg.Organization.BaseFolder,
	}
	return toolCallResult{
		Content:           []toolContentItem{{Type: "text", Text: fmt.Sprintf("%d categories configured", len(categories))}},
		StructuredContent: structured,
	}, nil
}

func (s *Server) handleSuggestCategoryTool(_ context.Context, args map[string]interface{}) (toolCallResult, *toolExecutionError) {
	if err := assertNoUnknownArguments(args, map[string]struct{}{
		"text":       {},
		"categories": {},
	}); err != nil {
		return toolCallResult{}, &toolExecutionError{Code: protocol.ErrorCodeInvalidField, Message: err.Error()}
	}

	rawText, err := parseOptionalString(args, "text")
	if err != nil {
		return toolCallResult{}, &toolExecutionError{Code: protocol.ErrorCodeInvalidField, Message: err.Error()}
	}
	if _, present := args["text"]; !present {
		return toolCallResult{}, &toolExecutionError{Code: protocol.ErrorCodeMissingField, Message: "text is required"}
	}
	allowed, err := parseOptionalStringSlice(args, "categories")
	if err != nil {
		return toolCallResult{}, &toolExecutionError{Code: protocol.ErrorCodeInvalidField, Message: err.Error()}
	}
	if len(allowed) == 0 {
		allowed = s.cfg.Organization.Categories
	}

	suggestion := s.classifier.Suggest(rawText, allowed)

	structured := map[string]interface{}{
		"category":         suggestion.Category,
		"confidence":       suggestion.Confidence,
		"matched_keywords": suggestion.MatchedKeywords,
	}
	text := fmt.Sprintf("suggested category %q (confidence %.1f)", suggestion.Category, suggestion.Confidence)
	return toolCallResult{
		Content:           []toolContentItem{{Type: "text", Text: text}},
		StructuredContent: structured,
	}, nil
}

func (s *Server) handleCreateDirectoryTool(_ context.Context, args map[string]interface{}) (toolCallResult, *toolExecutionError) {
	if err := assertNoUnknownArguments(args, map[string]struct{}{
		"category": {},
		"base_dir": {},
	}); err != nil {
		return toolCallResult{}, &toolExecutionError{Code: protocol.ErrorCodeInvalidField, Message: err.Error()}
	}

	category, ok, err := parseRequiredString(args, "category")
	if err != nil {
		return toolCallResult{}, &toolExecutionError{Code: protocol.ErrorCodeInvalidField, Message: err.Error()}
	}
	if !ok {
		return toolCallResult{}, &toolExecutionError{Code: protocol.ErrorCodeMissingField, Message: "category is required"}
	}
	baseDir, err := parseOptionalString(args, "base_dir")
	if err != nil {
		return toolCallResult{}, &toolExecutionError{Code: protocol.ErrorCodeInvalidField, Message: err.Error()}
	}
	if baseDir == "" {
		baseDir = s.cfg.Organization.BaseFolder
	}
	baseDir = expandHome(baseDir)

	path, created, dirErr := organize.EnsureCategoryDir(category, baseDir)
	if dirErr != nil {
		code := protocol.ErrorCodeExecutionFailed
		if errors.Is(dirErr, os.ErrPermission) {
			code = protocol.ErrorCodePermissionDenied
		}
		return toolCallResult{}, &toolExecutionError{Code: code, Message: dirErr.Error()}
	}

	structured := map[string]interface{}{
		"path":    path,
		"created": created,
	}
	verb := "already existed"
	if created {
		verb = "created"
	}
	return toolCallResult{
		Content:           []toolContentItem{{Type: "text", Text: fmt.Sprintf("%s %s", verb, path)}},
		StructuredContent: structured,
	}, nil
}

func (s *Server) handleMoveFileTool(ctx context.Context, args map[string]interface{}) (toolCallResult, *toolExecutionError) {
	if err := assertNoUnknownArguments(args, map[string]struct{}{
		"source":        {},
		"dest_dir":      {},
		"new_name":      {},
		"keep_original": {},
	}); err != nil {
		return toolCallResult{}, &toolExecutionError{Code: protocol.ErrorCodeInvalidField, Message: err.Error()}
	}

	source, ok, err := parseRequiredString(args, "source")
	if err != nil {
		return toolCallResult{}, &toolExecutionError{Code: protocol.ErrorCodeInvalidField, Message: err.Error()}
	}
	if !ok {
		return toolCallResult{}, &toolExecutionError{Code: protocol.ErrorCodeMissingField, Message: "source is required"}
	}
	destDir, ok, err := parseRequiredString(args, "dest_dir")
	if err != nil {
		return toolCallResult{}, &toolExecutionError{Code: protocol.ErrorCodeInvalidField, Message: err.Error()}
	}
	if !ok {
		return toolCallResult{}, &toolExecutionError{Code: protocol.ErrorCodeMissingField, Message: "dest_dir is required"}
	}
	newName, err := parseOptionalString(args, "new_name")
	if err != nil {
		return toolCallResult{}, &toolExecutionError{Code: protocol.ErrorCodeInvalidField, Message: err.Error()}
	}
	keepOriginal, err := parseOptionalBool(args, "keep_original", s.cfg.Organization.KeepOriginals)
	if err != nil {
		return toolCallResult{}, &toolExecutionError{Code: protocol.ErrorCodeInvalidField, Message: err.Error()}
	}

	rec := organize.MoveOrCopy(expandHome(source), expandHome(destDir), newName, keepOriginal)
	if s.history != nil {
		category := filepath.Base(destDir)
		if histErr := s.history.RecordMove(ctx, rec, category, ""); histErr != nil {
			s.logger.Warn("failed to record move history", "error", histErr)
		}
	}

	// failed moves are still ordinary results so batch callers keep going
	structured := map[string]interface{}{
		"original_path": rec.OriginalPath,
		"new_path":      rec.NewPath,
		"operation":     rec.Operation,
		"success":       rec.Success,
	}
	if rec.Error != "" {
		structured["error"] = rec.Error
		structured["error_code"] = rec.ErrorCode
	}
	text := fmt.Sprintf("%sd %s -> %s", rec.Operation, rec.OriginalPath, rec.NewPath)
	if !rec.Success {
		text = fmt.Sprintf("%s failed for %s: %s", rec.Operation, rec.OriginalPath, rec.Error)
	}
	return toolCallResult{
		Content:           []toolContentItem{{Type: "text", Text: text}},
		StructuredContent: structured,
	}, nil
}

func (s *Server) handleSuggestFilenameTool(_ context.Context, args map[string]interface{}) (toolCallResult, *toolExecutionError) {
	if err := assertNoUnknownArguments(args, map[string]struct{}{
		"original_name": {},
		"category":      {},
		"text":          {},
	}); err != nil {
		return toolCallResult{}, &toolExecutionError{Code: protocol.ErrorCodeInvalidField, Message: err.Error()}
	}

	originalName, ok, err := parseRequiredString(args, "original_name")
	if err != nil {
		return toolCallResult{}, &toolExecutionError{Code: protocol.ErrorCodeInvalidField, Message: err.Error()}
	}
	if !ok {
		return toolCallResult{}, &toolExecutionError{Code: protocol.ErrorCodeMissingField, Message: "original_name is required"}
	}
	category, err := parseOptionalString(args, "category")
	if err != nil {
		return toolCallResult{}, &toolExecutionError{Code: protocol.ErrorCodeInvalidField, Message: err.Error()}
	}
	if category == "" {
		category = "screenshot"
	}
	text, err := parseOptionalString(args, "text")
	if err != nil {
		return toolCallResult{}, &toolExecutionError{Code: protocol.ErrorCodeInvalidField, Message: err.Error()}
	}

	name, ext := organize.SafeFilename(originalName, category, text)

	structured := map[string]interface{}{
		"filename":  name,
		"extension": ext,
	}
	return toolCallResult{
		Content:           []toolContentItem{{Type: "text", Text: name}},
		StructuredContent: structured,
	}, nil
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

func assertNoUnknownArguments(args map[string]interface{}, allowed map[string]struct{}) error {
	for key := range args {
		if _, ok := allowed[key]; !ok {
			return fmt.Errorf("unknown argument: %s", key)
		}
	}
	return nil
}

func parseRequiredString(args map[string]interface{}, key string) (string, bool, error) {
	raw, ok := args[key]
	if !ok {
		return "", false, nil
	}
	value, ok := raw.(string)
	if !ok {
		return "", true, fmt.Errorf("%s must be a string", key)
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", true, fmt.Errorf("%s must be a non-empty string", key)
	}
	return value, true, nil
}

func parseOptionalString(args map[string]interface{}, key string) (string, error) {
	raw, ok := args[key]
	if !ok {
		return "", nil
	}
	value, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%s must be a string", key)
	}
	return strings.TrimSpace(value), nil
}

func parseOptionalBool(args map[string]interface{}, key string, defaultValue bool) (bool, error) {
	raw, ok := args[key]
	if !ok {
		return defaultValue, nil
	}
	v, ok := raw.(bool)
	if !ok {
		return false, fmt.Errorf("%s must be a boolean", key)
	}
	return v, nil
}

func parseInteger(value interface{}, field string) (int, error) {
	switch v := value.(type) {
	case float64:
		if math.Trunc(v) != v {
			return 0, fmt.Errorf("%s must be an integer", field)
		}
		if v < math.MinInt || v > math.MaxInt {
			return 0, fmt.Errorf("%s is out of range", field)
		}
		return int(v), nil
	case int:
		return v, nil
	case int64:
		if v < math.MinInt || v > math.MaxInt {
			return 0, fmt.Errorf("%s is out of range", field)
		}
		return int(v), nil
	default:
		return 0, fmt.Errorf("%s must be an integer", field)
	}
}

func parseOptionalStringSlice(args map[string]interface{}, key string) ([]string, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return nil, nil
	}

	switch typed := raw.(type) {
	case []interface{}:
		out := make([]string, 0, len(typed))
		for idx, item := range typed {
			v, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%s[%d] must be a string", key, idx)
			}
			v = strings.TrimSpace(v)
			if v == "" {
				return nil, fmt.Errorf("%s[%d] must be a non-empty string", key, idx)
			}
			out = append(out, v)
		}
		return out, nil
	case []string:
		out := make([]string, 0, len(typed))
		for idx, item := range typed {
			item = strings.TrimSpace(item)
			if item == "" {
				return nil, fmt.Errorf("%s[%d] must be a non-empty string", key, idx)
			}
			out = append(out, item)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%s must be an array of strings", key)
	}
}
