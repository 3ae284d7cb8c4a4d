package model

// FileInfo describes one screenshot file returned by list_files.
type FileInfo struct {
	Path         string `json:"path"`
	Filename     string `json:"filename"`
	SizeBytes    int64  `json:"size_bytes"`
	ModifiedTime int64  `json:"modified_time"`
}

// Turn is one entry of a conversation thread. An assistant turn with
// ToolName set is a tool-call request; the matching "tool" turn carries the
// result the model sees on the next round.
type Turn struct {
	Role       string         `json:"role"`
	Content    string         `json:"content,omitempty"`
	ToolName   string         `json:"tool_name,omitempty"`
	ToolArgs   map[string]any `json:"tool_args,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
}

// Turn roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Analysis is the outcome of one tiered extraction run over a single file.
// It reports observations only; categorization is the agent's job.
type Analysis struct {
	ExtractedText     string  `json:"extracted_text"`
	VisionDescription string  `json:"vision_description,omitempty"`
	Method            string  `json:"processing_method"`
	ElapsedMS         float64 `json:"processing_time_ms"`
	WordCount         int     `json:"word_count"`
	Success           bool    `json:"success"`
	Error             string  `json:"error,omitempty"`
}

// Analysis method tags.
const (
	MethodOCR    = "ocr"
	MethodVision = "vision"
)

// OrganizeRecord describes a completed move or copy. It is only ever
// produced after the filesystem mutation has been attempted; a failed
// attempt yields Success=false rather than an error return.
type OrganizeRecord struct {
	OriginalPath string `json:"original_path"`
	NewPath      string `json:"new_path,omitempty"`
	Operation    string `json:"operation"`
	Success      bool   `json:"success"`
	Error        string `json:"error,omitempty"`
	ErrorCode    string `json:"error_code,omitempty"`
}

// Organize operation kinds.
const (
	OpMove = "move"
	OpCopy = "copy"
)

// CategoryInfo is one entry of the static category configuration.
type CategoryInfo struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
}

// Suggestion is the keyword classifier's best-effort category match.
type Suggestion struct {
	Category        string   `json:"suggested_category"`
	Confidence      float64  `json:"confidence"`
	MatchedKeywords []string `json:"matched_keywords"`
	Method          string   `json:"method"`
}
