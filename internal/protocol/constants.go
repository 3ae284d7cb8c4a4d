package protocol

const (
	ToolNameListFiles       = "list_files"
	ToolNameAnalyzeFile     = "analyze_file"
	ToolNameListCategories  = "list_categories"
	ToolNameSuggestCategory = "suggest_category"
	ToolNameCreateDirectory = "create_directory"
	ToolNameMoveFile        = "move_file"
	ToolNameSuggestFilename = "suggest_filename"
)

const (
	RPCMethodInitialize               = "initialize"
	RPCMethodNotificationsInitialized = "notifications/initialized"
	RPCMethodToolsList                = "tools/list"
	RPCMethodToolsCall                = "tools/call"
)

// Tool-level and resource-level error codes carried inside tool results.
const (
	ErrorCodeUnknownTool      = "UNKNOWN_TOOL"
	ErrorCodeMissingField     = "MISSING_FIELD"
	ErrorCodeInvalidField     = "INVALID_FIELD"
	ErrorCodeInvalidRange     = "INVALID_RANGE"
	ErrorCodeExecutionFailed  = "EXECUTION_FAILED"
	ErrorCodeNotFound         = "NOT_FOUND"
	ErrorCodeUnreadableFile   = "UNREADABLE_FILE"
	ErrorCodeSourceNotFound   = "SOURCE_NOT_FOUND"
	ErrorCodePermissionDenied = "PERMISSION_DENIED"
)

// Session-level error codes surfaced by the client wrapper. These are fatal
// to the session, unlike the tool-level codes above which travel as data.
const (
	ErrorCodeStartupFailed    = "STARTUP_FAILED"
	ErrorCodeHandshakeTimeout = "HANDSHAKE_TIMEOUT"
	ErrorCodeTransportClosed  = "TRANSPORT_CLOSED"
	ErrorCodeModelUnavailable = "MODEL_UNAVAILABLE"
)

const DefaultProtocolVersion = "2025-11-25"
