package dto

type APIErrorResponse struct {
	Message   string    `json:"message"`
	ErrorCode ErrorCode `json:"error_code,omitempty"`
	// one entry per invalid field, for validation errors
	Details []string `json:"details,omitempty"`
}

type ErrorCode string

const (
	InvalidPayload      ErrorCode = "invalid_payload"
	UnsupportedFileType ErrorCode = "unsupported_file_type"
	FileTooLarge        ErrorCode = "file_too_large"
	JobAlreadyTerminal  ErrorCode = "job_already_terminal"
	Unauthorized        ErrorCode = "unauthorized"
	Forbidden           ErrorCode = "forbidden"
	NotFound            ErrorCode = "not_found"
	Conflict            ErrorCode = "conflict"
	InternalServerError ErrorCode = "internal_server_error"
)
