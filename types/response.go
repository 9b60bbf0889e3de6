package types

type MessageResponse struct {
	Message string `json:"message"`
}

type SuccessResponse struct {
	Success string `json:"success"`
}

type ErrorResponse struct {
	Detail string `json:"detail"`
}

const (
	DetailIDNotExist       = "ID does not exist"
	DetailIDAlreadyExists  = "ID already exists"
	DetailDatabaseNotExist = "Database does not exist"
	DetailInvalidBody      = "Invalid request body"
	DetailInternalError    = "Internal Server Error"
	DetailUnauthorized     = "Not authenticated"
	DetailUnknownFrameType = "Unknown message type"
)
