package models

type ApiResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func SuccessResponse(data interface{}, message string) ApiResponse {
	return ApiResponse{
		Success: true,
		Data:    data,
		Message: message,
	}
}

// ErrorResponse fills both fields: the frontend reads message, older clients read error.
func ErrorResponse(err string) ApiResponse {
	return ApiResponse{
		Success: false,
		Message: err,
		Error:   err,
	}
}

// Page is the envelope for paginated listings. Page numbers start at 0.
type Page struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Page    int         `json:"page"`
	Size    int         `json:"size"`
	Total   int         `json:"total"`
}

func PaginatedResponse(data interface{}, page, size, total int) Page {
	return Page{
		Success: true,
		Data:    data,
		Page:    page,
		Size:    size,
		Total:   total,
	}
}
