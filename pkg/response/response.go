// Package response holds the JSON envelopes the API writes. Every endpoint
// answers with one of these shapes so the frontend can unwrap uniformly.
package response

import "net/http"

// Response wraps single-object payloads and errors. Exactly one of Data
// and Error is set.
type Response struct {
	Status     string      `json:"status"`
	StatusCode int         `json:"status_code"`
	Data       interface{} `json:"data,omitempty"`
	Error      string      `json:"error,omitempty"`
}

// Success wraps data for a 2xx answer.
func Success(statusCode int, data interface{}) Response {
	return Response{
		Status:     "success",
		StatusCode: statusCode,
		Data:       data,
	}
}

// Error wraps a client-facing error message.
func Error(statusCode int, err string) Response {
	return Response{
		Status:     "error",
		StatusCode: statusCode,
		Error:      err,
	}
}

// Page wraps list payloads. Total counts the rows matching the filters
// before pagination, so clients can render page controls.
type Page struct {
	Status int         `json:"status"`
	Data   interface{} `json:"data"`
	Total  int64       `json:"total"`
	Page   int         `json:"page"`
	Limit  int         `json:"limit"`
}

// Paginated wraps one page of a list result.
func Paginated(data interface{}, total int64, page, limit int) Page {
	return Page{
		Status: http.StatusOK,
		Data:   data,
		Total:  total,
		Page:   page,
		Limit:  limit,
	}
}
