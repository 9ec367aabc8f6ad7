package services

import "fmt"

type ServiceError struct {
	StatusCode int
	Message    string
	Details    interface{}
}

func (e *ServiceError) Error() string {
	return e.Message
}

func NewServiceError(statusCode int, message string) *ServiceError {
	return &ServiceError{StatusCode: statusCode, Message: message}
}

// OutOfStockItem describes one cart line that could not be reserved.
type OutOfStockItem struct {
	ProductID   string `json:"productId"`
	VariationID string `json:"variationId,omitempty"`
	Name        string `json:"name"`
	Requested   int    `json:"requested"`
	Available   int    `json:"available"`
}

// OutOfStockError carries the full shortfall list so the client can show
// every failing line at once instead of one per attempt.
type OutOfStockError struct {
	Items []OutOfStockItem
}

func (e *OutOfStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %d item(s)", len(e.Items))
}
