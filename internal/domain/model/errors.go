package model

import "errors"

var (
	// 該当する注文がない
	ErrNotFound = errors.New("not found")

	// IDが未採番のままupdateしようとした（updateでの二重作成を防ぐ）
	ErrInvalidState = errors.New("update called with empty id field")
)

// デシリアライズ時の入力不備（必須キー欠落・型不正・マッピング以外のbody）。
type DataValidationError struct {
	Message string
}

func (e *DataValidationError) Error() string {
	return e.Message
}

func newDataValidationError(entity string, reason string) error {
	return &DataValidationError{Message: "Invalid " + entity + ": " + reason}
}

func AsDataValidationError(err error) (*DataValidationError, bool) {
	var de *DataValidationError
	ok := errors.As(err, &de)
	return de, ok
}
