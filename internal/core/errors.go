package core

import "errors"

// Error codes for domain errors.
const (
	ErrCodeRoomNotFound        = "room_not_found"
	ErrCodeUserNotFound        = "user_not_found"
	ErrCodeForbidden           = "forbidden"
	ErrCodeBanned              = "banned"
	ErrCodeCapacityExceeded    = "capacity_exceeded"
	ErrCodeDuplicateConnection = "duplicate_connection"
	ErrCodeNotInRoom           = "not_in_room"
	ErrCodeBadRequest          = "bad_request"
)

var (
	ErrRoomNotFound        = errors.New("room not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrForbidden           = errors.New("forbidden")
	ErrBanned              = errors.New("banned from room")
	ErrCapacityExceeded    = errors.New("room capacity exceeded")
	ErrDuplicateConnection = errors.New("connection already registered")
	ErrNotInRoom           = errors.New("not in room")
	ErrBadRequest          = errors.New("bad request")
)

// CoreError wraps a code and human-readable message.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

func coreError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}

// errorFor maps a domain error to the CoreError surfaced to clients.
func errorFor(err error) *CoreError {
	switch {
	case errors.Is(err, ErrRoomNotFound):
		return coreError(ErrCodeRoomNotFound, err.Error())
	case errors.Is(err, ErrUserNotFound):
		return coreError(ErrCodeUserNotFound, err.Error())
	case errors.Is(err, ErrBanned):
		return coreError(ErrCodeBanned, err.Error())
	case errors.Is(err, ErrCapacityExceeded):
		return coreError(ErrCodeCapacityExceeded, err.Error())
	case errors.Is(err, ErrDuplicateConnection):
		return coreError(ErrCodeDuplicateConnection, err.Error())
	case errors.Is(err, ErrNotInRoom):
		return coreError(ErrCodeNotInRoom, err.Error())
	case errors.Is(err, ErrForbidden):
		return coreError(ErrCodeForbidden, err.Error())
	default:
		return coreError(ErrCodeBadRequest, err.Error())
	}
}
