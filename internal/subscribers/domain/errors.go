package subscribers

import "errors"

var (
	// ErrStateConflict indicates the stored record changed between read and write.
	ErrStateConflict = errors.New("subscribers: state conflict")
	// ErrInvalidChatID indicates a zero chat id.
	ErrInvalidChatID = errors.New("subscribers: invalid chat id")
)
