package stopwatch

import (
	"github.com/influxdata/stopwatch/kit/platform/errors"
)

var (
	// ErrNotMounted is returned when events are dispatched to a widget whose
	// Mount has not been called, or which has been unmounted.
	ErrNotMounted = &errors.Error{
		Code: errors.EUnavailable,
		Op:   "widget/Dispatch",
		Msg:  "stopwatch widget is not mounted",
	}

	// ErrAlreadyMounted is returned when mounting a widget twice.
	ErrAlreadyMounted = &errors.Error{
		Code: errors.EConflict,
		Op:   "widget/Mount",
		Msg:  "stopwatch widget is already mounted",
	}

	// ErrUnmounted is returned when mounting a widget that has been unmounted.
	// A widget is mounted at most once.
	ErrUnmounted = &errors.Error{
		Code: errors.EConflict,
		Op:   "widget/Mount",
		Msg:  "stopwatch widget has been unmounted",
	}

	// ErrUnknownEvent is wrapped by ParseEvent for names it does not recognize.
	ErrUnknownEvent = &errors.Error{
		Code: errors.EInvalid,
		Msg:  "unknown event",
	}
)
