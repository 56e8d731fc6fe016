package errors_test

import (
	"encoding/json"
	stderrors "errors"
	"testing"

	"github.com/influxdata/stopwatch/kit/platform/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMsg(t *testing.T) {
	cases := []struct {
		name string
		err  error
		msg  string
	}{
		{
			name: "code only",
			err:  &errors.Error{Code: errors.EUnavailable},
			msg:  "<unavailable>",
		},
		{
			name: "message",
			err:  &errors.Error{Code: errors.EConflict, Msg: "already mounted"},
			msg:  "already mounted",
		},
		{
			name: "message and wrapped",
			err: &errors.Error{
				Msg: "bad button",
				Err: stderrors.New("unknown event"),
			},
			msg: "bad button: unknown event",
		},
		{
			name: "wrapped only",
			err:  &errors.Error{Err: &errors.Error{Msg: "inner"}},
			msg:  "inner",
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.msg, c.err.Error())
		})
	}
}

func TestErrorCode(t *testing.T) {
	assert.Equal(t, "", errors.ErrorCode(nil))
	assert.Equal(t, errors.EInternal, errors.ErrorCode(stderrors.New("plain")))
	assert.Equal(t, errors.EInvalid, errors.ErrorCode(&errors.Error{
		Err: &errors.Error{Code: errors.EInvalid},
	}))
	assert.Equal(t, errors.EInternal, errors.ErrorCode(&errors.Error{Msg: "no code"}))
}

func TestErrorOpAndMessage(t *testing.T) {
	err := errors.NewError(
		errors.WithErrorErr(&errors.Error{Op: "widget/Dispatch", Msg: "not mounted"}),
		errors.WithErrorCode(errors.EUnavailable),
	)
	assert.Equal(t, "widget/Dispatch", errors.ErrorOp(err))
	assert.Equal(t, "not mounted", errors.ErrorMessage(err))
	assert.Equal(t, "An internal error has occurred.", errors.ErrorMessage(stderrors.New("x")))
}

func TestErrorUnwrap(t *testing.T) {
	sentinel := &errors.Error{Code: errors.EInvalid, Msg: "unknown event"}
	err := &errors.Error{Msg: "unknown button foo", Err: sentinel}
	require.True(t, stderrors.Is(err, sentinel))
}

func TestErrorMarshalJSON(t *testing.T) {
	err := &errors.Error{
		Code: errors.EInvalid,
		Msg:  "unknown button foo",
		Op:   "stopwatch/ParseEvent",
		Err:  &errors.Error{Code: errors.EInvalid, Msg: "unknown event"},
	}
	b, jerr := json.Marshal(err)
	require.NoError(t, jerr)
	assert.JSONEq(t, `{
		"code": "invalid",
		"message": "unknown button foo",
		"op": "stopwatch/ParseEvent",
		"error": {"code": "invalid", "message": "unknown event"}
	}`, string(b))
}
