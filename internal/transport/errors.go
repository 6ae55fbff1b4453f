package transport

import (
	"errors"
	"fmt"
)

// 传输层错误定义
var (
	ErrSessionClosed      = NewTpError(1001, "Session is closed", "")
	ErrUnsupportedMessage = NewTpError(1002, "Unsupported message type", "websocket")
)

type tpError struct {
	code    int
	msg     string
	context string
}

func (e *tpError) Error() string {
	if e.context != "" {
		return fmt.Sprintf("Error %d: %s (context: %s)", e.code, e.msg, e.context)
	}
	return fmt.Sprintf("Error %d: %s", e.code, e.msg)
}

func (e *tpError) Code() int { return e.code }

func NewTpError(code int, message string, context string) *tpError {
	return &tpError{
		code:    code,
		msg:     message,
		context: context,
	}
}

// ErrorCode 返回错误链上第一个传输层错误的错误码，没有则返回 0
func ErrorCode(err error) int {
	var tp *tpError
	if errors.As(err, &tp) {
		return tp.Code()
	}
	return 0
}
