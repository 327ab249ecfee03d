package infra

import (
	"fmt"
	"io"
	"path"
	"runtime"
	"strconv"
	"strings"
)

// References:
// https://github.com/pkg/errors/blob/master/stack.go
// https://github.com/pkg/errors/blob/master/errors.go

type Frame uintptr

func (frame Frame) pc() uintptr {
	return uintptr(frame) - 1
}

func (frame Frame) file() string {
	pc := frame.pc()
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return "unknownFile"
	}
	f, _ := fn.FileLine(pc)
	return f
}

func (frame Frame) line() int {
	pc := frame.pc()
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return 0
	}
	_, l := fn.FileLine(pc)
	return l
}

func (frame Frame) name() string {
	pc := frame.pc()
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return "unknownFunc"
	}
	return fn.Name()
}

// Format characters:
// %s - source file
// %d - source line
// %n - function name
// %v - verbose, equivalent to %s:%d
// %+s - full path, the root path is relative to the compile time GOPATH
// separated by \n\t (<function-name>\n\t<path>)
// %+v - equivalent to %+s:%d
func (frame Frame) Format(s fmt.State, verb rune) {
	switch verb {
	case 's':
		if s.Flag('+') {
			_, _ = io.WriteString(s, frame.name())
			_, _ = io.WriteString(s, "\n\t")
			_, _ = io.WriteString(s, frame.file())
		} else {
			_, _ = io.WriteString(s, path.Base(frame.file()))
		}
	case 'd':
		_, _ = io.WriteString(s, strconv.Itoa(frame.line()))
	case 'n':
		_, _ = io.WriteString(s, funcName(frame.name()))
	case 'v':
		frame.Format(s, 's')
		_, _ = io.WriteString(s, ":")
		frame.Format(s, 'd')
	}
}

// For fmt.Sprintf("%+v", frame).
// If json.Marshaler interface isn't implemented, the MarshalText method is used.
func (frame Frame) MarshalText() ([]byte, error) {
	name := frame.name()
	if name == "unknownFunc" {
		return []byte("unknownFrame"), nil
	}
	builder := strings.Builder{}
	_, _ = builder.WriteString(name)
	_, _ = builder.WriteString(" ")
	_, _ = builder.WriteString(frame.file())
	_, _ = builder.WriteString(":")
	_, _ = builder.WriteString(strconv.Itoa(frame.line()))
	return []byte(builder.String()), nil
}

func (frame Frame) MarshalJSON() ([]byte, error) {
	name := frame.name()
	if name == "unknownFunc" {
		return []byte("{\"frame\":\"unknownFrame\"}"), nil
	}
	builder := strings.Builder{}
	_, _ = builder.WriteString("{")
	_, _ = builder.WriteString("\"func\":\"")
	_, _ = builder.WriteString(name)
	_, _ = builder.WriteString("\",")
	_, _ = builder.WriteString("\"fileAndLine\":\"")
	_, _ = builder.WriteString(frame.file())
	_, _ = builder.WriteString(":")
	_, _ = builder.WriteString(strconv.Itoa(frame.line()))
	_, _ = builder.WriteString("\"}")
	return []byte(builder.String()), nil
}

func funcName(name string) string {
	i := strings.LastIndex(name, "/")
	name = name[i+1:]
	i = strings.Index(name, ".")
	return name[i+1:]
}

const maxErrorStackDepth = 32

// ErrorStack records where an error was raised or wrapped.
// It keeps the call frames captured at construction time so that
// fmt.Sprintf("%+v", err) prints the whole chain for troubleshooting,
// while Error() stays terse for normal logging.
type ErrorStack struct {
	msg    string
	cause  error
	frames []Frame
}

func callers(skip int) []Frame {
	var pcs [maxErrorStackDepth]uintptr
	n := runtime.Callers(skip, pcs[:])
	frames := make([]Frame, 0, n)
	for _, pc := range pcs[:n] {
		frames = append(frames, Frame(pc))
	}
	return frames
}

// NewErrorStack creates a leaf error carrying the caller's stack.
func NewErrorStack(message string) error {
	return &ErrorStack{
		msg:    message,
		frames: callers(3),
	}
}

// WrapErrorStack attaches the caller's stack to err. A nil err stays nil
// and an err that already carries a stack is returned unchanged, so the
// outermost wrap wins and inner layers stay cheap.
func WrapErrorStack(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*ErrorStack); ok {
		return err
	}
	return &ErrorStack{
		cause:  err,
		frames: callers(3),
	}
}

// WrapErrorStackWithMessage annotates err with a message and the caller's
// stack. A nil err stays nil.
func WrapErrorStackWithMessage(err error, message string) error {
	if err == nil {
		return nil
	}
	return &ErrorStack{
		msg:    message,
		cause:  err,
		frames: callers(3),
	}
}

func (e *ErrorStack) Error() string {
	if e == nil {
		return ""
	}
	switch {
	case e.msg != "" && e.cause != nil:
		return e.msg + ": " + e.cause.Error()
	case e.cause != nil:
		return e.cause.Error()
	default:
		return e.msg
	}
}

// Unwrap exposes the cause to errors.Is and errors.As.
func (e *ErrorStack) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// Frames returns the call frames captured when the error was raised,
// outermost wrap first. Each frame knows how to marshal itself, so the
// slice can be handed to a structured logger as-is.
func (e *ErrorStack) Frames() []Frame {
	if e == nil {
		return nil
	}
	return e.frames
}

func (e *ErrorStack) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		_, _ = io.WriteString(s, e.Error())
		if s.Flag('+') {
			for _, frame := range e.frames {
				_, _ = io.WriteString(s, "\n")
				frame.Format(s, 'v')
			}
		}
	case 's':
		_, _ = io.WriteString(s, e.Error())
	case 'q':
		_, _ = fmt.Fprintf(s, "%q", e.Error())
	}
}
