package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"runtime"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
)

var (
	contextType = reflect.TypeFor[echo.Context]()
	errorType   = reflect.TypeFor[error]()
)

// WrapHandler turns a typed handler into an echo.HandlerFunc. The request
// struct is bound and validated before fn runs.
//
// fn must look like func(echo.Context, Req) (Res, error) or
// func(echo.Context, Req) error. Res is rendered as {"success": true, "data": Res}
// unless it is a *Response or raw JSON. WrapHandler panics on any other shape
// so that a bad route fails at startup.
func WrapHandler(fn any) echo.HandlerFunc {
	handler, err := wrapHandler(fn)
	if err != nil {
		panic(err)
	}
	return handler
}

func wrapHandler(fn any) (echo.HandlerFunc, error) {
	fVal := reflect.ValueOf(fn)
	if fVal.Kind() != reflect.Func {
		return nil, fmt.Errorf("wrap handler: %T is not a function", fn)
	}
	if err := checkSignature(fVal.Type()); err != nil {
		return nil, fmt.Errorf("wrap handler %s: %w", runtime.FuncForPC(fVal.Pointer()).Name(), err)
	}

	reqType := fVal.Type().In(1)
	hasResult := fVal.Type().NumOut() == 2

	return func(c echo.Context) error {
		req := reflect.New(reqType)
		if err := BindAndValidate(c, req.Interface()); err != nil {
			return err
		}

		out := fVal.Call([]reflect.Value{reflect.ValueOf(c), req.Elem()})
		if err, _ := out[len(out)-1].Interface().(error); err != nil {
			return err
		}
		if c.Response().Committed {
			return nil
		}
		if !hasResult {
			return c.JSON(http.StatusOK, &Response{Success: true})
		}
		return renderResult(c, out[0].Interface())
	}, nil
}

func checkSignature(t reflect.Type) error {
	if t.NumIn() != 2 {
		return fmt.Errorf("want 2 arguments, got %d", t.NumIn())
	}
	if !t.In(0).Implements(contextType) {
		return errors.New("first argument must be echo.Context")
	}
	if t.In(1).Kind() != reflect.Struct {
		return fmt.Errorf("second argument must be a struct, got %v", t.In(1).Kind())
	}
	if t.NumOut() < 1 || t.NumOut() > 2 {
		return fmt.Errorf("want 1 or 2 results, got %d", t.NumOut())
	}
	if last := t.Out(t.NumOut() - 1); !last.Implements(errorType) {
		return fmt.Errorf("last result must be error, got %v", last)
	}
	return nil
}

func renderResult(c echo.Context, result any) error {
	switch data := result.(type) {
	case *Response:
		if data.Status == 0 {
			data.Status = http.StatusOK
		}
		return c.JSON(data.Status, data)
	case json.RawMessage:
		// backend answers are passed through unchanged
		return c.JSONBlob(http.StatusOK, data)
	default:
		return c.JSON(http.StatusOK, &Response{Success: true, Data: data})
	}
}
