package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"
)

// BindAndValidate fills req from the request and validates it.
// Echo binds path params, query and body; headers come from `header:"name"`
// tags and the authenticated user from `auth:"id|email|name"` tags.
func BindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return err
	}
	if err := bindHeader(c.Request().Header, req); err != nil {
		return err
	}
	if err := bindUser(c, req); err != nil {
		return err
	}
	return c.Validate(req)
}

// valueSource resolves a tag value to the value to bind. A nil value leaves
// the field untouched.
type valueSource func(tag string) (any, error)

func bindUser(c echo.Context, dst any) error {
	user, ok := GetUser(c)
	if !ok {
		return nil
	}
	return bindStruct(dst, "auth", func(tag string) (any, error) {
		switch tag {
		case "id":
			return user.ID, nil
		case "email":
			return user.Email, nil
		case "name":
			return user.Name, nil
		}
		return nil, fmt.Errorf("binding user field %s is not supported", tag)
	})
}

func bindHeader(header http.Header, dst any) error {
	return bindStruct(dst, "header", func(tag string) (any, error) {
		if v := header.Get(tag); v != "" {
			return v, nil
		}
		return nil, nil
	})
}

// bindStruct sets every field of *dst tagged with tagName from source.
func bindStruct(dst any, tagName string, source valueSource) error {
	ptr := reflect.ValueOf(dst)
	if ptr.Kind() != reflect.Pointer || ptr.Elem().Kind() != reflect.Struct {
		return errors.New("bind target must be a pointer to a struct")
	}
	target := ptr.Elem()

	for i := range target.NumField() {
		sf := target.Type().Field(i)
		tag := sf.Tag.Get(tagName)
		if tag == "" || tag == "-" {
			continue
		}

		value, err := source(tag)
		if err != nil {
			return err
		}
		if value == nil {
			continue
		}
		if err := setField(target.Field(i), value); err != nil {
			return fmt.Errorf("cannot parse %s.%s as %s from: %#v / %s",
				target.Type().Name(), sf.Name, sf.Type, value, err)
		}
	}
	return nil
}

func setField(field reflect.Value, value any) error {
	var err error
	switch field.Kind() {
	case reflect.String:
		var v string
		if v, err = cast.ToStringE(value); err == nil {
			field.SetString(v)
		}
	case reflect.Bool:
		var v bool
		if v, err = cast.ToBoolE(value); err == nil {
			field.SetBool(v)
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		var v int64
		if v, err = cast.ToInt64E(value); err == nil {
			field.SetInt(v)
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		var v uint64
		if v, err = cast.ToUint64E(value); err == nil {
			field.SetUint(v)
		}
	case reflect.Float32, reflect.Float64:
		var v float64
		if v, err = cast.ToFloat64E(value); err == nil {
			field.SetFloat(v)
		}
	default:
		err = fmt.Errorf("unsupported kind %s", field.Kind())
	}
	return err
}
