// Package bind decodes a core.JSONMessage into a typed Go struct and
// validates it with struct tags, supplementing the map[string]any/gjson
// views core.JSONMessage offers directly. Grounded on
// madcok-co-unicorn/contrib/validator/playground's go-playground/validator
// usage, adapted to the message-handling shape instead of a generic
// Validator interface; the source idea of decoding into a typed payload
// before a handler runs comes from bjaus-dispatch's Handler[T] (its
// Source-based dispatch is not carried over, only the decode-then-validate
// step).
package bind

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/forgemsg/dispatch/core"
)

var validate = validator.New()

// ValidationError reports one or more struct-tag validation failures.
type ValidationError struct {
	Fields []FieldError
}

// FieldError describes a single failed validation tag.
type FieldError struct {
	Field string
	Tag   string
	Param string
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = fmt.Sprintf("%s failed %q", f.Field, f.Tag)
	}
	return "bind: validation failed: " + strings.Join(parts, "; ")
}

// Decode unmarshals msg's raw bytes into a new T and runs struct-tag
// validation over it. A JSON decode error is returned as-is; a validation
// failure is returned as *ValidationError.
func Decode[T any](msg *core.JSONMessage) (T, error) {
	var out T
	if err := json.Unmarshal(msg.RawData(), &out); err != nil {
		return out, fmt.Errorf("bind: decode message %s: %w", msg.MessageID(), err)
	}

	if err := validate.Struct(out); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return out, fmt.Errorf("bind: validate message %s: %w", msg.MessageID(), err)
		}
		fields := make([]FieldError, len(verrs))
		for i, fe := range verrs {
			fields[i] = FieldError{Field: fe.Field(), Tag: fe.Tag(), Param: fe.Param()}
		}
		return out, &ValidationError{Fields: fields}
	}

	return out, nil
}
