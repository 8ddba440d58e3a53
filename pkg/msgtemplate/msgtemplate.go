// Package msgtemplate compiles and renders push message body which may contain {{placeholder}} tags.
// The body is a JSON object, placeholders are replaced using values from template defaults,
// and later overridden by the job context.
package msgtemplate

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/segmentio/encoding/json"
	"github.com/valyala/fasttemplate"
)

const (
	startTag = "{{"
	endTag   = "}}"
)

var (
	ErrNotObject = errors.New("template body must be json object")
)

// Compile check that body is a json object with valid placeholders,
// and return the body rendered with defaults value.
func Compile(body, defaults []byte) (compiled string, err error) {
	if err = mustObject(body); err != nil {
		return
	}

	params, err := toParams(defaults)
	if err != nil {
		err = fmt.Errorf("defaults: %w", err)
		return
	}

	return render(body, params)
}

// Render replace all placeholders in body with value from defaults, overridden by context.
func Render(body, defaults, context []byte) (out string, err error) {
	if err = mustObject(body); err != nil {
		return
	}

	params, err := toParams(defaults)
	if err != nil {
		err = fmt.Errorf("defaults: %w", err)
		return
	}

	ctxParams, err := toParams(context)
	if err != nil {
		err = fmt.Errorf("context: %w", err)
		return
	}

	for k, v := range ctxParams {
		params[k] = v
	}

	return render(body, params)
}

func render(body []byte, params map[string]interface{}) (string, error) {
	t, err := fasttemplate.NewTemplate(string(body), startTag, endTag)
	if err != nil {
		return "", fmt.Errorf("cannot compile template: %w", err)
	}

	return t.ExecuteFuncStringWithErr(func(w io.Writer, tag string) (int, error) {
		val, ok := lookup(params, strings.TrimSpace(tag))
		if !ok {
			return 0, nil
		}

		return w.Write([]byte(fmt.Sprint(val)))
	})
}

// lookup support dotted key such as "user.name".
func lookup(params map[string]interface{}, tag string) (interface{}, bool) {
	if val, ok := params[tag]; ok {
		return val, true
	}

	var item interface{} = params
	for _, piece := range strings.Split(tag, ".") {
		m, ok := item.(map[string]interface{})
		if !ok {
			return nil, false
		}

		item, ok = m[piece]
		if !ok {
			return nil, false
		}
	}

	return item, true
}

func mustObject(raw []byte) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' || !json.Valid(raw) {
		return ErrNotObject
	}

	return nil
}

func toParams(raw []byte) (map[string]interface{}, error) {
	params := map[string]interface{}{}
	if len(bytes.TrimSpace(raw)) == 0 {
		return params, nil
	}

	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, err
	}

	if params == nil {
		params = map[string]interface{}{}
	}

	return params, nil
}
