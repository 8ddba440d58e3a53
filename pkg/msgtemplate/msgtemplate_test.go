package msgtemplate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yusufsyaifudin/marathon/pkg/msgtemplate"
)

func TestCompile(t *testing.T) {
	testCases := []struct {
		name     string
		body     string
		defaults string
		expect   string
		err      bool
	}{
		{
			name:     "no placeholder",
			body:     `{"alert":"hello"}`,
			defaults: `{}`,
			expect:   `{"alert":"hello"}`,
		},
		{
			name:     "with default",
			body:     `{"alert":"hello {{name}}"}`,
			defaults: `{"name":"player"}`,
			expect:   `{"alert":"hello player"}`,
		},
		{
			name:     "missing default is emptied",
			body:     `{"alert":"hello {{name}}"}`,
			defaults: `{}`,
			expect:   `{"alert":"hello "}`,
		},
		{
			name:     "nested default",
			body:     `{"alert":"hi {{user.name}}"}`,
			defaults: `{"user":{"name":"joe"}}`,
			expect:   `{"alert":"hi joe"}`,
		},
		{
			name:     "unclosed tag",
			body:     `{"alert":"hello {{name"}`,
			defaults: `{}`,
			err:      true,
		},
		{
			name:     "not an object",
			body:     `["a"]`,
			defaults: `{}`,
			err:      true,
		},
		{
			name:     "broken defaults",
			body:     `{"alert":"a"}`,
			defaults: `{`,
			err:      true,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			out, err := msgtemplate.Compile([]byte(testCase.body), []byte(testCase.defaults))
			if testCase.err {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, testCase.expect, out)
		})
	}
}

func TestRender(t *testing.T) {
	body := []byte(`{"alert":"{{greeting}}, {{name}}"}`)
	defaults := []byte(`{"greeting":"hello","name":"player"}`)

	t.Run("context override defaults", func(t *testing.T) {
		out, err := msgtemplate.Render(body, defaults, []byte(`{"name":"joe"}`))
		assert.NoError(t, err)
		assert.Equal(t, `{"alert":"hello, joe"}`, out)
	})

	t.Run("empty context", func(t *testing.T) {
		out, err := msgtemplate.Render(body, defaults, nil)
		assert.NoError(t, err)
		assert.Equal(t, `{"alert":"hello, player"}`, out)
	})

	t.Run("broken context", func(t *testing.T) {
		_, err := msgtemplate.Render(body, defaults, []byte(`{`))
		assert.Error(t, err)
	})
}
