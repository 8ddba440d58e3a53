package validator_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/yusufsyaifudin/marathon/pkg/validator"
)

func TestSimplestr(t *testing.T) {
	testCases := []struct {
		Str string `validate:"required"`
		Err bool
	}{
		{
			Str: "",
			Err: true,
		},
		{
			Str: "abc",
			Err: false,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.Str, func(t *testing.T) {
			err := validator.Validate(testCase)
			if !testCase.Err {
				assert.NoError(t, err)
				return
			}

			assert.Error(t, err)
		})
	}
}

func TestValidate_Nil(t *testing.T) {
	assert.Error(t, validator.Validate(nil))
}

func TestBundleID(t *testing.T) {
	testCases := []struct {
		BundleID string `json:"bundleId" validate:"bundleid"`
		Err      bool
	}{
		{BundleID: "com.a.b", Err: false},
		{BundleID: "COM.Example.App1", Err: false},
		{BundleID: "com.a", Err: true},
		{BundleID: "com..b", Err: true},
		{BundleID: "com.a-b.c", Err: true},
		{BundleID: "", Err: true},
	}

	for _, testCase := range testCases {
		t.Run(testCase.BundleID, func(t *testing.T) {
			err := validator.Validate(testCase)
			if !testCase.Err {
				assert.NoError(t, err)
				return
			}

			assert.Error(t, err)
		})
	}
}

func TestJSONObject(t *testing.T) {
	type s struct {
		Context json.RawMessage `json:"context" validate:"jsonobject"`
	}

	testCases := []struct {
		name string
		raw  string
		err  bool
	}{
		{name: "object", raw: `{"a": 1}`, err: false},
		{name: "empty object", raw: `{}`, err: false},
		{name: "array", raw: `[1, 2]`, err: true},
		{name: "string", raw: `"abc"`, err: true},
		{name: "broken", raw: `{"a":`, err: true},
		{name: "empty", raw: ``, err: true},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			err := validator.Validate(s{Context: json.RawMessage(testCase.raw)})
			if !testCase.err {
				assert.NoError(t, err)
				return
			}

			assert.Error(t, err)
		})
	}
}

func TestFieldErrors(t *testing.T) {
	type s struct {
		Email   string `json:"user-email" validate:"required,email"`
		Service string `json:"service" validate:"oneof=apns gcm"`
		CsvURL  string `json:"csvUrl" validate:"omitempty,url"`
	}

	err := validator.Validate(s{Email: "not-email", Service: "sms", CsvURL: "abc"})
	assert.Error(t, err)

	fieldErrs := validator.FieldErrors(err)
	assert.Equal(t, []validator.FieldError{
		{Field: "user-email", Message: "is not email format"},
		{Field: "service", Message: "must be in [apns,gcm]"},
		{Field: "csvUrl", Message: "is not url format"},
	}, fieldErrs)
}

func TestFieldErrors_Message(t *testing.T) {
	type app struct {
		Key      string `json:"key" validate:"required,min=1,max=255"`
		BundleID string `json:"bundleId" validate:"required,bundleid"`
	}

	testCases := []struct {
		name string
		in   app
		want []validator.FieldError
	}{
		{
			name: "empty key",
			in:   app{Key: "", BundleID: "com.a.b"},
			want: []validator.FieldError{{Field: "key", Message: "should not be empty"}},
		},
		{
			name: "key too long",
			in:   app{Key: strings.Repeat("k", 256), BundleID: "com.a.b"},
			want: []validator.FieldError{{Field: "key", Message: "length must equal or less than 255"}},
		},
		{
			name: "bad bundle id",
			in:   app{Key: "k", BundleID: "com"},
			want: []validator.FieldError{{Field: "bundleId", Message: "bad format."}},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			err := validator.Validate(testCase.in)
			assert.Equal(t, testCase.want, validator.FieldErrors(err))
		})
	}
}

func TestFieldErrors_NotValidationError(t *testing.T) {
	assert.Nil(t, validator.FieldErrors(assert.AnError))
}

func TestFields(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		assert.Nil(t, validator.Fields(nil))
	})

	t.Run("list", func(t *testing.T) {
		var err error = validator.Errors{
			{Field: "filters", Message: "a"},
			{Field: "csvUrl", Message: "b"},
		}

		assert.Len(t, validator.Fields(fmt.Errorf("wrap: %w", err)), 2)
		assert.Equal(t, "filters a; csvUrl b", err.Error())
	})

	t.Run("single", func(t *testing.T) {
		err := fmt.Errorf("wrap: %w", validator.FieldError{Field: "user-email", Message: "should not be empty"})
		assert.Equal(t, []validator.FieldError{{Field: "user-email", Message: "should not be empty"}}, validator.Fields(err))
	})
}
