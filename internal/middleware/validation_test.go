package middleware

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type registrationPayload struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

func TestProperty_MissingRequiredFieldsAreRejected(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("missing required fields fail validation", prop.ForAll(
		func(includeName bool, includeEmail bool, includePassword bool) bool {
			payload := make(map[string]interface{})
			if includeName {
				payload["name"] = "Ada Lovelace"
			}
			if includeEmail {
				payload["email"] = "ada@example.com"
			}
			if includePassword {
				payload["password"] = "long enough passphrase"
			}

			allPresent := includeName && includeEmail && includePassword

			body, _ := json.Marshal(payload)
			req := httptest.NewRequest("POST", "/test", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")

			var decoded registrationPayload
			err := DecodeAndValidate(req, &decoded)

			if allPresent {
				return err == nil
			}
			return err != nil
		},
		gen.Bool(),
		gen.Bool(),
		gen.Bool(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestDecodeAndValidate_MalformedJSON(t *testing.T) {
	req := httptest.NewRequest("POST", "/test", strings.NewReader("{not json"))

	var decoded registrationPayload
	err := DecodeAndValidate(req, &decoded)
	require.Error(t, err)

	// A decode failure is not a field-level validation failure
	assert.Empty(t, FormatValidationErrors(err))
}

func TestDecodeAndValidate_ShortPassword(t *testing.T) {
	body, err := json.Marshal(map[string]string{
		"name":     "Ada Lovelace",
		"email":    "ada@example.com",
		"password": "short",
	})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/test", bytes.NewReader(body))
	var decoded registrationPayload
	err = DecodeAndValidate(req, &decoded)
	require.Error(t, err)

	formatted := FormatValidationErrors(err)
	require.Len(t, formatted, 1)
	assert.Equal(t, "Password", formatted[0].Field)
	assert.Equal(t, "Value is too short", formatted[0].Message)
}

func TestDecodeAndValidate_BadEmail(t *testing.T) {
	body, err := json.Marshal(map[string]string{
		"name":     "Ada Lovelace",
		"email":    "not-an-email",
		"password": "long enough passphrase",
	})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/test", bytes.NewReader(body))
	var decoded registrationPayload
	err = DecodeAndValidate(req, &decoded)
	require.Error(t, err)

	formatted := FormatValidationErrors(err)
	require.Len(t, formatted, 1)
	assert.Equal(t, "Email", formatted[0].Field)
	assert.Equal(t, "Invalid email format", formatted[0].Message)
}
