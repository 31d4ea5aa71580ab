package types

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexIntAcceptsNumberAndString(t *testing.T) {
	var body struct {
		A FlexInt `json:"a"`
		B FlexInt `json:"b"`
		C FlexInt `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": 25, "b": "40"}`), &body))

	assert.Equal(t, 25, body.A.Or(10))
	assert.Equal(t, 40, body.B.Or(10))
	assert.False(t, body.C.Set)
	assert.Equal(t, 10, body.C.Or(10))
}

func TestFlexIntRejectsGarbage(t *testing.T) {
	var f FlexInt
	assert.Error(t, json.Unmarshal([]byte(`"ten"`), &f))
	assert.Error(t, json.Unmarshal([]byte(`true`), &f))
}

func TestValidationErrorKeepsFirst(t *testing.T) {
	v := NewValidationError()
	assert.NoError(t, v.OrNil())

	v.Add("email", CodeRequired, "This field is required.")
	v.Add("email", CodeAlreadyExists, "This user already exists.")

	err := v.OrNil()
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, CodeRequired, verr.Fields["email"].Code)
	assert.Equal(t, "validation failed: email: required", err.Error())
}
