package kv_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/heysubinoy/kvrest/pkg/kv"
	"github.com/stretchr/testify/assert"
)

func TestReadErrorJSON(t *testing.T) {
	assert := assert.New(t)

	data, err := json.Marshal(kv.NotFound("a"))
	assert.NoError(err)
	assert.JSONEq(`{"reason":"not-found","key":"a"}`, string(data))

	data, err = json.Marshal(kv.DBError(errors.New("connection refused")))
	assert.NoError(err)
	assert.JSONEq(`{"reason":"db-error","detail":"connection refused"}`, string(data))

	data, err = json.Marshal(kv.InvalidData(nil))
	assert.NoError(err)
	assert.JSONEq(`{"reason":"invalid-data"}`, string(data))
}

func TestAsReadError(t *testing.T) {
	assert := assert.New(t)

	assert.Nil(kv.AsReadError(nil))

	wrapped := fmt.Errorf("reading: %w", kv.NotFound("x"))
	assert.Equal(kv.ReasonNotFound, kv.AsReadError(wrapped).Reason)
	assert.True(errors.Is(wrapped, kv.NotFound("")))
	assert.True(kv.IsNotFound(wrapped))

	cause := errors.New("disk on fire")
	re := kv.AsReadError(cause)
	assert.Equal(kv.ReasonDBError, re.Reason)
	assert.ErrorIs(re, cause)
}

func TestAsInvalidData(t *testing.T) {
	assert := assert.New(t)

	assert.Nil(kv.AsInvalidData(nil))
	assert.Equal(kv.ReasonInvalidData, kv.AsInvalidData(errors.New("bad")).Reason)
	// codec errors are never anything but invalid-data
	assert.Equal(kv.ReasonInvalidData, kv.AsInvalidData(kv.NotFound("k")).Reason)
	assert.Equal(kv.ReasonInvalidData, kv.AsInvalidData(kv.DBError(nil)).Reason)
}

func TestReadErrorMessage(t *testing.T) {
	assert.Equal(t, `not-found: key "a"`, kv.NotFound("a").Error())
	assert.Equal(t, `invalid-data: key "a": boom`, kv.InvalidData(errors.New("boom")).WithKey("a").Error())
}
