package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorError(t *testing.T) {
	e := New(ErrCodeFrequencyConfigMissing, "quarterly day-of-month not set")
	assert.Equal(t, "[SCHED_002] quarterly day-of-month not set", e.Error())

	withDetail := e.WithDetail("subactivity=GSTR-1")
	assert.Equal(t, "[SCHED_002] quarterly day-of-month not set: subactivity=GSTR-1", withDetail.Error())
	// WithDetail must not mutate the receiver.
	assert.Empty(t, e.Detail)
}

func TestWrapNilReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrCodeDatabaseError, "should be nil"))
}

func TestWrapPreservesDomainCode(t *testing.T) {
	inner := New(ErrCodeLegacyIndexConflict, "old unique index rejected insert")
	outer := Wrap(inner, ErrCodeInternal, "upsert failed")

	assert.Equal(t, ErrCodeLegacyIndexConflict, outer.Code)
	assert.True(t, IsCode(outer, ErrCodeLegacyIndexConflict))
}

func TestWrapChainTraversal(t *testing.T) {
	root := errors.New("connection refused")
	mid := Wrap(root, ErrCodeDatabaseError, "query failed")
	top := fmt.Errorf("pass aborted: %w", mid)

	require.True(t, IsCode(top, ErrCodeDatabaseError))
	assert.False(t, IsCode(top, ErrCodeNotFound))
	assert.ErrorIs(t, top, root)
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, ErrCodeRecordExists, GetCode(New(ErrCodeRecordExists, "duplicate")))
	assert.Equal(t, ErrCodeInternal, GetCode(errors.New("plain")))
}

func TestClassifiers(t *testing.T) {
	assert.True(t, IsNotFound(NotFound("record missing")))
	assert.True(t, IsNotFound(New(ErrCodeRecordNotFound, "no timeline row")))
	assert.True(t, IsValidation(InvalidParam("bad day")))
	assert.True(t, IsValidation(New(ErrCodePeriodMalformed, "Q5-2024")))
	assert.True(t, IsConflict(New(ErrCodeRecordExists, "lost the race")))

	// A legacy-index rejection is an operational problem, not a routine
	// duplicate, and must never be classified as a conflict.
	assert.False(t, IsConflict(New(ErrCodeLegacyIndexConflict, "narrow index")))
}
