package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapKeepsCode(t *testing.T) {
	base := InvalidInput("line 3: bad timestamp")
	wrapped := Wrap(base, "failed to parse input")

	assert.Equal(t, CodeInvalidInput, GetCode(wrapped))
	assert.Equal(t, "failed to parse input: line 3: bad timestamp", wrapped.Error())
	assert.True(t, Is(wrapped, base))
}

func TestWrapPlainError(t *testing.T) {
	wrapped := Wrapf(stderrors.New("disk full"), "writing %s", "chart.svg")

	assert.Equal(t, CodeInternalError, GetCode(wrapped))
	assert.Equal(t, "writing chart.svg: disk full", wrapped.Error())
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, "nothing"))
	assert.Nil(t, Wrapf(nil, "nothing %d", 1))
	assert.Nil(t, WithCode(CodeRenderError, nil))
}

func TestGetCodeThroughFmtWrap(t *testing.T) {
	err := fmt.Errorf("outer: %w", PreconditionFailed("store not sorted"))

	assert.True(t, IsAppError(err))
	assert.Equal(t, CodePreconditionFailed, GetCode(err))
	assert.Equal(t, "UNKNOWN", GetCode(stderrors.New("plain")))
}

func TestRenderError(t *testing.T) {
	cause := stderrors.New("permission denied")
	err := RenderError("ALL values chart", cause)

	assert.Equal(t, CodeRenderError, err.Code)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to render ALL values chart: permission denied", err.Error())
}

func TestWithCode(t *testing.T) {
	err := WithCode(CodeConfigInvalid, stderrors.New("GAPS_FRACTION must be in (0,1]"))
	assert.Equal(t, CodeConfigInvalid, GetCode(err))
}
