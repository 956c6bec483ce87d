package errors

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelWrapping(t *testing.T) {
	err := NotFoundf("light %s", "aabbcc")
	assert.True(t, IsNotFound(err))
	assert.Contains(t, err.Error(), "aabbcc")

	err = InvalidInputf("hue %d out of range", 400)
	assert.True(t, IsInvalidInput(err))

	err = DeviceUnavailablef("no route to %s", "192.0.2.1")
	assert.True(t, IsDeviceUnavailable(err))

	err = ServiceCommunicationf("set rgb failed: %w", errors.New("timeout"))
	assert.True(t, IsServiceCommunication(err))
	assert.Contains(t, err.Error(), "timeout")

	err = Internalf("bad state")
	assert.True(t, errors.Is(err, ErrInternal))
}

func TestPredicatesRejectOtherErrors(t *testing.T) {
	plain := errors.New("boom")
	assert.False(t, IsNotFound(plain))
	assert.False(t, IsInvalidInput(plain))
	assert.False(t, IsDeviceUnavailable(plain))
	assert.False(t, IsServiceCommunication(plain))
}

func TestWrapErrorf(t *testing.T) {
	assert.Nil(t, WrapErrorf(nil, "ignored"))

	base := ErrDeviceUnavailable
	wrapped := WrapErrorf(base, "setting output on %s", "light-1")
	require.Error(t, wrapped)
	assert.True(t, errors.Is(wrapped, ErrDeviceUnavailable))
	assert.Contains(t, wrapped.Error(), "light-1")
}

func TestLogErrorAndReturn(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	assert.Nil(t, LogErrorAndReturn(logger, nil, "should not log"))
	assert.Empty(t, buf.String())

	err := fmt.Errorf("device said no")
	got := LogErrorAndReturn(logger, err, "set failed", "id", "light-1")
	assert.Same(t, err, got)
	assert.Contains(t, buf.String(), "set failed")
	assert.Contains(t, buf.String(), "light-1")
}
