package browser

import (
	"errors"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartSessionRequiresInitialize(t *testing.T) {
	manager := NewSessionManager()

	_, err := manager.StartSession(SessionOptions{Headless: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not initialized")
	assert.Nil(t, manager.Session())
}

func TestShutdownWithoutSession(t *testing.T) {
	manager := NewSessionManager()

	assert.NoError(t, manager.CloseSession())
	assert.NoError(t, manager.Shutdown())
	assert.NoError(t, manager.Shutdown())
}

func TestWrapError(t *testing.T) {
	t.Run("playwright timeout becomes TimeoutError", func(t *testing.T) {
		cause := errors.Join(playwright.ErrTimeout, errors.New("waiting for locator('#receipt')"))
		err := wrapError("wait for visible", "#receipt", 10*time.Second, cause)

		var timeoutErr *TimeoutError
		require.True(t, errors.As(err, &timeoutErr))
		assert.Equal(t, "#receipt", timeoutErr.Selector)
		assert.True(t, timeoutErr.Timeout())
		assert.Equal(t, 10*time.Second, timeoutErr.After)
		assert.ErrorIs(t, err, playwright.ErrTimeout)
		assert.Equal(t, "wait for visible #receipt: timed out after 10s", err.Error())
	})

	t.Run("other errors keep their cause", func(t *testing.T) {
		cause := errors.New("element is detached")
		err := wrapError("click", "#order", time.Second, cause)

		var timeoutErr *TimeoutError
		assert.False(t, errors.As(err, &timeoutErr))
		assert.ErrorIs(t, err, cause)
	})
}

func TestMilliseconds(t *testing.T) {
	assert.Nil(t, milliseconds(0))
	require.NotNil(t, milliseconds(1500*time.Millisecond))
	assert.Equal(t, 1500.0, *milliseconds(1500 * time.Millisecond))
}
