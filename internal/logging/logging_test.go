package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew(t *testing.T) {
	log, err := New("production", "warn")
	require.NoError(t, err)
	assert.Nil(t, log.Check(zap.InfoLevel, "hidden"))
	assert.NotNil(t, log.Check(zap.WarnLevel, "shown"))

	_, err = New("development", "loud")
	assert.Error(t, err)
}
