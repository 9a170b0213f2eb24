package utils

import (
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestSetLevel(t *testing.T) {
	prev := log.GetLevel()
	t.Cleanup(func() { log.SetLevel(prev) })

	SetLevel("debug")
	require.Equal(t, log.DebugLevel, log.GetLevel())

	SetLevel("not-a-level")
	require.Equal(t, log.DebugLevel, log.GetLevel())

	SetLevel("WARN")
	require.Equal(t, log.WarnLevel, log.GetLevel())
}
