package uphysics

import (
	"bytes"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestDefaultLogger_LevelsAndPrefix(t *testing.T) {
	var out, errOut bytes.Buffer
	l := NewDefaultLogger("phys", false)
	l.out = log.New(&out, "", 0)
	l.err = log.New(&errOut, "", 0)

	l.Debugf("hidden %d", 1)
	assert.Empty(t, out.String())

	l.SetDebug(true)
	assert.True(t, l.DebugEnabled())
	l.Debugf("shown %d", 2)
	l.Infof("info")
	l.Warnf("careful")
	l.Errorf("broken")

	assert.Equal(t, "[phys] DEBUG: shown 2\n[phys] INFO: info\n", out.String())
	assert.Equal(t, "[phys] WARN: careful\n[phys] ERROR: broken\n", errOut.String())
}

func TestNopLogger(t *testing.T) {
	l := NewNopLogger()
	l.SetDebug(true)
	assert.False(t, l.DebugEnabled())
	assert.NotPanics(t, func() {
		l.Debugf("x")
		l.Infof("x")
		l.Warnf("x")
		l.Errorf("x")
	})
}

func TestZapLogger_EngineOutput(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewZapLogger(zap.New(core).Sugar())
	require.True(t, l.DebugEnabled())

	e := NewEngine(DefaultConfig(), l)
	h, err := e.RegisterEntity(5, quad(0, 0, 0, 5))
	require.NoError(t, err)
	require.True(t, e.Unregister(h))
	_, err = e.RegisterEntity(6, nil)
	require.Error(t, err)

	registered := logs.FilterMessageSnippet("registered mesh").All()
	require.Len(t, registered, 1)
	assert.Equal(t, zapcore.DebugLevel, registered[0].Level)
	assert.Contains(t, registered[0].Message, "entity 5")
	assert.Contains(t, registered[0].Message, h.String())

	assert.Equal(t, 1, logs.FilterMessageSnippet("unregistered 1 meshes").Len())

	warned := logs.FilterLevelExact(zapcore.WarnLevel).All()
	require.Len(t, warned, 1)
	assert.Contains(t, warned[0].Message, "entity 6")
}

func TestZapLogger_DebugFollowsCore(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := NewZapLogger(zap.New(core).Sugar())
	assert.False(t, l.DebugEnabled())

	l.Debugf("dropped")
	l.Infof("kept")
	assert.Equal(t, 1, logs.Len())

	// Engine debug switch turns it on locally; the core still filters.
	NewEngine(Config{Debug: true}, l)
	assert.True(t, l.DebugEnabled())
	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.WarnLevel).Len(), "invalid config reported")

	assert.Equal(t, NewNopLogger(), NewZapLogger(nil))
}
