package logger

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeRedactsAndHashes(t *testing.T) {
	l := &Logger{redact: true, salt: "pepper"}

	out := l.sanitize([]interface{}{
		"password", "hunter2",
		"user", "ada@example.com",
		"topic", "economics",
		"auth", "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiJhZGEifQ.sig",
	})
	require.Len(t, out, 8)

	assert.Equal(t, "[REDACTED]", out[1])
	hashed, ok := out[3].(string)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(hashed, "hash:"))
	assert.Len(t, hashed, len("hash:")+12)
	assert.Equal(t, "economics", out[5])
	assert.Equal(t, "[REDACTED]", out[7])
}

func TestSanitizeDisabled(t *testing.T) {
	l := &Logger{}
	in := []interface{}{"password", "hunter2"}
	assert.Equal(t, in, l.sanitize(in))
}

func TestSanitizeOddKeyCount(t *testing.T) {
	l := &Logger{redact: true}
	out := l.sanitize([]interface{}{"topic", "x", "dangling"})
	assert.Equal(t, []interface{}{"topic", "x", "dangling"}, out)
}

func TestNewRejectsBadLevel(t *testing.T) {
	_, err := New(Options{Level: "loud"})
	assert.Error(t, err)
}

func TestHashIsStable(t *testing.T) {
	l := &Logger{redact: true, salt: "s"}
	assert.Equal(t, l.hash("a@b.c"), l.hash("a@b.c"))
	assert.NotEqual(t, l.hash("a@b.c"), l.hash("d@e.f"))
	assert.Equal(t, "", l.hash(""))
}
