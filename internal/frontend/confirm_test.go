package frontend

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfirmInteractiveYes(t *testing.T) {
	var out bytes.Buffer
	ok, err := Confirm(&out, strings.NewReader("y\n"), true, false, []string{"1. do a thing"})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, out.String(), "do a thing")
}

func TestConfirmInteractiveDefaultNo(t *testing.T) {
	var out bytes.Buffer
	ok, err := Confirm(&out, strings.NewReader("\n"), true, false, nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestConfirmInteractiveNoConfirmSkipsPrompt(t *testing.T) {
	var out bytes.Buffer
	ok, err := Confirm(&out, strings.NewReader(""), true, true, nil)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestConfirmNonInteractiveRequiresNoConfirmFlag(t *testing.T) {
	var out bytes.Buffer
	_, err := Confirm(&out, strings.NewReader(""), false, false, nil)
	assert.Error(t, err)
}

func TestConfirmNonInteractiveWithNoConfirm(t *testing.T) {
	var out bytes.Buffer
	ok, err := Confirm(&out, strings.NewReader(""), false, true, nil)
	require.NoError(t, err)
	assert.True(t, ok)
}
