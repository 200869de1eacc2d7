package iobackend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSynthFillWithPattern(t *testing.T) {
	s := NewSynth([]byte("ab"))
	buf := make([]byte, 5)
	n, err := s.Fill(buf)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, []byte("ababa"), buf)
}

func TestSynthFillWithoutPatternZeroFills(t *testing.T) {
	s := NewSynth(nil)
	buf := []byte{1, 2, 3}
	n, err := s.Fill(buf)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []byte{0, 0, 0}, buf)
}

func TestSynthReadOnlyHandleRejectsWrites(t *testing.T) {
	s := NewSynth(nil)
	h, err := s.Open("ignored", ReadOnly)
	require.NoError(t, err)
	_, err = h.WriteAt([]byte("x"), 0)
	assert.Error(t, err)
}
