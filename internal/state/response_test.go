package state

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResponseStateScenario(t *testing.T) {
	s := NewResponseState()
	require.Equal(t, Response{}, s.Snapshot())

	s.UpdateBody(`{"ok":true}`)
	require.Equal(t, Response{Body: `{"ok":true}`}, s.Snapshot())

	s.UpdateHeaders("Content-Type: application/json")
	require.Equal(t, Response{Body: `{"ok":true}`, Headers: "Content-Type: application/json"}, s.Snapshot())
}

func TestResponseStateSubscribe(t *testing.T) {
	s := NewResponseState()
	s.UpdateHeaders("A: 1")

	var got []Response
	unsubscribe := s.Subscribe(func(r Response) { got = append(got, r) })

	s.UpdateBody("done")
	unsubscribe()
	s.UpdateBody("ignored")

	require.Equal(t, []Response{
		{Headers: "A: 1"},
		{Body: "done", Headers: "A: 1"},
	}, got)
}

func TestResponseStateSetField(t *testing.T) {
	s := NewResponseState()

	require.NoError(t, s.SetField("body", "b"))
	require.NoError(t, s.SetField("headers", "h"))
	require.Equal(t, Response{Body: "b", Headers: "h"}, s.Snapshot())

	err := s.SetField("method", "GET")
	require.True(t, errors.Is(err, ErrUnknownField))
}
