package state

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestRequestStateSetters(t *testing.T) {
	tests := []struct {
		name   string
		update func(s *RequestState, v string)
		value  string
		want   Request
	}{
		{
			name:   "method",
			update: (*RequestState).UpdateMethod,
			value:  "PATCH",
			want:   Request{Method: "PATCH", URL: "http://example.com", Body: "{}", Headers: "Accept: */*"},
		},
		{
			name:   "url",
			update: (*RequestState).UpdateURL,
			value:  "http://other",
			want:   Request{Method: "GET", URL: "http://other", Body: "{}", Headers: "Accept: */*"},
		},
		{
			name:   "body",
			update: (*RequestState).UpdateBody,
			value:  "",
			want:   Request{Method: "GET", URL: "http://example.com", Body: "", Headers: "Accept: */*"},
		},
		{
			name:   "headers",
			update: (*RequestState).UpdateHeaders,
			value:  "X-Test: 1\nX-Other: 2",
			want:   Request{Method: "GET", URL: "http://example.com", Body: "{}", Headers: "X-Test: 1\nX-Other: 2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewRequestState()
			s.UpdateMethod("GET")
			s.UpdateURL("http://example.com")
			s.UpdateBody("{}")
			s.UpdateHeaders("Accept: */*")

			tt.update(s, tt.value)

			if diff := cmp.Diff(tt.want, s.Snapshot()); diff != "" {
				t.Errorf("unexpected request (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRequestStateScenario(t *testing.T) {
	s := NewRequestState()
	require.Equal(t, Request{}, s.Snapshot())

	var got []Request
	unsubscribe := s.Subscribe(func(r Request) { got = append(got, r) })
	defer unsubscribe()

	s.UpdateMethod("GET")
	s.UpdateURL("http://x")

	want := []Request{
		{},
		{Method: "GET"},
		{Method: "GET", URL: "http://x"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected notifications (-want +got):\n%s", diff)
	}
}

func TestRequestStateUpdatesCommute(t *testing.T) {
	a := NewRequestState()
	a.UpdateURL("http://x")
	a.UpdateBody("hello")

	b := NewRequestState()
	b.UpdateBody("hello")
	b.UpdateURL("http://x")

	require.Equal(t, a.Snapshot(), b.Snapshot())
}

func TestRequestStateSnapshotIsIndependent(t *testing.T) {
	s := NewRequestState()
	s.UpdateURL("http://before")

	snap := s.Snapshot()
	s.UpdateURL("http://after")

	require.Equal(t, "http://before", snap.URL)
	require.Equal(t, "http://after", s.Snapshot().URL)
}

func TestRequestStateSetField(t *testing.T) {
	s := NewRequestState()

	for _, field := range RequestFields {
		require.NoError(t, s.SetField(field, field+"-value"))
	}
	require.Equal(t, Request{
		Method:  "method-value",
		URL:     "url-value",
		Body:    "body-value",
		Headers: "headers-value",
	}, s.Snapshot())

	calls := 0
	s.Subscribe(func(Request) { calls++ })

	err := s.SetField("status", "200")
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrUnknownField))
	// Rejected fields must not notify
	require.Equal(t, 1, calls)
}
