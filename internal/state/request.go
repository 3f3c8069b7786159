package state

import (
	"errors"
	"fmt"
)

var ErrUnknownField = errors.New("unknown field")

// Request is the in-progress HTTP request being edited.
// Headers are kept as the raw text the user typed, parsing is left to whoever sends the request.
type Request struct {
	Method  string `json:"method"`
	URL     string `json:"url"`
	Body    string `json:"body"`
	Headers string `json:"headers"`
}

// RequestFields lists the names accepted by RequestState.SetField
var RequestFields = []string{"method", "url", "body", "headers"}

type RequestState struct {
	store *Store[Request]
}

func NewRequestState() *RequestState {
	return &RequestState{store: NewStore(Request{})}
}

// Subscribe calls o with the current request and again after every update.
func (s *RequestState) Subscribe(o Observer[Request]) (unsubscribe func()) {
	return s.store.Subscribe(o)
}

func (s *RequestState) Snapshot() Request {
	return s.store.Get()
}

func (s *RequestState) UpdateMethod(method string) {
	s.store.Update(func(r Request) Request {
		r.Method = method
		return r
	})
}

func (s *RequestState) UpdateURL(url string) {
	s.store.Update(func(r Request) Request {
		r.URL = url
		return r
	})
}

func (s *RequestState) UpdateBody(body string) {
	s.store.Update(func(r Request) Request {
		r.Body = body
		return r
	})
}

func (s *RequestState) UpdateHeaders(headers string) {
	s.store.Update(func(r Request) Request {
		r.Headers = headers
		return r
	})
}

// SetField routes a field name coming off the wire to its setter
func (s *RequestState) SetField(name, value string) error {
	switch name {
	case "method":
		s.UpdateMethod(value)
	case "url":
		s.UpdateURL(value)
	case "body":
		s.UpdateBody(value)
	case "headers":
		s.UpdateHeaders(value)
	default:
		return fmt.Errorf("request %q: %w", name, ErrUnknownField)
	}
	return nil
}
