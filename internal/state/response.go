package state

import "fmt"

// Response holds what came back from the last executed request
type Response struct {
	Body    string `json:"body"`
	Headers string `json:"headers"`
}

var ResponseFields = []string{"body", "headers"}

type ResponseState struct {
	store *Store[Response]
}

func NewResponseState() *ResponseState {
	return &ResponseState{store: NewStore(Response{})}
}

func (s *ResponseState) Subscribe(o Observer[Response]) (unsubscribe func()) {
	return s.store.Subscribe(o)
}

func (s *ResponseState) Snapshot() Response {
	return s.store.Get()
}

func (s *ResponseState) UpdateBody(body string) {
	s.store.Update(func(r Response) Response {
		r.Body = body
		return r
	})
}

func (s *ResponseState) UpdateHeaders(headers string) {
	s.store.Update(func(r Response) Response {
		r.Headers = headers
		return r
	})
}

func (s *ResponseState) SetField(name, value string) error {
	switch name {
	case "body":
		s.UpdateBody(value)
	case "headers":
		s.UpdateHeaders(value)
	default:
		return fmt.Errorf("response %q: %w", name, ErrUnknownField)
	}
	return nil
}
