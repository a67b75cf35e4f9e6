package upload

import "bytes"

// FakeHostPort is a HostPort for tests. Each Request written queues the next
// entry of Replies; every chunk of a reply is returned by one Read, and an
// empty Read marks the end of the reply.
type FakeHostPort struct {
	Replies [][]string
	Pending []string // unread input
	Written bytes.Buffer
	Resets  int

	WriteError error
	ResetError error

	next int
}

func (f *FakeHostPort) Write(p []byte) (int, error) {
	if f.WriteError != nil {
		return 0, f.WriteError
	}
	f.Written.Write(p)
	if string(p) == Request && f.next < len(f.Replies) {
		f.Pending = append(f.Pending, f.Replies[f.next]...)
		f.next++
	}
	return len(p), nil
}

func (f *FakeHostPort) Read(p []byte) (int, error) {
	if len(f.Pending) == 0 {
		return 0, nil
	}
	n := copy(p, f.Pending[0])
	if n < len(f.Pending[0]) {
		f.Pending[0] = f.Pending[0][n:]
	} else {
		f.Pending = f.Pending[1:]
	}
	return n, nil
}

func (f *FakeHostPort) ResetInputBuffer() error {
	f.Resets++
	f.Pending = nil
	return f.ResetError
}
