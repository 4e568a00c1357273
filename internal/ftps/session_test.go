package ftps

import (
	"errors"
	"net/textproto"
	"testing"
	"time"

	"github.com/jlaffaye/ftp"

	"github.com/kestrelbio/boxsync/internal/ports"
)

func TestNewSession_Defaults(t *testing.T) {
	s := NewSession(Options{Host: "ftp.box.com", User: "u", Password: "p"})

	if s.opts.Port != DefaultPort {
		t.Errorf("Port: got %d, want %d", s.opts.Port, DefaultPort)
	}
	if s.opts.Timeout != DefaultTimeout {
		t.Errorf("Timeout: got %v, want %v", s.opts.Timeout, DefaultTimeout)
	}
	if s.IsConnected() {
		t.Error("new session should not be connected")
	}
}

func TestNewSession_ExplicitOptionsKept(t *testing.T) {
	s := NewSession(Options{Host: "ftp.box.com", Port: 990, Timeout: 5 * time.Second})

	if s.opts.Port != 990 {
		t.Errorf("Port: got %d, want 990", s.opts.Port)
	}
	if s.opts.Timeout != 5*time.Second {
		t.Errorf("Timeout: got %v, want 5s", s.opts.Timeout)
	}
}

func TestAddr(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want string
	}{
		{name: "default port", opts: Options{Host: "ftp.box.com"}, want: "ftp.box.com:21"},
		{name: "custom port", opts: Options{Host: "localhost", Port: 2121}, want: "localhost:2121"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewSession(tt.opts).Addr(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOperationsBeforeConnect(t *testing.T) {
	s := NewSession(Options{Host: "ftp.box.com"})

	if _, err := s.List("/"); !errors.Is(err, ErrNotConnected) {
		t.Errorf("List: got %v, want ErrNotConnected", err)
	}
	if _, err := s.Stat("/data"); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Stat: got %v, want ErrNotConnected", err)
	}
	if err := s.Retrieve("/data/a.csv", "a.csv"); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Retrieve: got %v, want ErrNotConnected", err)
	}
	if err := s.Store("a.csv", "/data/a.csv"); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Store: got %v, want ErrNotConnected", err)
	}
	if err := s.EnsureDir("/data"); !errors.Is(err, ErrNotConnected) {
		t.Errorf("EnsureDir: got %v, want ErrNotConnected", err)
	}
}

func TestCloseWithoutConnect(t *testing.T) {
	s := NewSession(Options{Host: "ftp.box.com"})
	if err := s.Close(); err != nil {
		t.Errorf("Close on unconnected session: got %v, want nil", err)
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		typ  ftp.EntryType
		want ports.EntryKind
	}{
		{name: "file", typ: ftp.EntryTypeFile, want: ports.KindFile},
		{name: "folder", typ: ftp.EntryTypeFolder, want: ports.KindDir},
		{name: "link", typ: ftp.EntryTypeLink, want: ports.KindUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := kindOf(tt.typ); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsNotFound(t *testing.T) {
	if !isNotFound(&textproto.Error{Code: ftp.StatusFileUnavailable, Msg: "No such file"}) {
		t.Error("550 should classify as not found")
	}
	if isNotFound(&textproto.Error{Code: ftp.StatusCommandNotImplemented, Msg: "nope"}) {
		t.Error("502 should not classify as not found")
	}
	if isNotFound(errors.New("dial tcp: timeout")) {
		t.Error("plain errors should not classify as not found")
	}
}
