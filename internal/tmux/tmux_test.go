package tmux

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

// fakeRun records tmux invocations and answers from a table keyed by the
// first argument.
type fakeRun struct {
	calls   [][]string
	outputs map[string]string
	errs    map[string]error
}

func (f *fakeRun) run(args ...string) ([]byte, error) {
	f.calls = append(f.calls, args)
	if err := f.errs[args[0]]; err != nil {
		return nil, err
	}
	return []byte(f.outputs[args[0]]), nil
}

func newFake() (*RealClient, *fakeRun) {
	f := &fakeRun{outputs: map[string]string{}, errs: map[string]error{}}
	return &RealClient{run: f.run}, f
}

func TestParseSessions(t *testing.T) {
	output := `session1	/home/user/project1	1704067200	0	1	80	24
session2	/home/user/project2	1704067300	1	2	132	43
`

	sessions := parseSessions(output)

	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}

	if sessions[0].Name != "session1" {
		t.Errorf("session[0].Name = %q, want 'session1'", sessions[0].Name)
	}
	if sessions[0].Path != "/home/user/project1" {
		t.Errorf("session[0].Path = %q, want '/home/user/project1'", sessions[0].Path)
	}
	if sessions[0].Attached {
		t.Error("session[0] should not be attached")
	}
	if sessions[0].Width != 80 || sessions[0].Height != 24 {
		t.Errorf("session[0] size = %dx%d, want 80x24", sessions[0].Width, sessions[0].Height)
	}
	if !sessions[0].Created.Equal(time.Unix(1704067200, 0)) {
		t.Errorf("session[0].Created = %v", sessions[0].Created)
	}

	if !sessions[1].Attached {
		t.Error("session[1] should be attached")
	}
	if sessions[1].WindowCount != 2 {
		t.Errorf("session[1].WindowCount = %d, want 2", sessions[1].WindowCount)
	}
}

func TestParseSessionsEmpty(t *testing.T) {
	if sessions := parseSessions(""); len(sessions) != 0 {
		t.Errorf("expected 0 sessions for empty input, got %d", len(sessions))
	}
}

func TestParseSessionsPartialLine(t *testing.T) {
	// Less than 5 tab-separated fields should be skipped
	if sessions := parseSessions("incomplete\tline\n"); len(sessions) != 0 {
		t.Errorf("expected 0 sessions for incomplete line, got %d", len(sessions))
	}
}

func TestParseSessionsWithoutSize(t *testing.T) {
	sessions := parseSessions("old\t/tmp\t2024-01-01T00:00:00\t1\tx\n")
	if len(sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(sessions))
	}
	if sessions[0].WindowCount != 1 {
		t.Errorf("WindowCount = %d, want fallback 1", sessions[0].WindowCount)
	}
	if sessions[0].Created.Year() != 2024 {
		t.Errorf("Created = %v, want 2024", sessions[0].Created)
	}
}

func TestParseUnixTimestampInvalid(t *testing.T) {
	if _, err := parseUnixTimestamp("not-a-number"); err == nil {
		t.Error("expected error for invalid timestamp")
	}
}

func TestListSessions(t *testing.T) {
	c, f := newFake()
	f.outputs["list-sessions"] = "main\t/\t0\t1\t1\t80\t24\n"

	sessions, err := c.ListSessions()
	if err != nil {
		t.Fatalf("ListSessions() error = %v", err)
	}
	if len(sessions) != 1 || sessions[0].Name != "main" {
		t.Errorf("ListSessions() = %+v", sessions)
	}
}

func TestListSessionsNoServer(t *testing.T) {
	c, f := newFake()
	f.errs["list-sessions"] = &commandError{
		args:   []string{"list-sessions"},
		stderr: "no server running on /tmp/tmux-0/default",
		err:    errors.New("exit status 1"),
	}

	sessions, err := c.ListSessions()
	if err != nil {
		t.Fatalf("ListSessions() error = %v, want nil", err)
	}
	if sessions != nil {
		t.Errorf("ListSessions() = %+v, want nil", sessions)
	}
}

func TestListSessionsFailure(t *testing.T) {
	c, f := newFake()
	f.errs["list-sessions"] = &commandError{
		args:   []string{"list-sessions"},
		stderr: "permission denied",
		err:    errors.New("exit status 1"),
	}

	if _, err := c.ListSessions(); err == nil {
		t.Error("ListSessions() expected error, got nil")
	}
}

func TestCreateSessionArgs(t *testing.T) {
	c, f := newFake()
	if err := c.CreateSession("work", "/src", 100, 30, []string{"htop"}); err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	want := []string{"new-session", "-d", "-s", "work", "-c", "/src", "-x", "100", "-y", "30", "htop"}
	if !reflect.DeepEqual(f.calls[0], want) {
		t.Errorf("args = %v, want %v", f.calls[0], want)
	}
}

func TestCapturePaneArgs(t *testing.T) {
	c, f := newFake()
	f.outputs["capture-pane"] = "\x1b[1mhi\x1b[0m\n"

	out, err := c.CapturePane("work", 50)
	if err != nil {
		t.Fatalf("CapturePane() error = %v", err)
	}
	if string(out) != "\x1b[1mhi\x1b[0m\n" {
		t.Errorf("CapturePane() = %q", out)
	}
	want := []string{"capture-pane", "-t", "work", "-p", "-e", "-S", "-50"}
	if !reflect.DeepEqual(f.calls[0], want) {
		t.Errorf("args = %v, want %v", f.calls[0], want)
	}
}

func TestHasSession(t *testing.T) {
	c, f := newFake()
	if !c.HasSession("a") {
		t.Error("HasSession() = false with a successful command")
	}
	f.errs["has-session"] = errors.New("exit status 1")
	if c.HasSession("a") {
		t.Error("HasSession() = true with a failing command")
	}
}

func TestVersion(t *testing.T) {
	c, f := newFake()
	f.outputs["-V"] = "tmux next-3.5\n"
	v, err := c.Version()
	if err != nil {
		t.Fatalf("Version() error = %v", err)
	}
	if v != "3.5" {
		t.Errorf("Version() = %q, want 3.5", v)
	}
}

func TestClientInterface(t *testing.T) {
	var _ Client = (*RealClient)(nil)
}

func TestAtLeast(t *testing.T) {
	tests := []struct {
		version string
		want    bool
	}{
		{"3.2", true},
		{"3.2a", true},
		{"3.4", true},
		{"4.0", true},
		{"3.1", false},
		{"2.9", false},
		{"master", true},
	}

	for _, tt := range tests {
		if got := AtLeast(tt.version, 3, 2); got != tt.want {
			t.Errorf("AtLeast(%q, 3, 2) = %v, want %v", tt.version, got, tt.want)
		}
	}
}
