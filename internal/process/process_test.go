package process

import (
	"os"
	"os/exec"
	"testing"
)

func TestCommandName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"/usr/local/bin/node", "node"},
		{"/bin/zsh", "zsh"},
		{"-zsh", "zsh"},
		{"node", "node"},
		{"vim /path/to/file.go", "vim"},
		{"/usr/bin/python3 -m http.server", "python3"},
		{"", ""},
		{"  ", ""},
	}

	for _, tt := range tests {
		got := commandName(tt.input)
		if got != tt.want {
			t.Errorf("commandName(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestParseTable(t *testing.T) {
	out := `    1     0 /sbin/init
  812     1 /bin/bash --login
  913   812 vim notes.txt
  bad   812 skipped
  914
`
	procs := parseTable(out)
	if len(procs) != 3 {
		t.Fatalf("expected 3 processes, got %d: %+v", len(procs), procs)
	}
	want := Info{PID: 913, PPID: 812, Command: "vim notes.txt"}
	if procs[2] != want {
		t.Errorf("expected %+v, got %+v", want, procs[2])
	}
}

func TestCommandLine(t *testing.T) {
	if _, err := exec.LookPath("ps"); err != nil {
		t.Skip("ps not available")
	}
	pid := os.Getpid()
	cmdLine, err := CommandLine(pid)
	if err != nil {
		t.Fatalf("CommandLine(%d) error: %v", pid, err)
	}
	if cmdLine == "" {
		t.Errorf("CommandLine(%d) returned empty string", pid)
	}

	if _, err := CommandLine(-1); err == nil {
		t.Error("expected error for invalid PID")
	}
}

func TestActiveName(t *testing.T) {
	if _, err := exec.LookPath("ps"); err != nil {
		t.Skip("ps not available")
	}
	name, err := ActiveName(os.Getpid())
	if err != nil {
		t.Fatalf("ActiveName error: %v", err)
	}
	if name == "" {
		t.Error("ActiveName returned empty name")
	}
}
