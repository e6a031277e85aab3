package version

import "testing"

func TestShort(t *testing.T) {
	old := GitSHA
	defer func() { GitSHA = old }()

	GitSHA = "abc1234"
	if got := Short(); got != "abc1234" {
		t.Errorf("Short() = %q, want abc1234", got)
	}

	GitSHA = "dev"
	if got := Short(); got == "" {
		t.Error("Short() returned empty string")
	}
}
