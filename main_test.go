package main

import "testing"

func TestRootCmdFlagDefaults(t *testing.T) {
	cmd := newRootCmd()

	defaults := map[string]string{
		"title-column":   "title",
		"content-column": "content",
		"labels-column":  "labels",
		"draft":          "false",
	}

	for name, want := range defaults {
		f := cmd.Flags().Lookup(name)
		if f == nil {
			t.Fatalf("flag --%s is not registered", name)
		}
		if f.DefValue != want {
			t.Errorf("flag --%s default = %q, want %q", name, f.DefValue, want)
		}
	}
}

func TestRootCmdRequiresCSVArgument(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{})
	if err := cmd.Execute(); err == nil {
		t.Fatalf("expected an error with no positional argument")
	}
}
