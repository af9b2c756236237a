package cli

import (
	"reflect"
	"testing"
)

func TestParseMode(t *testing.T) {
	cases := []struct {
		name     string
		args     []string
		wantMode string
		wantRest []string
		wantErr  bool
	}{
		{"subcommand shorthand", []string{"simulate", "--vehicles=v.json"}, ModeSimulate, []string{"--vehicles=v.json"}, false},
		{"alias sim", []string{"sim", "--out=r.log"}, ModeSimulate, []string{"--out=r.log"}, false},
		{"alias tok", []string{"tok", "--role=operator"}, ModeToken, []string{"--role=operator"}, false},
		{"--mode= flag", []string{"--mode=token", "--role=viewer"}, ModeToken, []string{"--role=viewer"}, false},
		{"no mode", []string{"--vehicles=v.json"}, "", nil, true},
		{"known mode after a flag is still picked up", []string{"--vehicles=v.json", "token"}, ModeToken, []string{"--vehicles=v.json"}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mode, rest, err := ParseMode(tc.args)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if mode != tc.wantMode {
				t.Errorf("mode = %q, want %q", mode, tc.wantMode)
			}
			if !reflect.DeepEqual(rest, tc.wantRest) {
				t.Errorf("rest = %v, want %v", rest, tc.wantRest)
			}
		})
	}
}

func TestIsKnownMode(t *testing.T) {
	cases := []struct {
		in       string
		wantMode string
		wantOK   bool
	}{
		{"simulate", ModeSimulate, true},
		{"run", ModeSimulate, true},
		{"token", ModeToken, true},
		{"tok", ModeToken, true},
		{"bogus", "", false},
	}

	for _, tc := range cases {
		mode, ok := isKnownMode(tc.in)
		if ok != tc.wantOK || mode != tc.wantMode {
			t.Errorf("isKnownMode(%q) = (%q, %v), want (%q, %v)", tc.in, mode, ok, tc.wantMode, tc.wantOK)
		}
	}
}
