package main

import "testing"

func TestParseCommand(t *testing.T) {
	tests := []struct {
		args    []string
		want    command
		wantErr bool
	}{
		{args: nil, want: command{name: "up"}},
		{args: []string{"up"}, want: command{name: "up"}},
		{args: []string{"version"}, want: command{name: "version"}},
		{args: []string{"down", "1"}, want: command{name: "down", arg: 1}},
		{args: []string{"force", "2"}, want: command{name: "force", arg: 2}},
		{args: []string{"down"}, wantErr: true},
		{args: []string{"down", "0"}, wantErr: true},
		{args: []string{"force", "x"}, wantErr: true},
		{args: []string{"drop"}, wantErr: true},
	}
	for _, tt := range tests {
		got, err := parseCommand(tt.args)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("parseCommand(%v): expected error", tt.args)
			}
			continue
		}
		if err != nil {
			t.Fatalf("parseCommand(%v): %v", tt.args, err)
		}
		if got != tt.want {
			t.Fatalf("parseCommand(%v) = %+v, want %+v", tt.args, got, tt.want)
		}
	}
}
