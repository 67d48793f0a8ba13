package cli

import (
	"testing"

	"github.com/ardnew/cmf/log"
)

func TestLogConfig_Scan(t *testing.T) {
	t.Cleanup(func() {
		log.Config(log.WithLevel(log.LevelInfo), log.WithFormat(log.FormatJSON))
	})

	tests := []struct {
		name string
		args []string
		want logConfig
	}{
		{
			name: "none",
			args: []string{"compile", "x.cmf"},
			want: logConfig{Level: "info", Format: "json", TimeLayout: "RFC3339", Pretty: true},
		},
		{
			name: "separate values",
			args: []string{"merge", "--log-level", "debug", "--log-format", "text"},
			want: logConfig{Level: "debug", Format: "text", TimeLayout: "RFC3339", Pretty: true},
		},
		{
			name: "assigned values",
			args: []string{"--log-level=trace", "--log-time-layout=kitchen", "compile"},
			want: logConfig{Level: "trace", Format: "json", TimeLayout: "kitchen", Pretty: true},
		},
		{
			name: "toggles",
			args: []string{"--log-caller", "--no-log-pretty"},
			want: logConfig{Level: "info", Format: "json", TimeLayout: "RFC3339", Caller: true},
		},
		{
			name: "assigned toggle",
			args: []string{"--log-caller=false", "--log-pretty=false"},
			want: logConfig{Level: "info", Format: "json", TimeLayout: "RFC3339"},
		},
		{
			name: "stops at terminator",
			args: []string{"--", "--log-level", "error"},
			want: logConfig{Level: "info", Format: "json", TimeLayout: "RFC3339", Pretty: true},
		},
		{
			name: "flag value not consumed",
			args: []string{"--log-level", "--log-caller"},
			want: logConfig{Level: "info", Format: "json", TimeLayout: "RFC3339", Caller: true, Pretty: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := logConfig{Level: "info", Format: "json", TimeLayout: "RFC3339", Pretty: true}
			f.scan(tt.args)

			if f != tt.want {
				t.Errorf("scan(%q) = %+v, want %+v", tt.args, f, tt.want)
			}
		})
	}
}
