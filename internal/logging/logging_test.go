package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestNew_TagsComponent(t *testing.T) {
	var buf bytes.Buffer
	Init(slog.LevelDebug, FormatText, &buf)

	New("drugcampaign").Debug("composed", "type", "MDA")

	out := buf.String()
	for _, want := range []string{"component=drugcampaign", "composed", "type=MDA"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in %s", want, out)
		}
	}
}

func TestInit_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	Init(slog.LevelInfo, FormatJSON, &buf)

	New("cli").Info("built", "events", 3)

	out := buf.String()
	if !strings.Contains(out, `"component":"cli"`) || !strings.Contains(out, `"events":3`) {
		t.Errorf("unexpected JSON output: %s", out)
	}
}

func TestInit_LevelGating(t *testing.T) {
	var buf bytes.Buffer
	Init(slog.LevelWarn, FormatText, &buf)

	logger := New("diagnostic")
	logger.Info("suppressed")
	logger.Warn("clamped start day")

	out := buf.String()
	if strings.Contains(out, "suppressed") {
		t.Error("info record should be dropped at warn level")
	}
	if !strings.Contains(out, "clamped start day") {
		t.Error("warn record should be written")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"", slog.LevelInfo, false},
		{"DEBUG", slog.LevelDebug, false},
		{" warn ", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"verbose", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat("JSON"); err != nil || f != FormatJSON {
		t.Errorf("ParseFormat(JSON) = %q, %v", f, err)
	}
	if f, err := ParseFormat(""); err != nil || f != FormatText {
		t.Errorf("ParseFormat(\"\") = %q, %v", f, err)
	}
	if _, err := ParseFormat("yaml"); err == nil {
		t.Error("ParseFormat(yaml) should fail")
	}
}

func TestDiscard(t *testing.T) {
	Discard().Error("nothing")
}
