package util

import (
	"strconv"
	"testing"
	"time"
)

func TestParseTimeRFC3339(t *testing.T) {
	s := "2024-10-10T10:10:10Z"
	got, ok := ParseTime(s)
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.UTC().Format(time.RFC3339) != s {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseTimeDateOnly(t *testing.T) {
	got, ok := ParseTime("2024-01-03")
	if !ok {
		t.Fatalf("expected ok")
	}
	want := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseTimeUnix(t *testing.T) {
	ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC).Unix()
	got, ok := ParseTime(strconv.FormatInt(ts, 10))
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Unix() != ts {
		t.Fatalf("unexpected unix %v", got.Unix())
	}
}

func TestParseTimeUnixMillis(t *testing.T) {
	ms := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC).UnixMilli()
	got, ok := ParseTime(strconv.FormatInt(ms, 10))
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.UnixMilli() != ms {
		t.Fatalf("unexpected millis %v", got.UnixMilli())
	}
}

func TestParseTimeDefault(t *testing.T) {
	def := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC)
	got := ParseTimeDefault("", def)
	if !got.Equal(def) {
		t.Fatalf("expected default")
	}
}

func TestParseFloat(t *testing.T) {
	if v, ok := ParseFloat("200.5"); !ok || v != 200.5 {
		t.Fatalf("unexpected %v %v", v, ok)
	}
	if _, ok := ParseFloat("abc"); ok {
		t.Fatalf("expected failure")
	}
	if _, ok := ParseFloat(""); ok {
		t.Fatalf("expected failure")
	}
	if _, ok := ParseFloat("NaN"); ok {
		t.Fatalf("expected NaN rejected")
	}
}
