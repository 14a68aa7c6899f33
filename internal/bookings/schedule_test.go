package bookings

import (
	"testing"
	"time"
)

var scheduleNow = time.Date(2025, 1, 15, 8, 30, 0, 0, time.UTC)

func TestResolveSchedule_ExplicitDateAndTime(t *testing.T) {
	got := ResolveSchedule("2025-01-30", "2:30 pm", scheduleNow)
	want := time.Date(2025, 1, 30, 14, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestResolveSchedule_EmptyDefaultsTomorrowTen(t *testing.T) {
	got := ResolveSchedule("", "", scheduleNow)
	want := time.Date(2025, 1, 16, 10, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestResolveSchedule_TodayNineAM(t *testing.T) {
	got := ResolveSchedule("today", "9am", scheduleNow)
	want := time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestResolveSchedule_TomorrowTwentyFourHourTime(t *testing.T) {
	got := ResolveSchedule("tomorrow", "14:00", scheduleNow)
	want := time.Date(2025, 1, 16, 14, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestResolveSchedule_GarbageFallsBack(t *testing.T) {
	got := ResolveSchedule("garbage", "garbage", scheduleNow)
	want := time.Date(2025, 1, 16, 10, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestResolveSchedule_CaseInsensitiveKeywords(t *testing.T) {
	got := ResolveSchedule("Tomorrow", "9AM", scheduleNow)
	want := time.Date(2025, 1, 16, 9, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestResolveSchedule_TwelveHourEdges(t *testing.T) {
	cases := []struct {
		in   string
		hour int
	}{
		{"12pm", 12},
		{"12am", 0},
		{"1pm", 13},
		{"11 pm", 23},
		{"11am", 11},
	}
	for _, tc := range cases {
		got := ResolveSchedule("today", tc.in, scheduleNow)
		if got.Hour() != tc.hour || got.Minute() != 0 {
			t.Fatalf("%q: got %02d:%02d, want %02d:00", tc.in, got.Hour(), got.Minute(), tc.hour)
		}
	}
}

func TestResolveSchedule_InvalidTimeValuesDefault(t *testing.T) {
	for _, in := range []string{"25:00", "9:75", "99", "half past nine"} {
		got := ResolveSchedule("today", in, scheduleNow)
		if got.Hour() != 10 || got.Minute() != 0 {
			t.Fatalf("%q: got %02d:%02d, want 10:00", in, got.Hour(), got.Minute())
		}
	}
}

func TestResolveSchedule_UnpaddedDateIsNotAccepted(t *testing.T) {
	// Strict YYYY-MM-DD only; "2025-1-3" is an unrecognized format.
	got := ResolveSchedule("2025-1-3", "", scheduleNow)
	want := time.Date(2025, 1, 16, 10, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestResolveSchedule_ImpossibleCalendarDateFallsBack(t *testing.T) {
	got := ResolveSchedule("2025-02-30", "", scheduleNow)
	want := time.Date(2025, 1, 16, 10, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}
