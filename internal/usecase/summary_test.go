package usecase

import (
	"testing"
	"time"

	"ChartFeed/internal/domain/models"
)

func point(day int, price float64) models.ChartPoint {
	return models.ChartPoint{
		DisplayLabel:    "Jan",
		ClosePrice:      price,
		SourceTimestamp: time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC),
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s, ok := Summarize(nil)
	if ok {
		t.Fatalf("expected no summary for empty window, got %+v", s)
	}
	if s != (models.SummaryStatistics{}) {
		t.Fatalf("expected zero value, got %+v", s)
	}
}

func TestSummarizeScenario(t *testing.T) {
	s, ok := Summarize([]models.ChartPoint{point(1, 200.5), point(3, 210)})
	if !ok {
		t.Fatalf("expected summary")
	}
	if s.Current != 210 {
		t.Fatalf("current: got %v", s.Current)
	}
	if s.Max != 210 || s.Min != 200.5 {
		t.Fatalf("max/min: got %v/%v", s.Max, s.Min)
	}
	if s.Average != 205.25 {
		t.Fatalf("average: got %v", s.Average)
	}
}

func TestSummarizeCurrentIsChronologicallyLast(t *testing.T) {
	// ordering is the normalizer's guarantee; current follows array position
	s, ok := Summarize([]models.ChartPoint{point(1, 5), point(2, 9), point(3, 7)})
	if !ok {
		t.Fatalf("expected summary")
	}
	if s.Current != 7 {
		t.Fatalf("current: got %v", s.Current)
	}
	if s.Max != 9 || s.Min != 5 {
		t.Fatalf("max/min: got %v/%v", s.Max, s.Min)
	}
}

func TestSummarizeSinglePoint(t *testing.T) {
	s, ok := Summarize([]models.ChartPoint{point(1, 42)})
	if !ok {
		t.Fatalf("expected summary")
	}
	if s.Current != 42 || s.Max != 42 || s.Min != 42 || s.Average != 42 {
		t.Fatalf("unexpected summary %+v", s)
	}
}
