package sdk

import (
	"reflect"
	"strings"
	"testing"
)

func TestDetectEnglishText(t *testing.T) {
	text := "The committee said that the proposal is ready for review and that the board was pleased with the outcome of the vote in the chamber."
	got := HeuristicDetector{}.Detect(text)
	if len(got) == 0 || got[0] != "English" {
		t.Fatalf("expected English first, got %v", got)
	}
}

func TestDetectChineseText(t *testing.T) {
	text := strings.Repeat("这是一个中文句子。", 3)
	got := HeuristicDetector{}.Detect(text)
	if len(got) == 0 || got[0] != "Chinese" {
		t.Fatalf("expected Chinese first, got %v", got)
	}
}

func TestDetectBelowThresholdDefaultsToEnglish(t *testing.T) {
	for _, text := range []string{"123 456 789", "", "le la"} {
		got := HeuristicDetector{}.Detect(text)
		if !reflect.DeepEqual(got, []string{"English"}) {
			t.Fatalf("text %q: expected [English], got %v", text, got)
		}
	}
}

func TestDetectCapsResultAtThree(t *testing.T) {
	text := "the and of to in is that for with was " +
		"el la los las de que en una por con " +
		"le les des une est dans pour que avec sur " +
		"der die das und ist nicht ein eine mit für"
	got := HeuristicDetector{}.Detect(strings.Repeat(text, 2))
	if len(got) > 3 {
		t.Fatalf("expected at most 3 languages, got %v", got)
	}
}

func TestDetectSortsByMatchCount(t *testing.T) {
	text := strings.Repeat("der die das und ist mit ", 4) + "the and of to in is that"
	got := HeuristicDetector{}.Detect(text)
	if len(got) < 2 || got[0] != "German" {
		t.Fatalf("expected German before English, got %v", got)
	}
}
