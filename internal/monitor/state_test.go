package monitor

import "testing"

func TestFailureTrackerEdges(t *testing.T) {
	tracker := NewFailureTracker(3)

	if tracker.Fail() || tracker.Fail() {
		t.Fatal("no down edge before the threshold")
	}
	if !tracker.Fail() {
		t.Fatal("third failure must report the down edge")
	}
	if !tracker.Down() {
		t.Fatal("tracker should be down after the edge")
	}
	if tracker.Fail() {
		t.Fatal("further failures inside an episode must not re-edge")
	}

	if !tracker.Succeed() {
		t.Fatal("success out of a down episode must report recovery")
	}
	if tracker.Failures() != 0 {
		t.Fatalf("success must reset the streak, got %d", tracker.Failures())
	}
	if tracker.Succeed() {
		t.Fatal("a healthy success must not report recovery")
	}
}

func TestFailureTrackerThresholdOne(t *testing.T) {
	tracker := NewFailureTracker(1)
	if !tracker.Fail() {
		t.Fatal("with max_failures=1 the first failure is the down edge")
	}
}

func TestFailureTrackerClampsThreshold(t *testing.T) {
	tracker := NewFailureTracker(0)
	if !tracker.Fail() {
		t.Fatal("threshold below 1 must clamp to 1")
	}
}

func TestChangeDetectorSilentBaseline(t *testing.T) {
	detector := NewChangeDetector()
	if detector.Established() {
		t.Fatal("detector must start without a baseline")
	}

	if _, _, changed := detector.Observe([]string{"A", "B"}); changed {
		t.Fatal("first observation must be silent")
	}
	if !detector.Established() {
		t.Fatal("first observation must establish the baseline")
	}
}

func TestChangeDetectorEmptyBaselineIsEstablished(t *testing.T) {
	// An empty first fetch is still a baseline, not "no baseline yet".
	detector := NewChangeDetector()
	if _, _, changed := detector.Observe(nil); changed {
		t.Fatal("empty first observation must be silent")
	}

	added, removed, changed := detector.Observe([]string{"A"})
	if !changed {
		t.Fatal("growth from the empty baseline must flag a change")
	}
	if len(added) != 1 || added[0] != "A" || len(removed) != 0 {
		t.Fatalf("unexpected delta: added=%v removed=%v", added, removed)
	}
}

func TestChangeDetectorStableSetIsSilent(t *testing.T) {
	detector := NewChangeDetector()
	detector.Observe([]string{"A", "B"})

	for i := 0; i < 3; i++ {
		// Order must not matter for set equality.
		if _, _, changed := detector.Observe([]string{"B", "A"}); changed {
			t.Fatal("identical set must not flag a change")
		}
	}
}

func TestChangeDetectorSymmetricDifference(t *testing.T) {
	detector := NewChangeDetector()
	detector.Observe([]string{"A", "B"})

	added, removed, changed := detector.Observe([]string{"B", "C", "D"})
	if !changed {
		t.Fatal("expected a change")
	}
	if len(added) != 2 || added[0] != "C" || added[1] != "D" {
		t.Fatalf("expected sorted additions [C D], got %v", added)
	}
	if len(removed) != 1 || removed[0] != "A" {
		t.Fatalf("expected removal [A], got %v", removed)
	}

	// The snapshot advances after a reported change.
	if _, _, changed := detector.Observe([]string{"B", "C", "D"}); changed {
		t.Fatal("snapshot must have been replaced by the new set")
	}
}
