package srs

import "testing"

func TestCalculate_CorrectPromotesByOne(t *testing.T) {
	for s := StageApprentice1; s <= StageBurned; s++ {
		res := Calculate(s, 0)

		want := s + 1
		if want > StageBurned {
			want = StageBurned
		}
		if res.NewStage != want {
			t.Errorf("Calculate(%d, 0).NewStage = %d, want %d", s, res.NewStage, want)
		}
		if res.DidLevelUp != (s < StageBurned) {
			t.Errorf("Calculate(%d, 0).DidLevelUp = %v, want %v", s, res.DidLevelUp, s < StageBurned)
		}
		if res.DidLevelDown {
			t.Errorf("Calculate(%d, 0).DidLevelDown = true, want false", s)
		}
	}
}

func TestCalculate_IncorrectAtGuruAndAboveDemotesByTwo(t *testing.T) {
	for s := StageGuru1; s <= StageBurned; s++ {
		for _, incorrect := range []int{1, 2, 5} {
			res := Calculate(s, incorrect)

			want := s - 2
			if want < StageApprentice1 {
				want = StageApprentice1
			}
			if res.NewStage != want {
				t.Errorf("Calculate(%d, %d).NewStage = %d, want %d", s, incorrect, res.NewStage, want)
			}
			if !res.DidLevelDown {
				t.Errorf("Calculate(%d, %d).DidLevelDown = false, want true", s, incorrect)
			}
		}
	}
}

func TestCalculate_IncorrectBelowGuruDemotesByOne(t *testing.T) {
	for s := StageInitiate; s <= StageApprentice4; s++ {
		res := Calculate(s, 1)

		want := s - 1
		if want < StageApprentice1 {
			want = StageApprentice1
		}
		if res.NewStage != want {
			t.Errorf("Calculate(%d, 1).NewStage = %d, want %d", s, res.NewStage, want)
		}
	}
}

func TestCalculate_DemotionFloorIsApprentice1(t *testing.T) {
	// Even from Initiate an incorrect answer cannot drop the item below
	// Apprentice 1. Initiate actually moves *up* to 1 here, which counts
	// as a level up.
	res := Calculate(StageInitiate, 3)
	if res.NewStage != StageApprentice1 {
		t.Fatalf("NewStage = %d, want %d", res.NewStage, StageApprentice1)
	}
	if !res.DidLevelUp || res.DidLevelDown {
		t.Fatalf("DidLevelUp=%v DidLevelDown=%v, want up=true down=false", res.DidLevelUp, res.DidLevelDown)
	}
}

func TestCalculate_BurnedIsTerminal(t *testing.T) {
	res := Calculate(StageBurned, 0)
	if res.NewStage != StageBurned {
		t.Fatalf("NewStage = %d, want %d", res.NewStage, StageBurned)
	}
	if res.DidLevelUp {
		t.Fatal("DidLevelUp = true, want false")
	}
}

func TestCalculate_OutOfRangeStagesAreCoerced(t *testing.T) {
	tests := []struct {
		name      string
		stage     Stage
		incorrect int
		want      Stage
	}{
		{"negative treated as initiate", Stage(-3), 0, StageApprentice1},
		{"negative with miss floors at apprentice 1", Stage(-3), 1, StageApprentice1},
		{"above burned stays burned", Stage(12), 0, StageBurned},
		{"above burned with miss demotes from burned", Stage(12), 1, StageMaster},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Calculate(tt.stage, tt.incorrect)
			if got.NewStage != tt.want {
				t.Errorf("Calculate(%d, %d).NewStage = %d, want %d", tt.stage, tt.incorrect, got.NewStage, tt.want)
			}
		})
	}
}

func TestStageName(t *testing.T) {
	tests := []struct {
		stage Stage
		want  string
	}{
		{StageInitiate, "Initiate"},
		{StageApprentice1, "Apprentice"},
		{StageApprentice4, "Apprentice"},
		{StageGuru1, "Guru"},
		{StageGuru2, "Guru"},
		{StageMaster, "Master"},
		{StageEnlightened, "Enlightened"},
		{StageBurned, "Burned"},
		{Stage(42), "Unknown"},
	}

	for _, tt := range tests {
		if got := tt.stage.Name(); got != tt.want {
			t.Errorf("Stage(%d).Name() = %q, want %q", tt.stage, got, tt.want)
		}
	}
}
