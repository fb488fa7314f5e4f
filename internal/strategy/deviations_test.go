package strategy

import "testing"

func TestDeviation_ShouldDeviate(t *testing.T) {
	atOrAbove := Deviation{Index: 3}
	if !atOrAbove.ShouldDeviate(3) {
		t.Error("expected deviation at the index")
	}
	if !atOrAbove.ShouldDeviate(5.5) {
		t.Error("expected deviation above the index")
	}
	if atOrAbove.ShouldDeviate(2.9) {
		t.Error("unexpected deviation below the index")
	}

	atOrBelow := Deviation{Index: -1, AtOrBelow: true}
	if !atOrBelow.ShouldDeviate(-1) {
		t.Error("expected deviation at the index")
	}
	if !atOrBelow.ShouldDeviate(-3) {
		t.Error("expected deviation below the index")
	}
	if atOrBelow.ShouldDeviate(-0.5) {
		t.Error("unexpected deviation above the index")
	}
}

func TestDeviation_ActionAt(t *testing.T) {
	d := Deviation{
		PlayerTotal: 16, DealerUpcard: 10,
		BasicAction: Hit, DeviationAction: Stand, Index: 0,
	}

	if got := d.ActionAt(1); got != Stand {
		t.Errorf("ActionAt(1) = %s, want STAND", got)
	}
	if got := d.ActionAt(-1); got != Hit {
		t.Errorf("ActionAt(-1) = %s, want HIT", got)
	}
}

func TestFindDeviation(t *testing.T) {
	// Sixteen against a ten stands from TC 0 up.
	d := FindDeviation(16, false, false, 10, 0, true)
	if d == nil || d.DeviationAction != Stand {
		t.Fatalf("expected 16 vs 10 stand deviation, got %+v", d)
	}
	if FindDeviation(16, false, false, 10, -0.5, true) != nil {
		t.Error("unexpected deviation below the index")
	}

	// Twelve against a four reverts to hitting in negative counts.
	d = FindDeviation(12, false, false, 4, -1, true)
	if d == nil || d.DeviationAction != Hit {
		t.Fatalf("expected 12 vs 4 hit deviation, got %+v", d)
	}
	if FindDeviation(12, false, false, 4, 1, true) != nil {
		t.Error("unexpected deviation in a positive count")
	}

	// Splitting tens requires a pair, not just a twenty.
	d = FindDeviation(20, false, true, 5, 5, true)
	if d == nil || d.DeviationAction != Split {
		t.Fatalf("expected 10,10 vs 5 split deviation, got %+v", d)
	}
	if FindDeviation(20, false, false, 5, 5, true) != nil {
		t.Error("unexpected deviation for an unpaired twenty")
	}

	// Fab 4 surrenders are skipped when surrender is excluded.
	d = FindDeviation(14, false, false, 10, 3, true)
	if d == nil || d.DeviationAction != Surrender {
		t.Fatalf("expected 14 vs 10 surrender deviation, got %+v", d)
	}
	if FindDeviation(14, false, false, 10, 3, false) != nil {
		t.Error("unexpected surrender deviation with surrender excluded")
	}
}

func TestTakeInsurance(t *testing.T) {
	if TakeInsurance(2.9) {
		t.Error("unexpected insurance below TC +3")
	}
	if !TakeInsurance(3) {
		t.Error("expected insurance at TC +3")
	}
	if !TakeInsurance(6) {
		t.Error("expected insurance above TC +3")
	}
}

func TestDeviationTables(t *testing.T) {
	if len(Illustrious18) != 17 {
		t.Errorf("Illustrious18 has %d playing deviations, want 17", len(Illustrious18))
	}
	if len(Fab4) != 4 {
		t.Errorf("Fab4 has %d deviations, want 4", len(Fab4))
	}

	for _, d := range append(append([]Deviation{}, Illustrious18...), Fab4...) {
		if d.Description == "" {
			t.Errorf("deviation %+v has no description", d)
		}
		if d.BasicAction == 0 || d.DeviationAction == 0 {
			t.Errorf("deviation %+v has unset actions", d)
		}
	}
}
