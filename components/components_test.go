package components

import "testing"

func TestSeasonOf(t *testing.T) {
	tests := []struct {
		month int
		want  Season
	}{
		{1, Winter},
		{2, Winter},
		{3, Spring},
		{5, Spring},
		{6, Summer},
		{8, Summer},
		{9, Fall},
		{11, Fall},
		{12, Winter},
		{0, Winter},
		{13, Winter},
	}

	for _, tt := range tests {
		if got := SeasonOf(tt.month); got != tt.want {
			t.Errorf("SeasonOf(%d) = %v, want %v", tt.month, got, tt.want)
		}
	}
}

func TestCauseNames(t *testing.T) {
	want := []string{"age", "exposure", "thirst", "starvation"}
	if len(Causes) != len(want) {
		t.Fatalf("len(Causes) = %d, want %d", len(Causes), len(want))
	}
	for i, c := range Causes {
		if c.String() != want[i] {
			t.Errorf("Causes[%d] = %q, want %q", i, c.String(), want[i])
		}
		text, err := c.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText: %v", err)
		}
		if string(text) != want[i] {
			t.Errorf("MarshalText = %q, want %q", text, want[i])
		}
	}
	if got := Cause(99).String(); got != "unknown" {
		t.Errorf("Cause(99).String() = %q, want unknown", got)
	}
}

func TestTemperatureFor(t *testing.T) {
	p := HabitatProfile{Name: "test"}
	for m := 1; m <= 12; m++ {
		p.AverageTemperature[m] = float64(m * 10)
	}

	if got := p.TemperatureFor(7); got != 70 {
		t.Errorf("TemperatureFor(7) = %v, want 70", got)
	}
	if got := p.TemperatureFor(0); got != 0 {
		t.Errorf("TemperatureFor(0) = %v, want 0", got)
	}
	if got := p.TemperatureFor(13); got != 0 {
		t.Errorf("TemperatureFor(13) = %v, want 0", got)
	}
}

func TestSexString(t *testing.T) {
	if Female.String() != "female" || Male.String() != "male" {
		t.Errorf("unexpected names: %q, %q", Female, Male)
	}
}
