package alpha

import (
	"strings"
	"testing"
)

const sampleCSV = `
"Legs · Day 2 · Week 4 · Push-Pull-Legs";"2026-02-19 4:54 h";"1:02 hr"
"1. Hack Squats · Machine · 8 reps";"WU1 · 37,5 kg · 9 reps<br>WU2 · 72,5 kg · 7 reps"
#;KG;REPS;RIR
1;115;8;1
2;115;10;1
3;115;10;1
"2. Sumo Squats · Smith machine · 10 reps";"WU1 · 35 kg · 8 reps"
#;KG;REPS;RIR
1;70;8;1
2;70;12;1
"3. Hyperextensions on Roman Chair · Bodyweight · 10 reps";"WU1 · +0 kg · 8 reps"
#;KG;REPS;RIR
1;+35;10;0
2;+35;9;1
3;+35;10;0
"4. Reverse Lunges · Dumbbells · 10 reps"
#;KG;REPS;RIR
1;10;10;1
2;10;10;1
3;10;10;0
"5. Standing Calf Raises · Machine · 12 reps";"WU1 · 47,5 kg · 8 reps"
#;KG;REPS;RIR
1;157,5;11;1
2;157,5;11;0
3;157,5;10;0
"6. Hanging Leg Raises · Bodyweight · 12 reps · 2 dropsets"
#;KG;REPS;RIR
1;+0;12;1
2;+0;12;1
3;+0;12;0

"Push · Day 1 · Week 4 · Push-Pull-Legs";"2026-02-17 5:04 h";"1:12 hr"
"1. Bench Press · Barbell · 6 reps";"WU1 · 22,5 kg · 10 reps<br>WU2 · 47,5 kg · 8 reps<br>WU3 · 77,5 kg · 6 reps"
#;KG;REPS;RIR
1;102,5;6;0
2;102,5;6;0
3;100;6;0
`

// TestParseSessions verifies session, exercise and set structure of a
// two-session export.
func TestParseSessions(t *testing.T) {
	sessions, err := Parse(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("sessions = %d, want 2", len(sessions))
	}
	s1 := sessions[0]
	if s1.Name != "Legs · Day 2 · Week 4 · Push-Pull-Legs" || s1.Duration != "1:02 hr" {
		t.Errorf("s1 = %q / %q", s1.Name, s1.Duration)
	}
	if got := s1.Date.Format("2006-01-02 15:04"); got != "2026-02-19 04:54" {
		t.Errorf("s1 date = %s", got)
	}

	tests := []struct {
		name, equipment string
		target, sets    int
	}{
		{"Hack Squats", "Machine", 8, 5},
		{"Sumo Squats", "Smith machine", 10, 3},
		{"Hyperextensions on Roman Chair", "Bodyweight", 10, 4},
		{"Reverse Lunges", "Dumbbells", 10, 3},
		{"Standing Calf Raises", "Machine", 12, 4},
		{"Hanging Leg Raises", "Bodyweight", 12, 3},
	}
	if len(s1.Exercises) != len(tests) {
		t.Fatalf("s1 exercises = %d, want %d", len(s1.Exercises), len(tests))
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := s1.Exercises[i]
			if ex.Number != i+1 {
				t.Errorf("number = %d, want %d", ex.Number, i+1)
			}
			if ex.Name != tt.name || ex.Equipment != tt.equipment {
				t.Errorf("exercise = %q / %q, want %q / %q", ex.Name, ex.Equipment, tt.name, tt.equipment)
			}
			if ex.TargetReps != tt.target {
				t.Errorf("target reps = %d, want %d", ex.TargetReps, tt.target)
			}
			if len(ex.Sets) != tt.sets {
				t.Errorf("sets = %d, want %d", len(ex.Sets), tt.sets)
			}
		})
	}

	bench := sessions[1].Exercises[0]
	if bench.Name != "Bench Press" || len(bench.Sets) != 6 {
		t.Fatalf("bench = %q with %d sets", bench.Name, len(bench.Sets))
	}
	if w := bench.Sets[3].WeightKg; w != 102.5 {
		t.Errorf("first working weight = %v, want 102.5", w)
	}
}

// TestParseWeight verifies comma decimals and bodyweight-plus notation.
func TestParseWeight(t *testing.T) {
	tests := []struct {
		in     string
		weight float64
		bw     bool
	}{
		{"102,5", 102.5, false},
		{"100", 100, false},
		{"+35", 35, true},
		{"+0", 0, true},
		{" 0,5 ", 0.5, false},
	}
	for _, tt := range tests {
		w, bw := parseWeight(tt.in)
		if w != tt.weight || bw != tt.bw {
			t.Errorf("parseWeight(%q) = %v, %v; want %v, %v", tt.in, w, bw, tt.weight, tt.bw)
		}
	}
}

// TestParseWarmups verifies warmup extraction from the exercise header.
func TestParseWarmups(t *testing.T) {
	sets := parseWarmups("WU1 · 37,5 kg · 9 reps<br>WU2 · +0 kg · 7 reps")
	if len(sets) != 2 {
		t.Fatalf("warmups = %d, want 2", len(sets))
	}
	if sets[0].WeightKg != 37.5 || sets[0].Reps != 9 || !sets[0].Warmup {
		t.Errorf("wu1 = %+v", sets[0])
	}
	if !sets[1].BodyweightPlus || sets[1].WeightKg != 0 {
		t.Errorf("wu2 = %+v", sets[1])
	}
	if parseWarmups("") != nil {
		t.Error("empty warmup field should yield no sets")
	}
}

// TestParseFractionalRIR verifies half-RIR values.
func TestParseFractionalRIR(t *testing.T) {
	in := "\"A\";\"2026-01-01 10:00 h\";\"0:30 hr\"\n\"1. Row · Cable · 10 reps\"\n1;50;10;0,5\n"
	sessions, err := Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := sessions[0].Exercises[0].Sets[0].RIR; got != 0.5 {
		t.Errorf("RIR = %v, want 0.5", got)
	}
}

// TestParseEmpty verifies empty input yields no sessions.
func TestParseEmpty(t *testing.T) {
	sessions, err := Parse(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(sessions) != 0 {
		t.Errorf("sessions = %d, want 0", len(sessions))
	}
}

// TestParseOrphans verifies exercises and sets outside their parent fail.
func TestParseOrphans(t *testing.T) {
	for _, in := range []string{
		"\"1. Row · Cable · 10 reps\"\n",
		"\"A\";\"2026-01-01 10:00 h\";\"0:30 hr\"\n1;50;10;1\n",
	} {
		if _, err := Parse(strings.NewReader(in)); err == nil {
			t.Errorf("Parse(%q): expected error", in)
		}
	}
}

// TestSniff verifies export detection by the first non-blank line.
func TestSniff(t *testing.T) {
	if !Sniff([]byte(sampleCSV)) {
		t.Error("Sniff(sample) = false")
	}
	if Sniff([]byte("date,name,weight_1,reps_1\n")) {
		t.Error("Sniff(workbook csv) = true")
	}
}
