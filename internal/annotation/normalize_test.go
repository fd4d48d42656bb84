package annotation

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"framextract/internal/failures"
)

const header = "Number\tFilenameLeft\tFrameLeft\tFilenameRight\tFrameRight\tLength\tFamily\tGenus\tSpecies\n"

func parseTSV(t *testing.T, body string) *Table {
	t.Helper()
	table, err := Parse(strings.NewReader(header+body), '\t')
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return table
}

func TestNormalizeSubstitutesPlaceholders(t *testing.T) {
	table := parseTSV(t, "1\tcamA.mp4\t50\tcamB.mp4\t75\t120\tNA\t\tnan\n")
	set, err := Normalize(table, Options{KeyColumn: DefaultKeyColumn})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if len(set.Left) != 1 || len(set.Right) != 1 {
		t.Fatalf("expected one group per channel, got %+v", set)
	}
	rec := set.Left[0].Records[0]
	want := Metadata{Family: "fam", Genus: "gen", Species: "sp", Length: "120", Key: "1"}
	if rec.Meta != want {
		t.Fatalf("meta = %+v, want %+v", rec.Meta, want)
	}
	if rec.Video != "camA.mp4" || rec.Frame != 50 {
		t.Fatalf("unexpected left record %+v", rec)
	}
	if r := set.Right[0].Records[0]; r.Video != "camB.mp4" || r.Frame != 75 || r.Meta != want {
		t.Fatalf("unexpected right record %+v", r)
	}
	if set.Left[0].Channel != Left || set.Right[0].Channel != Right {
		t.Fatal("channels not tagged")
	}
}

func TestNormalizeMissingLength(t *testing.T) {
	table := parseTSV(t, "1\tcamA.mp4\t50\tcamB.mp4\t75\tNA\tLabridae\tLabrus\tbergylta\n")
	set, err := Normalize(table, Options{})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if got := set.Left[0].Records[0].Meta.Length; got != PlaceholderLength {
		t.Fatalf("length = %q", got)
	}
}

func TestNormalizeMissingColumns(t *testing.T) {
	table, err := Parse(strings.NewReader("FilenameLeft,FrameLeft,Length\na.mp4,1,10\n"), ',')
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	_, err = Normalize(table, Options{KeyColumn: "Number"})
	if !errors.Is(err, failures.ErrSchema) {
		t.Fatalf("expected schema error, got %v", err)
	}
	for _, col := range []string{"FilenameRight", "FrameRight", "Family", "Genus", "Species", "Number"} {
		if !strings.Contains(err.Error(), col) {
			t.Fatalf("expected %s named in %q", col, err.Error())
		}
	}
}

func TestNormalizeKeyColumnCanBeDisabled(t *testing.T) {
	table, err := Parse(strings.NewReader(strings.TrimPrefix(header, "Number\t")+"a.mp4\t1\tb.mp4\t2\t10\tF\tG\tS\n"), '\t')
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, err := Normalize(table, Options{KeyColumn: "Number"}); !errors.Is(err, failures.ErrSchema) {
		t.Fatalf("expected schema error with key column, got %v", err)
	}
	if _, err := Normalize(table, Options{}); err != nil {
		t.Fatalf("expected success without key column, got %v", err)
	}
}

func TestNormalizeFrameValues(t *testing.T) {
	tests := []struct {
		frame   string
		want    int
		wantErr bool
	}{
		{"50", 50, false},
		{"50.0", 50, false},
		{" 7 ", 7, false},
		{"50.5", 0, true},
		{"-1", 0, true},
		{"abc", 0, true},
		{"inf", 0, true},
		{"2147483647", 2147483647, false},
		{"2147483648", 0, true},
		{"9223372036854775807", 0, true},
		{"3e9", 0, true},
	}
	for _, tt := range tests {
		table := parseTSV(t, "1\tcamA.mp4\t"+tt.frame+"\tcamB.mp4\t1\t10\tF\tG\tS\n")
		set, err := Normalize(table, Options{})
		if tt.wantErr {
			if !errors.Is(err, failures.ErrSchema) {
				t.Fatalf("frame %q: expected schema error, got %v", tt.frame, err)
			}
			if !strings.Contains(err.Error(), "FrameLeft") || !strings.Contains(err.Error(), "line 2") {
				t.Fatalf("frame %q: expected line and column in %q", tt.frame, err.Error())
			}
			continue
		}
		if err != nil {
			t.Fatalf("frame %q: %v", tt.frame, err)
		}
		if got := set.Left[0].Records[0].Frame; got != tt.want {
			t.Fatalf("frame %q = %d, want %d", tt.frame, got, tt.want)
		}
	}
}

func TestNormalizeOneSidedRows(t *testing.T) {
	table := parseTSV(t, "1\tcamA.mp4\t50\tNA\tNA\t10\tF\tG\tS\n")
	set, err := Normalize(table, Options{})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if len(set.Left) != 1 || len(set.Right) != 0 {
		t.Fatalf("expected left only, got %+v", set)
	}

	table = parseTSV(t, "1\tcamA.mp4\t50\tcamB.mp4\t\t10\tF\tG\tS\n")
	if _, err := Normalize(table, Options{}); !errors.Is(err, failures.ErrSchema) {
		t.Fatalf("expected schema error for half-filled channel, got %v", err)
	}
}

func TestNormalizeGroupsSortedByVideo(t *testing.T) {
	table := parseTSV(t, ""+
		"1\tzeta.mp4\t10\tR1.mp4\t1\t10\tF\tG\tS\n"+
		"2\talpha.mp4\t30\tR1.mp4\t2\t10\tF\tG\tS\n"+
		"3\tzeta.mp4\t5\tR0.mp4\t3\t10\tF\tG\tS\n")
	set, err := Normalize(table, Options{})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	var videos []string
	for _, g := range set.Groups(Left) {
		videos = append(videos, g.Video)
	}
	if !reflect.DeepEqual(videos, []string{"alpha.mp4", "zeta.mp4"}) {
		t.Fatalf("left order = %v", videos)
	}
	if got := set.Left[1].Frames(); !reflect.DeepEqual(got, []int{10, 5}) {
		t.Fatalf("expected table order within group, got %v", got)
	}
	if set.Groups(Right)[0].Video != "R0.mp4" {
		t.Fatalf("right order = %+v", set.Right)
	}
}

func TestGroupDeduplicate(t *testing.T) {
	g := Group{Video: "camA.mp4", Records: []Record{
		{Frame: 50}, {Frame: 60}, {Frame: 50}, {Frame: 70}, {Frame: 60}, {Frame: 50},
	}}
	kept, dropped := g.Deduplicate()
	if len(kept) != 1 || kept[0].Frame != 70 {
		t.Fatalf("kept = %+v", kept)
	}
	if !reflect.DeepEqual(dropped, []int{50, 60}) {
		t.Fatalf("dropped = %v", dropped)
	}

	kept, dropped = Group{Records: []Record{{Frame: 1}, {Frame: 2}}}.Deduplicate()
	if len(kept) != 2 || dropped != nil {
		t.Fatalf("unexpected dedup of unique group: %v %v", kept, dropped)
	}
}

func TestIsMissing(t *testing.T) {
	for _, v := range []string{"", " ", "NA", "NaN", "nan", "null", "None", "<NA>", "#N/A"} {
		if !IsMissing(v) {
			t.Fatalf("expected %q missing", v)
		}
	}
	for _, v := range []string{"0", "Labridae", "na"} {
		if IsMissing(v) {
			t.Fatalf("expected %q present", v)
		}
	}
}
