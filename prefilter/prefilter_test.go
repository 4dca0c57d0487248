package prefilter

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRequiredLiterals(t *testing.T) {
	tests := map[string]struct {
		pattern string
		want    []string
	}{
		"plain literal":       {".*error", []string{"error"}},
		"split by wildcard":   {".*foo.bar", []string{"foo", "bar"}},
		"starred byte elided": {".*fo*od", []string{"od"}},
		"optional byte":       {".*ab?cd", []string{"cd"}},
		"group skipped":       {".*(ab)cd", []string{"cd"}},
		"nested group":        {".*(a(b)c)de", []string{"de"}},
		"class breaks run":    {".*ab[xy]cd", []string{"ab", "cd"}},
		"alternation bails":   {".*abc|def", nil},
		"negation bails":      {".*abc{d}", nil},
		"too short":           {".*a.b", nil},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if d := cmp.Diff(tt.want, requiredLiterals(tt.pattern)); d != "" {
				t.Errorf("requiredLiterals(%q) diff (-want +got):\n%s", tt.pattern, d)
			}
		})
	}
}

func TestFilterSkip(t *testing.T) {
	f := FromPattern(".*error")
	if f == nil {
		t.Fatal("FromPattern returned no filter")
	}
	if f.Skip([]byte("an error occurred")) {
		t.Error("skipped a line containing the literal")
	}
	if !f.Skip([]byte("all is well")) {
		t.Error("kept a line that cannot match")
	}
}

func TestNilFilterSkipsNothing(t *testing.T) {
	var f *Filter
	if f.Skip([]byte("anything")) {
		t.Error("nil filter must not skip")
	}
	if f := FromPattern(".*a|b"); f != nil {
		t.Error("alternation must yield no filter")
	}
}
