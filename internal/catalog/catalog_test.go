package catalog

import "testing"

func TestNewSeedsBuiltins(t *testing.T) {
	tests := []struct {
		name       string
		superclass string
	}{
		{"Obj", "$"},
		{"Int", "Obj"},
		{"Boolean", "Obj"},
		{"String", "Obj"},
		{"Nothing", "Obj"},
	}

	c := New()
	for _, tt := range tests {
		rec, ok := c.Lookup(tt.name)
		if !ok {
			t.Fatalf("%s: expected builtin to be defined", tt.name)
		}
		if rec.Superclass != tt.superclass {
			t.Errorf("%s: superclass = %q, want %q", tt.name, rec.Superclass, tt.superclass)
		}
	}
}

func TestIntConstructorTakesNoArgs(t *testing.T) {
	c := New()
	rec, _ := c.Lookup("Int")
	args := rec.MethodArgs["$constructor"]
	if len(args) != 0 {
		t.Errorf("Int.$constructor args = %v, want empty", args)
	}
}

func TestDefineOverwrites(t *testing.T) {
	c := New()
	c.Define("Point", &ClassRecord{
		Superclass:    "Obj",
		FieldList:     map[string]string{"x": "Int", "y": "Int"},
		MethodReturns: map[string]string{"$constructor": "Point"},
		MethodArgs:    map[string][]string{"$constructor": {"Int", "Int"}},
	})
	rec, ok := c.Lookup("Point")
	if !ok {
		t.Fatal("expected Point to be defined")
	}
	if len(rec.FieldList) != 2 {
		t.Errorf("FieldList = %v, want 2 entries", rec.FieldList)
	}
}

func TestLookupUnknownClass(t *testing.T) {
	c := New()
	if _, ok := c.Lookup("Nope"); ok {
		t.Error("expected Nope to be undefined")
	}
}

func TestIsBuiltin(t *testing.T) {
	for _, name := range []string{"Obj", "Int", "Boolean", "String", "Nothing"} {
		if !IsBuiltin(name) {
			t.Errorf("IsBuiltin(%q) = false, want true", name)
		}
	}
	if IsBuiltin("Point") {
		t.Error("IsBuiltin(\"Point\") = true, want false")
	}
}
