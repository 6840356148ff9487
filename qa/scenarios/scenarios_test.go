package scenarios

import (
	"os"
	"path/filepath"
	"testing"
)

func TestScenario(t *testing.T) {
	files, err := filepath.Glob("testdata/*.yaml")
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(files) == 0 {
		t.Fatal("no scenario files found")
	}
	for _, f := range files {
		sc, err := Load(f)
		if err != nil {
			t.Fatalf("load %s: %v", f, err)
		}
		t.Run(sc.Name, func(t *testing.T) {
			RunScenario(t, sc)
		})
	}
}

func TestLoadInvalid(t *testing.T) {
	if _, err := Load("no-file.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
	tmp, err := os.CreateTemp(t.TempDir(), "bad*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tmp.WriteString(":"); err != nil {
		t.Fatal(err)
	}
	if err := tmp.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(tmp.Name()); err == nil {
		t.Fatal("expected unmarshal error")
	}
}

func TestDefConversions(t *testing.T) {
	w := WorkloadDef{Model: "bimodal", ShortMicros: 2, LongMicros: 50, LongFraction: 0.1, Tenants: 4, Seed: 7}
	wc := w.ToConfig()
	if wc.Model != "bimodal" || wc.LongMicros != 50 || wc.Tenants != 4 {
		t.Fatalf("workload conversion lost fields: %+v", wc)
	}
	d := DispatchDef{Policy: "two-tier", QuantumMicros: 5}
	dc := d.ToConfig()
	if dc.Policy != "two-tier" || dc.QuantumMicros != 5 {
		t.Fatalf("dispatch conversion lost fields: %+v", dc)
	}
}
