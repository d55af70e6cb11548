package spec

import (
	"strings"
	"testing"
)

const goodYAML = `
dist_name: "demo-gauss"
dist_id: 101
family: "continuous"
kind: "gaussian"
params:
  mean: 0.0
  sd: 1.0
outcome:
  min: 0
  max: 0
`

func TestGetDistSettingByYAML(t *testing.T) {
	ds, err := GetDistSettingByYAML([]byte(goodYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ds.DistID != 101 || ds.DistName != "demo-gauss" {
		t.Fatalf("identity fields wrong: %+v", ds)
	}
	if ds.Family != FamilyContinuous || ds.Kind != KindGaussian {
		t.Fatalf("family/kind wrong: %+v", ds)
	}
	if v, ok := ds.Param("sd"); !ok || v != 1.0 {
		t.Fatalf("param sd = %v, %v", v, ok)
	}
}

// TestStrictYAML 拼錯/多寫欄位必須報錯
func TestStrictYAML(t *testing.T) {
	bad := strings.Replace(goodYAML, "dist_name", "dist_nmae", 1)
	if _, err := GetDistSettingByYAML([]byte(bad)); err == nil {
		t.Fatalf("expected strict decode error for unknown field")
	}
}

func TestGetDistSettingByJSON(t *testing.T) {
	data := []byte(`{"dist_name":"coin","dist_id":7,"family":"discrete","kind":"bernoulli","params":{"prob":0.5}}`)
	ds, err := GetDistSettingByJSON(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ds.Kind != KindBernoulli {
		t.Fatalf("kind = %q", ds.Kind)
	}
}

func TestValidation(t *testing.T) {
	cases := []struct {
		name string
		yml  string
	}{
		{"unknown family", `{dist_name: x, dist_id: 1, family: weird, kind: gaussian, params: {mean: 0, sd: 1}}`},
		{"unknown kind", `{dist_name: x, dist_id: 1, family: continuous, kind: cauchy, params: {}}`},
		{"missing param", `{dist_name: x, dist_id: 1, family: continuous, kind: exponential, params: {}}`},
		{"zero rate", `{dist_name: x, dist_id: 1, family: continuous, kind: exponential, params: {rate: 0}}`},
		{"beta shape too small", `{dist_name: x, dist_id: 1, family: continuous, kind: beta, params: {shape1: 1, shape2: 2}}`},
		{"gamma shape below one", `{dist_name: x, dist_id: 1, family: continuous, kind: gamma, params: {rate: 1, shape: 0.5}}`},
		{"prob out of range", `{dist_name: x, dist_id: 1, family: discrete, kind: bernoulli, params: {prob: 1.2}}`},
		{"fractional trials", `{dist_name: x, dist_id: 1, family: discrete, kind: binomial, params: {trials: 2.5, prob: 0.5}}`},
		{"inverted outcome", `{dist_name: x, dist_id: 1, family: discrete, kind: uniform, outcome: {min: 5, max: 1}}`},
		{"empty name", `{dist_name: "", dist_id: 1, family: continuous, kind: gaussian, params: {mean: 0, sd: 1}}`},
	}
	for _, c := range cases {
		if _, err := GetDistSettingByYAML([]byte(c.yml)); err == nil {
			t.Errorf("[%s] expected validation error, got nil", c.name)
		}
	}
}

func TestDiscreteUniformOutcome(t *testing.T) {
	yml := `{dist_name: die, dist_id: 2, family: discrete, kind: uniform, outcome: {min: 1, max: 6}}`
	ds, err := GetDistSettingByYAML([]byte(yml))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ds.Outcome.Min != 1 || ds.Outcome.Max != 6 {
		t.Fatalf("outcome = %+v", ds.Outcome)
	}
}
