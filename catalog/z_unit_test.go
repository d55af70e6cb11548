package catalog

import (
	"testing"
	"testing/fstest"

	"github.com/zintix-labs/distlab/spec"
)

const gaussYAML = `
dist_name: "demo-gauss"
dist_id: 1
family: "continuous"
kind: "gaussian"
params:
  mean: 0.0
  sd: 1.0
`

const coinJSON = `{"dist_name":"coin","dist_id":2,"family":"discrete","kind":"bernoulli","params":{"prob":0.5}}`

func newTestFS() fstest.MapFS {
	return fstest.MapFS{
		"gauss.yaml": &fstest.MapFile{Data: []byte(gaussYAML)},
		"coin.json":  &fstest.MapFile{Data: []byte(coinJSON)},
	}
}

func TestRegisterAndLookup(t *testing.T) {
	c, err := New(newTestFS())
	if err != nil {
		t.Fatalf("new catalog: %v", err)
	}
	err = c.Register(
		Entry{DID: 1, Name: "Demo-Gauss", ConfigName: "gauss.yaml"},
		Entry{DID: 2, Name: "coin", ConfigName: "coin.json"},
	)
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	// 名稱查詢不分大小寫
	if _, ok := c.GetByName("DEMO-GAUSS"); !ok {
		t.Fatalf("case-insensitive name lookup failed")
	}
	if ids := c.IDs(); len(ids) != 2 || ids[0] != 1 || ids[1] != 2 {
		t.Fatalf("IDs() = %v", ids)
	}

	ds, err := c.DistSettingById(1)
	if err != nil {
		t.Fatalf("DistSettingById: %v", err)
	}
	if ds.Kind != spec.KindGaussian {
		t.Fatalf("kind = %q", ds.Kind)
	}

	ds, err = c.DistSettingByName("coin")
	if err != nil {
		t.Fatalf("DistSettingByName: %v", err)
	}
	if ds.Kind != spec.KindBernoulli {
		t.Fatalf("kind = %q", ds.Kind)
	}
}

func TestRegisterRejects(t *testing.T) {
	c, _ := New(newTestFS())
	if err := c.Register(Entry{DID: 1, Name: "a", ConfigName: "missing.yaml"}); err == nil {
		t.Errorf("expected error for missing config file")
	}
	if err := c.Register(Entry{DID: 1, Name: "a", ConfigName: "sub/gauss.yaml"}); err == nil {
		t.Errorf("expected error for path-like config name")
	}

	if err := c.Register(Entry{DID: 1, Name: "a", ConfigName: "gauss.yaml"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := c.Register(Entry{DID: 1, Name: "b", ConfigName: "coin.json"}); err == nil {
		t.Errorf("expected duplicate id error")
	}
	if err := c.Register(Entry{DID: 3, Name: "A", ConfigName: "coin.json"}); err == nil {
		t.Errorf("expected duplicate name error")
	}
}

func TestFreeze(t *testing.T) {
	c, _ := New(newTestFS())
	c.Freeze()
	if !c.IsFrozen() {
		t.Fatalf("IsFrozen() = false after Freeze")
	}
	if err := c.Register(Entry{DID: 1, Name: "a", ConfigName: "gauss.yaml"}); err == nil {
		t.Errorf("expected error registering after freeze")
	}
}

func TestFlatFSRequired(t *testing.T) {
	nested := fstest.MapFS{
		"sub/gauss.yaml": &fstest.MapFile{Data: []byte(gaussYAML)},
	}
	if _, err := New(nested); err == nil {
		t.Errorf("expected error for nested config FS")
	}
}

func TestDuplicateAcrossFS(t *testing.T) {
	a := fstest.MapFS{"gauss.yaml": &fstest.MapFile{Data: []byte(gaussYAML)}}
	b := fstest.MapFS{"gauss.yaml": &fstest.MapFile{Data: []byte(gaussYAML)}}
	if _, err := New(a, b); err == nil {
		t.Errorf("expected duplicate config error across FS sources")
	}
}
