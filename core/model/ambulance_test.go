package model

import "testing"

func TestEquipmentList(t *testing.T) {
	e := &Equipment{Defibrillator: true, Oxygen: true, Medications: []string{"epinephrine", "aspirin"}}
	items := e.List()
	if len(items) != 4 {
		t.Fatalf("expected 4 items got %v", items)
	}
	if items[0] != "defibrillator" || items[1] != "oxygen" {
		t.Fatalf("unexpected ordering %v", items)
	}
}

func TestEquipmentListNil(t *testing.T) {
	var e *Equipment
	if items := e.List(); items != nil {
		t.Fatalf("expected nil got %v", items)
	}
}
