package patient

import "testing"

func sampleRecords() []Patient {
	return []Patient{
		{ID: "1", UPID: "UP-001", MRN: "M001", GivenName: "Asha", FamilyName: "Smith", GenderIdentity: GenderFemale, Contact: Contact{MobilePhone: "9876543210"}},
		{ID: "2", UPID: "UP-002", MRN: "M002", GivenName: "Ravi", FamilyName: "Kharkongor", GenderIdentity: GenderMale, Contact: Contact{Phone: "0364-222111"}},
		{ID: "3", UPID: "UP-003", MRN: "M003", GivenName: "John", FamilyName: "Smithson", GenderIdentity: GenderMale},
	}
}

func TestDirectory_FilterEmptyQuery(t *testing.T) {
	d := NewDirectory(sampleRecords())
	if got := d.Filter(""); len(got) != 3 {
		t.Fatalf("empty query: got %d records, want 3", len(got))
	}
	if got := d.Filter("   "); len(got) != 3 {
		t.Fatalf("blank query: got %d records, want 3", len(got))
	}
}

func TestDirectory_FilterCaseInsensitive(t *testing.T) {
	d := NewDirectory(sampleRecords())
	upper := d.Filter("Smith")
	lower := d.Filter("smith")
	if len(upper) != len(lower) {
		t.Fatalf("case changed result count: %d vs %d", len(upper), len(lower))
	}
	for i := range upper {
		if upper[i].ID != lower[i].ID {
			t.Errorf("result %d differs: %s vs %s", i, upper[i].ID, lower[i].ID)
		}
	}
	// "Smith" is a substring of both Smith and Smithson.
	if len(upper) != 2 {
		t.Errorf("got %d matches, want 2", len(upper))
	}
}

func TestDirectory_FilterAcrossFields(t *testing.T) {
	d := NewDirectory(sampleRecords())
	cases := []struct {
		q    string
		want string
	}{
		{"UP-002", "2"},
		{"m003", "3"},
		{"9876543210", "1"},
		{"kharkong", "2"},
	}
	for _, tc := range cases {
		got := d.Filter(tc.q)
		if len(got) != 1 || got[0].ID != tc.want {
			t.Errorf("Filter(%q) = %v, want single record %s", tc.q, got, tc.want)
		}
	}
}

func TestDirectory_FilterIdempotent(t *testing.T) {
	d := NewDirectory(sampleRecords())
	first := d.Filter("male")
	second := d.Filter("male")
	if len(first) != len(second) {
		t.Fatalf("filter is not stable: %d vs %d", len(first), len(second))
	}
}

func TestDirectory_RemoveExactlyOne(t *testing.T) {
	d := NewDirectory(sampleRecords())
	if n := d.Remove("2"); n != 1 {
		t.Fatalf("Remove(2) = %d, want 1", n)
	}
	if d.Len() != 2 {
		t.Fatalf("Len() = %d after remove, want 2", d.Len())
	}
	for _, p := range d.All() {
		if p.ID == "2" {
			t.Error("removed record still present")
		}
	}
}

func TestDirectory_RemoveByUPID(t *testing.T) {
	d := NewDirectory(sampleRecords())
	if n := d.Remove("UP-003"); n != 1 {
		t.Fatalf("Remove(UP-003) = %d, want 1", n)
	}
}

func TestDirectory_RemoveMissing(t *testing.T) {
	d := NewDirectory(sampleRecords())
	if n := d.Remove("nope"); n != 0 {
		t.Fatalf("Remove(nope) = %d, want 0", n)
	}
	if d.Len() != 3 {
		t.Fatalf("Len() changed on no-op remove: %d", d.Len())
	}
}
