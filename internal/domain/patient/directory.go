package patient

import "strings"

// Directory is an in-memory snapshot of a fetched patient collection. It
// isolates the "load everything, filter client-side" behavior behind a small
// query surface so a server-side search can replace it later without
// touching callers.
type Directory struct {
	records []Patient
}

func NewDirectory(records []Patient) *Directory {
	return &Directory{records: records}
}

func (d *Directory) Len() int { return len(d.records) }

// All returns the current snapshot in fetch order.
func (d *Directory) All() []Patient {
	out := make([]Patient, len(d.records))
	copy(out, d.records)
	return out
}

// Filter returns the records whose searchable text contains q,
// case-insensitively. The searchable text concatenates display name, gender
// identity, phone numbers, UPID and MRN. An empty query matches everything.
func (d *Directory) Filter(q string) []Patient {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return d.All()
	}
	var out []Patient
	for _, p := range d.records {
		if strings.Contains(searchText(&p), q) {
			out = append(out, p)
		}
	}
	return out
}

// Remove drops every record whose ID or UPID equals id and returns how many
// rows were removed. Used to reconcile the snapshot after a successful
// delete without a refetch.
func (d *Directory) Remove(id string) int {
	kept := d.records[:0]
	removed := 0
	for _, p := range d.records {
		if p.ID == id || p.UPID == id {
			removed++
			continue
		}
		kept = append(kept, p)
	}
	d.records = kept
	return removed
}

func searchText(p *Patient) string {
	return strings.ToLower(strings.Join([]string{
		p.DisplayName(),
		p.GenderIdentity,
		p.Contact.Phone,
		p.Contact.MobilePhone,
		p.UPID,
		p.MRN,
	}, " "))
}
