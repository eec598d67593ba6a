package types

// TenderRecord is a single row scraped from the portal's results table.
// All fields are kept as the free text shown on the page; in particular the
// amount is compared as an opaque string, never parsed.
type TenderRecord struct {
	ID          string
	Description string
	Published   string
	Status      string
	Awardee     string
	Amount      string
}

type EventKind int

const (
	EventNewTender EventKind = iota
	EventFieldChange
)

// FieldDiff is one changed field on a previously known tender.
type FieldDiff struct {
	Field string
	Old   string
	New   string
}

// ChangeEvent is produced by the reconciliation engine and consumed by the
// notifier within the same run; it is never persisted. A field-change event
// carries every differing field for one record in Diffs.
type ChangeEvent struct {
	Kind        EventKind
	ID          string
	Description string
	Published   string
	Diffs       []FieldDiff
}

// IntegrityReport classifies one run's observations against the snapshot.
// Missing holds identifiers the portal no longer lists; ExtraRemoved holds
// observed identifiers absent from the snapshot, which should be impossible
// by construction and signals a defect. Slices are sorted.
type IntegrityReport struct {
	Observed     []string
	Missing      []string
	ExtraRemoved []string
}

func (r IntegrityReport) Clean() bool {
	return len(r.Missing) == 0 && len(r.ExtraRemoved) == 0
}
