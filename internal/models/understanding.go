package models

// Understanding is the cumulative, human-readable summary of everything
// learned about a prospect within a session. Created empty at session start,
// mutated once per turn by the merger, never deleted during the session.
//
// Scalar contact fields follow fill-in semantics at the persistence layer
// (never overwrite an already-known value on the prospect record); within a
// single merge call they are last-write-wins. The accumulation fields differ
// deliberately: CareNeeds dedupes as an unordered set, FinancingInterests
// dedupes by membership check preserving order, Preferences keeps duplicates.
type Understanding struct {
	BudgetInterest     string   `json:"budget_interest,omitempty"`
	CareNeeds          []string `json:"care_needs,omitempty"`
	Timeline           string   `json:"timeline,omitempty"`
	Preferences        []string `json:"preferences,omitempty"`
	TourInterest       string   `json:"tour_interest,omitempty"`
	TourScheduled      string   `json:"tour_scheduled,omitempty"`
	Name               string   `json:"name,omitempty"`
	Email              string   `json:"email,omitempty"`
	Phone              string   `json:"phone,omitempty"`
	FinancingInterests []string `json:"financing_interests,omitempty"`
}

// Clone returns a deep copy so a turn can merge into a working copy without
// aliasing the caller's slices.
func (u *Understanding) Clone() *Understanding {
	if u == nil {
		return &Understanding{}
	}
	c := *u
	c.CareNeeds = append([]string(nil), u.CareNeeds...)
	c.Preferences = append([]string(nil), u.Preferences...)
	c.FinancingInterests = append([]string(nil), u.FinancingInterests...)
	return &c
}

// IsZero reports whether nothing has been learned yet.
func (u *Understanding) IsZero() bool {
	if u == nil {
		return true
	}
	return u.BudgetInterest == "" && len(u.CareNeeds) == 0 && u.Timeline == "" &&
		len(u.Preferences) == 0 && u.TourInterest == "" && u.TourScheduled == "" &&
		u.Name == "" && u.Email == "" && u.Phone == "" && len(u.FinancingInterests) == 0
}
