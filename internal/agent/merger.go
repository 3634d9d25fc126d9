package agent

import (
	"fmt"

	"github.com/acmeliving/sophie-go/internal/models"
)

// ApplyEvents folds enrichment events into the understanding, in event
// order. Within one call a later event may overwrite a field an earlier
// event set; the accumulation fields (care_needs, preferences,
// financing_interests) append instead. Each field keeps its own duplicate
// policy: care_needs dedupes as a set, financing_interests dedupes with a
// membership check preserving insertion order, preferences does not dedupe
// at all.
func ApplyEvents(u *models.Understanding, events []models.EnrichmentEvent) {
	for _, ev := range events {
		data := ev.Data

		switch ev.Type {
		case models.EventBudgetInquiry:
			// Tracks that they asked, never infers a number.
			u.BudgetInterest = "Inquired about pricing"

		case models.EventBudgetMentioned:
			if data.Range != "" {
				u.BudgetInterest = data.Range
			} else if data.Max != 0 {
				u.BudgetInterest = fmt.Sprintf("Up to $%d/month", data.Max)
			}

		case models.EventCareNeedExpressed:
			if data.Condition != "" {
				u.CareNeeds = append(u.CareNeeds, models.TitleWords(data.Condition))
			}
			if data.CareLevel != "" {
				u.CareNeeds = append(u.CareNeeds, models.HumanizeLabel(data.CareLevel))
			}
			u.CareNeeds = dedupe(u.CareNeeds)

		case models.EventTimelineShared:
			urgency := data.Urgency
			if urgency == "" {
				urgency = "Exploring options"
			}
			u.Timeline = models.TitleWords(urgency)

		case models.EventPreferenceStated:
			if data.Category != "" {
				u.Preferences = append(u.Preferences,
					fmt.Sprintf("%s: %s", models.HumanizeLabel(data.Category), data.Detail))
			}

		case models.EventTourRequested:
			u.TourInterest = "High - wants to visit"

		case models.EventTourScheduled:
			switch {
			case data.Date != "" && data.Time != "":
				u.TourScheduled = fmt.Sprintf("%s at %s", data.Date, data.Time)
			case data.Date != "":
				u.TourScheduled = data.Date
			case data.Time != "":
				u.TourScheduled = data.Time
			}

		case models.EventContactShared:
			if data.Name != "" {
				u.Name = data.Name
			}
			if data.Email != "" {
				u.Email = data.Email
			}
			if data.Phone != "" {
				u.Phone = data.Phone
			}

		case models.EventFinancingInquiry:
			financingType := data.FinancingType
			if financingType == "" {
				financingType = "Payment options"
			}
			if !contains(u.FinancingInterests, financingType) {
				u.FinancingInterests = append(u.FinancingInterests, financingType)
			}

		case models.EventRoomTypeInterest:
			// Tracked as a stored event only; nothing merges into the
			// understanding yet.
		}
	}
}

// dedupe removes duplicates keeping the first occurrence of each value.
func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := values[:0]
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
