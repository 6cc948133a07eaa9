package services

import (
	"fmt"
	"sort"
	"time"

	"police_flow_app_go/models"

	"gorm.io/gorm"
)

// RewardUnit is the reward paid per ranking point
const RewardUnit int64 = 20_000_000

// CalculateRewardAmount is severityWeight(severity) * days * RewardUnit
func CalculateRewardAmount(severity string, days int) int64 {
	if days <= 0 {
		return 0
	}
	return int64(models.SeverityWeight(severity)) * int64(days) * RewardUnit
}

// DaysUnderInvestigation counts days since surveillance started; zero without a start date
func DaysUnderInvestigation(s *models.Suspect, now time.Time) int {
	if s.SurveillanceStartDate == nil {
		return 0
	}
	return daysBetween(*s.SurveillanceStartDate, now)
}

// Reclassify returns the status the suspect should have at now. A suspect still under
// investigation for more than the threshold is escalated to severe surveillance.
func Reclassify(s *models.Suspect, now time.Time) string {
	if s.Status == models.SuspectStatusUnderInvestigation &&
		DaysUnderInvestigation(s, now) > models.SevereSurveillanceThresholdDays {
		return models.SuspectStatusUnderSevereSurveillance
	}
	return s.Status
}

// SuspectRank is the cross-case ranking of one person
type SuspectRank struct {
	MaxDays      int   `json:"max_days"`
	MaxSeverity  int   `json:"max_severity"`
	Ranking      int   `json:"ranking"`
	RewardAmount int64 `json:"reward_amount"`
}

type rankRow struct {
	SurveillanceStartDate *time.Time
	Severity              string
	CaseStatus            string
}

// RankSuspect scans every suspect row sharing the suspect's identity key. Severity counts
// across all of that person's cases; days count only across cases not Resolved or Closed.
func RankSuspect(db *gorm.DB, suspect *models.Suspect, now time.Time) (SuspectRank, error) {
	query := db.Table("suspects").
		Select("suspects.surveillance_start_date, cases.severity, cases.status AS case_status").
		Joins("JOIN cases ON cases.id = suspects.case_id AND cases.deleted_at IS NULL").
		Where("suspects.deleted_at IS NULL")

	switch kind, value := suspect.IdentityKey(); kind {
	case models.IdentityKindUser:
		query = query.Where("suspects.user_id = ?", value)
	case models.IdentityKindNationalID:
		query = query.Where("suspects.national_id = ?", value)
	default:
		query = query.Where("suspects.id = ?", value)
	}

	var rows []rankRow
	if err := query.Scan(&rows).Error; err != nil {
		return SuspectRank{}, fmt.Errorf("failed to rank suspect: %w", err)
	}

	var rank SuspectRank
	for _, row := range rows {
		if w := models.SeverityWeight(row.Severity); w > rank.MaxSeverity {
			rank.MaxSeverity = w
		}
		if !models.IsActiveCaseStatus(row.CaseStatus) || row.SurveillanceStartDate == nil {
			continue
		}
		if d := daysBetween(*row.SurveillanceStartDate, now); d > rank.MaxDays {
			rank.MaxDays = d
		}
	}
	rank.Ranking = rank.MaxDays * rank.MaxSeverity
	rank.RewardAmount = int64(rank.Ranking) * RewardUnit
	return rank, nil
}

// MostWantedEntry is one person on the most-wanted list
type MostWantedEntry struct {
	SuspectID    string      `json:"suspect_id"`
	Name         string      `json:"name"`
	NationalID   string      `json:"national_id,omitempty"`
	Status       string      `json:"status"`
	CaseIDs      []string    `json:"case_ids"`
	Rank         SuspectRank `json:"rank"`
	Ranking      int         `json:"ranking"`
	RewardAmount int64       `json:"reward_amount"`
}

// ListMostWanted ranks every suspect still at large, one entry per identity, highest first
func (w *Workflow) ListMostWanted(limit int) ([]MostWantedEntry, error) {
	var suspects []models.Suspect
	err := w.DB.Preload("User").
		Where("status IN ?", []string{
			models.SuspectStatusUnderInvestigation,
			models.SuspectStatusUnderSevereSurveillance,
		}).
		Order("created_at ASC").
		Find(&suspects).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list wanted suspects: %w", err)
	}

	now := w.Clock.Now()
	byIdentity := make(map[string]*MostWantedEntry)
	var order []string
	for i := range suspects {
		s := &suspects[i]
		if err := w.refreshSuspect(w.DB, s); err != nil {
			return nil, err
		}
		kind, value := s.IdentityKey()
		key := kind + ":" + value
		if entry, ok := byIdentity[key]; ok {
			entry.CaseIDs = append(entry.CaseIDs, s.CaseID)
			continue
		}
		rank, err := RankSuspect(w.DB, s, now)
		if err != nil {
			return nil, err
		}
		byIdentity[key] = &MostWantedEntry{
			SuspectID:    s.ID,
			Name:         s.DisplayName(),
			NationalID:   s.NationalID,
			Status:       s.Status,
			CaseIDs:      []string{s.CaseID},
			Rank:         rank,
			Ranking:      rank.Ranking,
			RewardAmount: rank.RewardAmount,
		}
		order = append(order, key)
	}

	entries := make([]MostWantedEntry, 0, len(order))
	for _, key := range order {
		entries = append(entries, *byIdentity[key])
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Ranking > entries[j].Ranking })

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}
