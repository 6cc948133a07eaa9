package services

import (
	"context"
	"errors"
	"fmt"

	"police_flow_app_go/models"

	"golang.org/x/sync/errgroup"
)

var dossierRoles = []string{models.RoleJudge, models.RoleCaptain, models.RolePoliceChief}

// SuspectDossier is one suspect with everything recorded about them
type SuspectDossier struct {
	models.Suspect
	GuiltScores    []models.GuiltScore      `json:"guilt_scores"`
	Decisions      []models.CaptainDecision `json:"decisions"`
	Interrogations []models.Interrogation   `json:"interrogations"`
}

// Dossier is the full case file handed to the court
type Dossier struct {
	Case       *models.Case       `json:"case"`
	Complaints []models.Complaint `json:"complaints"`
	Evidence   []models.Evidence  `json:"evidence"`
	Suspects   []SuspectDossier   `json:"suspects"`
	Trial      *models.Trial      `json:"trial,omitempty"`
	BailFines  []models.BailFine  `json:"bail_fines"`
}

// BuildDossier assembles the case file. Judges may only read cases they preside over.
func (w *Workflow) BuildDossier(ctx context.Context, caller Caller, caseID string) (*Dossier, error) {
	if err := caller.require("read case dossiers", dossierRoles...); err != nil {
		return nil, err
	}
	c, err := w.GetCase(caller, caseID)
	if err != nil {
		return nil, err
	}

	var trial *models.Trial
	if t, err := w.caseTrial(caseID); err == nil {
		trial = t
	} else if !errors.Is(err, ErrTrialNotFound) {
		return nil, err
	}
	if !caller.HasAny(models.RoleCaptain, models.RolePoliceChief) {
		if trial == nil || trial.JudgeID == nil || *trial.JudgeID != caller.UserID {
			return nil, deny("read the dossier of a case you do not preside over")
		}
	}

	d := &Dossier{Case: c, Trial: trial}
	var suspects []models.Suspect

	g, gctx := errgroup.WithContext(ctx)
	db := w.DB.WithContext(gctx)
	g.Go(func() error {
		return db.Preload("Reviews").Where("case_id = ?", caseID).Order("created_at ASC").Find(&d.Complaints).Error
	})
	g.Go(func() error {
		return db.Where("case_id = ?", caseID).Order("created_at ASC").Find(&d.Evidence).Error
	})
	g.Go(func() error {
		return db.Preload("User").Where("case_id = ?", caseID).Order("created_at ASC, id ASC").Find(&suspects).Error
	})
	g.Go(func() error {
		return db.Where("case_id = ?", caseID).Order("created_at ASC").Find(&d.BailFines).Error
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to build dossier: %w", err)
	}

	d.Suspects = make([]SuspectDossier, len(suspects))
	g, gctx = errgroup.WithContext(ctx)
	db = w.DB.WithContext(gctx)
	for i := range suspects {
		i := i
		if err := w.refreshSuspect(w.DB, &suspects[i]); err != nil {
			return nil, err
		}
		d.Suspects[i].Suspect = suspects[i]
		id := suspects[i].ID
		g.Go(func() error {
			if err := db.Where("suspect_id = ?", id).Order("created_at ASC").Find(&d.Suspects[i].GuiltScores).Error; err != nil {
				return err
			}
			if err := db.Where("suspect_id = ?", id).Order("decided_at ASC").Find(&d.Suspects[i].Decisions).Error; err != nil {
				return err
			}
			return db.Where("suspect_id = ?", id).Order("conducted_at ASC").Find(&d.Suspects[i].Interrogations).Error
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to build dossier: %w", err)
	}
	return d, nil
}
