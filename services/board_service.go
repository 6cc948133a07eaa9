package services

import (
	"encoding/json"
	"fmt"

	"police_flow_app_go/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ConnectionInput links two evidence items on a case board
type ConnectionInput struct {
	SourceEvidenceID string `json:"source_evidence_id"`
	TargetEvidenceID string `json:"target_evidence_id"`
	ConnectionType   string `json:"connection_type"`
	Notes            string `json:"notes"`
}

func ownsBoard(caller Caller, b *models.DetectiveBoard) bool {
	return b.DetectiveID != nil && *b.DetectiveID == caller.UserID
}

func (w *Workflow) loadBoard(db *gorm.DB, caseID string) (*models.DetectiveBoard, error) {
	var b models.DetectiveBoard
	err := db.Preload("Connections", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC")
	}).First(&b, "case_id = ?", caseID).Error
	if err != nil {
		return nil, notFoundOr(err, ErrBoardNotFound, "detective board")
	}
	return &b, nil
}

// OpenBoard returns the caller's board for a visible case, creating it on first use.
// The flag reports whether this call created it.
func (w *Workflow) OpenBoard(caller Caller, caseID string) (*models.DetectiveBoard, bool, error) {
	if err := caller.require("open detective boards", models.RoleDetective); err != nil {
		return nil, false, err
	}
	c, err := w.GetCase(caller, caseID)
	if err != nil {
		return nil, false, err
	}

	board := &models.DetectiveBoard{
		CaseID:           c.ID,
		DetectiveID:      strPtr(caller.UserID),
		LastModifiedByID: strPtr(caller.UserID),
	}
	res := w.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "case_id"}},
		DoNothing: true,
	}).Create(board)
	if res.Error != nil {
		return nil, false, fmt.Errorf("failed to create detective board: %w", res.Error)
	}
	created := res.RowsAffected == 1

	stored, err := w.loadBoard(w.DB, c.ID)
	if err != nil {
		return nil, false, err
	}
	if !ownsBoard(caller, stored) {
		return nil, false, ErrBoardOwnedByOther
	}
	if created {
		w.audit(caller, models.AuditActionCreate, "DetectiveBoard", stored.ID, c.CaseNumber, "Detective board opened", nil, nil)
	}
	return stored, created, nil
}

// GetBoard loads the board of a visible case. Detectives only see their own board;
// sergeants see any board they review.
func (w *Workflow) GetBoard(caller Caller, caseID string) (*models.DetectiveBoard, error) {
	if err := caller.require("view detective boards", models.RoleDetective, models.RoleSergeant); err != nil {
		return nil, err
	}
	c, err := w.GetCase(caller, caseID)
	if err != nil {
		return nil, err
	}
	b, err := w.loadBoard(w.DB, c.ID)
	if err != nil {
		return nil, err
	}
	if !caller.Has(models.RoleSergeant) && !ownsBoard(caller, b) {
		return nil, ErrBoardNotFound
	}
	return b, nil
}

// UpdateBoardLayout replaces the stored layout of the caller's board
func (w *Workflow) UpdateBoardLayout(caller Caller, caseID string, layout json.RawMessage) (*models.DetectiveBoard, error) {
	if err := caller.require("edit detective boards", models.RoleDetective); err != nil {
		return nil, err
	}
	var obj map[string]interface{}
	if err := json.Unmarshal(layout, &obj); err != nil || obj == nil {
		return nil, ErrInvalidBoardLayout
	}
	c, err := w.GetCase(caller, caseID)
	if err != nil {
		return nil, err
	}

	b, err := w.loadBoard(w.DB, c.ID)
	if err != nil {
		return nil, err
	}
	if !ownsBoard(caller, b) {
		return nil, ErrBoardNotFound
	}
	err = w.DB.Model(&models.DetectiveBoard{}).Where("id = ?", b.ID).Updates(map[string]interface{}{
		"board_data":          datatypes.JSON(layout),
		"last_modified_by_id": caller.UserID,
		"updated_at":          w.Clock.Now(),
	}).Error
	if err != nil {
		return nil, fmt.Errorf("failed to update detective board: %w", err)
	}

	w.audit(caller, models.AuditActionUpdate, "DetectiveBoard", b.ID, c.CaseNumber, "Board layout saved", nil, nil)
	return w.loadBoard(w.DB, c.ID)
}

// ConnectEvidence links two evidence items of the case on the caller's board.
// Reconnecting a pair replaces its type and notes; the flag reports a new link.
func (w *Workflow) ConnectEvidence(caller Caller, caseID string, input ConnectionInput) (*models.BoardConnection, bool, error) {
	if err := caller.require("edit detective boards", models.RoleDetective); err != nil {
		return nil, false, err
	}
	if input.ConnectionType == "" {
		input.ConnectionType = models.ConnectionTypeRelatedTo
	}
	if !models.IsValidConnectionType(input.ConnectionType) {
		return nil, false, ErrInvalidConnection
	}
	if input.SourceEvidenceID == "" || input.TargetEvidenceID == "" {
		return nil, false, validationError("source_evidence_id and target_evidence_id are required")
	}
	if input.SourceEvidenceID == input.TargetEvidenceID {
		return nil, false, ErrSelfConnection
	}
	c, err := w.GetCase(caller, caseID)
	if err != nil {
		return nil, false, err
	}

	var conn models.BoardConnection
	created := false
	notes := SanitizeText(input.Notes)
	err = w.DB.Transaction(func(tx *gorm.DB) error {
		b, err := w.loadBoard(tx, c.ID)
		if err != nil {
			return err
		}
		if !ownsBoard(caller, b) {
			return ErrBoardNotFound
		}

		var found int64
		err = tx.Model(&models.Evidence{}).
			Where("id IN ? AND case_id = ?", []string{input.SourceEvidenceID, input.TargetEvidenceID}, c.ID).
			Count(&found).Error
		if err != nil {
			return fmt.Errorf("failed to load evidence: %w", err)
		}
		if found != 2 {
			return ErrEvidenceNotFound
		}

		key := models.BoardConnection{
			BoardID:          b.ID,
			SourceEvidenceID: input.SourceEvidenceID,
			TargetEvidenceID: input.TargetEvidenceID,
		}
		lookup := tx.Where(&key).Limit(1).Find(&conn)
		if lookup.Error != nil {
			return fmt.Errorf("failed to load connection: %w", lookup.Error)
		}
		created = lookup.RowsAffected == 0

		conn = key
		conn.ConnectionType = input.ConnectionType
		conn.Notes = notes
		err = tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "board_id"}, {Name: "source_evidence_id"}, {Name: "target_evidence_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"connection_type", "notes"}),
		}).Create(&conn).Error
		if err != nil {
			return fmt.Errorf("failed to save connection: %w", err)
		}
		var stored models.BoardConnection
		if err := tx.Where(&key).First(&stored).Error; err != nil {
			return fmt.Errorf("failed to reload connection: %w", err)
		}
		conn = stored
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	action := models.AuditActionUpdate
	if created {
		action = models.AuditActionCreate
	}
	w.audit(caller, action, "BoardConnection", conn.ID, c.CaseNumber, "Evidence connected: "+conn.ConnectionType, nil, conn)
	return &conn, created, nil
}
