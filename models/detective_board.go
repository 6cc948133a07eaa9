package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Evidence connection type constants
const (
	ConnectionTypeRelatedTo   = "related_to"
	ConnectionTypeContradicts = "contradicts"
	ConnectionTypeSupports    = "supports"
	ConnectionTypeTimeline    = "timeline"
	ConnectionTypeOther       = "other"
)

// IsValidConnectionType checks if the connection type is valid
func IsValidConnectionType(connectionType string) bool {
	switch connectionType {
	case ConnectionTypeRelatedTo, ConnectionTypeContradicts, ConnectionTypeSupports,
		ConnectionTypeTimeline, ConnectionTypeOther:
		return true
	}
	return false
}

// DetectiveBoard is the visual analysis board of a case; one per case.
// BoardData holds the client's node positions and layout as an opaque JSON object.
type DetectiveBoard struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"last_modified"`

	CaseID           string         `gorm:"type:uuid;not null;uniqueIndex" json:"case_id"`
	DetectiveID      *string        `gorm:"type:uuid;index" json:"detective_id,omitempty"`
	BoardData        datatypes.JSON `json:"board_data"`
	LastModifiedByID *string        `gorm:"type:uuid" json:"last_modified_by_id,omitempty"`

	Case        *Case             `gorm:"foreignKey:CaseID" json:"-"`
	Connections []BoardConnection `gorm:"foreignKey:BoardID" json:"connections"`
}

func (b *DetectiveBoard) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	if len(b.BoardData) == 0 {
		b.BoardData = datatypes.JSON("{}")
	}
	return nil
}

func (DetectiveBoard) TableName() string {
	return "detective_boards"
}

// BoardConnection links two evidence items of the board's case. A pair is
// connected at most once per board, in each direction.
type BoardConnection struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	BoardID          string `gorm:"type:uuid;not null;uniqueIndex:idx_board_connection" json:"board_id"`
	SourceEvidenceID string `gorm:"type:uuid;not null;uniqueIndex:idx_board_connection" json:"source_evidence_id"`
	TargetEvidenceID string `gorm:"type:uuid;not null;uniqueIndex:idx_board_connection" json:"target_evidence_id"`
	ConnectionType   string `gorm:"size:20;not null" json:"connection_type"`
	Notes            string `gorm:"type:text" json:"notes"`
}

func (c *BoardConnection) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

func (BoardConnection) TableName() string {
	return "board_evidence_connections"
}
