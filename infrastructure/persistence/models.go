// Package persistence implements the relational item store on GORM.
package persistence

import (
	"context"
	"time"

	"github.com/newswaters/newswaters/internal/database"
)

// ItemModel is the GORM model for the items table.
type ItemModel struct {
	ID          int32   `gorm:"column:id;primaryKey"`
	Deleted     *bool   `gorm:"column:deleted"`
	Kind        *string `gorm:"column:type"`
	By          *string `gorm:"column:by"`
	Time        *int64  `gorm:"column:time"`
	Text        *string `gorm:"column:text"`
	Dead        *bool   `gorm:"column:dead"`
	Parent      *int32  `gorm:"column:parent"`
	Poll        *int32  `gorm:"column:poll"`
	URL         *string `gorm:"column:url"`
	Score       *int32  `gorm:"column:score"`
	Title       *string `gorm:"column:title"`
	Descendants *int32  `gorm:"column:descendants"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName returns the database table name.
func (ItemModel) TableName() string { return "items" }

// ItemURLModel is the GORM model for the item_urls table. StatusCode maps
// the fetch outcome variant: 0 finished, 1 skipped, 2 canceled.
type ItemURLModel struct {
	ItemID     int32   `gorm:"column:item_id;primaryKey"`
	HTML       *string `gorm:"column:html"`
	Text       *string `gorm:"column:text"`
	Summary    *string `gorm:"column:summary"`
	StatusCode *int32  `gorm:"column:status_code"`
	StatusNote *string `gorm:"column:status_note"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName returns the database table name.
func (ItemURLModel) TableName() string { return "item_urls" }

// AnalysisModel is the GORM model for the analyses table.
type AnalysisModel struct {
	ItemID         int32   `gorm:"column:item_id;primaryKey"`
	Keyword        *string `gorm:"column:keyword"`
	TextPassage    *string `gorm:"column:text_passage"`
	SummaryPassage *string `gorm:"column:summary_passage"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName returns the database table name.
func (AnalysisModel) TableName() string { return "analyses" }

// AutoMigrate creates or updates the relational schema.
func AutoMigrate(db database.Database) error {
	return db.Session(context.Background()).AutoMigrate(
		&ItemModel{},
		&ItemURLModel{},
		&AnalysisModel{},
	)
}
