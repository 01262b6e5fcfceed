package entity

import (
	"time"
)

type ExpenseDataset struct {
	ID           uint         `gorm:"primaryKey" json:"id"`
	FileName     string       `gorm:"type:text;not null" json:"file_name"`
	RowCount     int          `gorm:"not null" json:"row_count"`
	Uploader     string       `gorm:"type:text" json:"uploader"`
	OriginalPath string       `gorm:"type:text" json:"-"`
	BranchName   string       `gorm:"type:text;index:idx_expense_datasets_branch" json:"branch_name"`
	Period       string       `gorm:"type:text;index:idx_expense_datasets_period" json:"period"`
	UploadedAt   time.Time    `gorm:"autoCreateTime;index:idx_expense_datasets_uploaded_at" json:"uploaded_at"`
	Rows         []ExpenseRow `gorm:"foreignKey:DatasetID;constraint:OnDelete:CASCADE" json:"-"`
}

func (ExpenseDataset) TableName() string {
	return "expense_datasets"
}
