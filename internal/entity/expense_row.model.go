package entity

type ExpenseRow struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	DatasetID uint    `gorm:"not null;index:idx_expense_rows_dataset" json:"dataset_id"`
	RowData   RowData `gorm:"type:text;not null" json:"row_data"`
}

func (ExpenseRow) TableName() string {
	return "expense_rows"
}
