package gorm

type ShopItem struct {
	ID   uint   `gorm:"column:id;primaryKey"`
	Name string `gorm:"column:name;size:100;uniqueIndex;not null"`
	Cost int64  `gorm:"column:cost;not null"`
}

// TableName specifies the table name for GORM
func (ShopItem) TableName() string {
	return "shop"
}
