package persistence

import (
	"time"
)

// EmpireModel represents the empires table
type EmpireModel struct {
	ID        int       `gorm:"column:id;primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	Credits   int       `gorm:"column:credits;not null;default:0"`
	CreatedAt time.Time `gorm:"column:created_at;not null;autoCreateTime"`
}

func (EmpireModel) TableName() string {
	return "empires"
}

// BaseModel represents the bases table. Terrain attributes and totals
// are written once at base creation; usage is never stored.
type BaseModel struct {
	Coordinate         string `gorm:"column:coordinate;primaryKey"`
	EmpireID           int    `gorm:"column:empire_id;index;not null"`
	Empire             *EmpireModel `gorm:"foreignKey:EmpireID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Name               string `gorm:"column:name"`
	SolarRating        int    `gorm:"column:solar_rating;not null"`
	GasRating          int    `gorm:"column:gas_rating;not null"`
	MetalRating        int    `gorm:"column:metal_rating;not null"`
	CrystalRating      int    `gorm:"column:crystal_rating;not null"`
	Fertility          int    `gorm:"column:fertility;not null"`
	Area               int    `gorm:"column:area;not null"`
	PopulationCapacity int    `gorm:"column:population_capacity;not null"`
}

func (BaseModel) TableName() string {
	return "bases"
}

// BuildingModel represents the buildings table: one row per
// (coordinate, catalog key). A non-active row with a future
// completes_at is the base's single in-flight construction order.
type BuildingModel struct {
	Coordinate     string    `gorm:"column:coordinate;primaryKey"`
	CatalogKey     string    `gorm:"column:catalog_key;primaryKey"`
	EmpireID       int       `gorm:"column:empire_id;index;not null"`
	Level          int       `gorm:"column:level;not null"`
	Active         bool      `gorm:"column:active;not null;default:false"`
	PendingUpgrade bool      `gorm:"column:pending_upgrade;not null;default:false"`
	StartedAt      time.Time `gorm:"column:started_at;not null"`
	CompletesAt    time.Time `gorm:"column:completes_at;not null"`
	CreditsCost    int       `gorm:"column:credits_cost;not null"`
	OrderID        string    `gorm:"column:order_id;index"`
}

func (BuildingModel) TableName() string {
	return "buildings"
}

// QueueItemModel represents the queue_items table holding the tech,
// unit and defense queues. The kinds are structurally identical, so
// one table with a kind discriminator stands in for the per-kind
// tables of the logical layout.
type QueueItemModel struct {
	ID          string    `gorm:"column:id;primaryKey"`
	Kind        string    `gorm:"column:kind;index;not null"`
	EmpireID    int       `gorm:"column:empire_id;index;not null"`
	Coordinate  string    `gorm:"column:coordinate;index;not null"`
	CatalogKey  string    `gorm:"column:catalog_key;not null"`
	Level       int       `gorm:"column:level;not null;default:0"`
	Status      string    `gorm:"column:status;index;not null"`
	StartedAt   time.Time `gorm:"column:started_at;not null"`
	CompletesAt time.Time `gorm:"column:completes_at;index;not null"`
	CreditsCost int       `gorm:"column:credits_cost;not null"`
}

func (QueueItemModel) TableName() string {
	return "queue_items"
}

// TechLevelModel represents the tech_levels table
type TechLevelModel struct {
	EmpireID   int    `gorm:"column:empire_id;primaryKey"`
	CatalogKey string `gorm:"column:catalog_key;primaryKey"`
	Level      int    `gorm:"column:level;not null;default:0"`
}

func (TechLevelModel) TableName() string {
	return "tech_levels"
}

// StockpileModel represents the stockpiles table of completed units
// and defenses per base
type StockpileModel struct {
	Coordinate string `gorm:"column:coordinate;primaryKey"`
	CatalogKey string `gorm:"column:catalog_key;primaryKey"`
	Count      int    `gorm:"column:count;not null;default:0"`
}

func (StockpileModel) TableName() string {
	return "stockpiles"
}

// TransactionModel represents the credit_transactions ledger table
type TransactionModel struct {
	ID            string    `gorm:"column:id;primaryKey"`
	EmpireID      int       `gorm:"column:empire_id;index;not null"`
	Timestamp     time.Time `gorm:"column:timestamp;index;not null"`
	Type          string    `gorm:"column:type;not null"`
	Amount        int       `gorm:"column:amount;not null"`
	BalanceBefore int       `gorm:"column:balance_before;not null"`
	BalanceAfter  int       `gorm:"column:balance_after;not null"`
	Reference     string    `gorm:"column:reference;index"`
	Description   string    `gorm:"column:description"`
}

func (TransactionModel) TableName() string {
	return "credit_transactions"
}
