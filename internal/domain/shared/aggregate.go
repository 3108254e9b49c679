package shared

// BaseAggregateRoot extends BaseEntity with a version column reserved
// for optimistic locking. Aggregates mutated under a row lock never
// touch it; it exists for the read-mostly back-office surfaces.
type BaseAggregateRoot struct {
	BaseEntity
	Version int `gorm:"not null;default:1"`
}

// NewBaseAggregateRoot creates a BaseAggregateRoot at version 1
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{
		BaseEntity: NewBaseEntity(),
		Version:    1,
	}
}
