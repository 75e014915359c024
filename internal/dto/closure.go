package dto

// UpdateClosureSettingsRequest replaces the shop wide closures.
type UpdateClosureSettingsRequest struct {
	ClosedDays  []int64  `json:"closedDays" validate:"dive,min=0,max=6"`
	ClosedDates []string `json:"closedDates" validate:"dive,datetime=2006-01-02"`
}

// UpdateRecurringClosureRequest replaces the weekly closed days of a barber.
type UpdateRecurringClosureRequest struct {
	ClosedDays []int64 `json:"closedDays" validate:"dive,min=0,max=6"`
}

// CreateClosureRequest closes all or part of one date for a barber.
type CreateClosureRequest struct {
	Date   string `json:"date" validate:"required,datetime=2006-01-02"`
	Type   string `json:"type" validate:"required,oneof=full morning afternoon"`
	Reason string `json:"reason" validate:"omitempty,max=255"`
}

// ClosureRangeFilter bounds ad-hoc closure listings.
type ClosureRangeFilter struct {
	From string `validate:"required,datetime=2006-01-02"`
	To   string `validate:"required,datetime=2006-01-02"`
}

// DeleteClosureRequest re-opens a date. An empty type removes every closure of the date.
type DeleteClosureRequest struct {
	Date string `validate:"required,datetime=2006-01-02"`
	Type string `validate:"omitempty,oneof=full morning afternoon"`
}

// CreateClosureResult reports whether the closure was new.
type CreateClosureResult struct {
	Created bool `json:"created"`
}

// SyncClosuresResult summarises a materialisation run.
type SyncClosuresResult struct {
	Barbers  int `json:"barbers"`
	Inserted int `json:"inserted"`
}
