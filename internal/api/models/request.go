package models

// ResourceTypeQuery selects the resources of one type.
type ResourceTypeQuery struct {
	ResourceType string `form:"resource_type" binding:"required"`
}

// ResourceQuery identifies one generating unit.
type ResourceQuery struct {
	ResourceType string `form:"resource_type" binding:"required"`
	ResourceName string `form:"resource_name" binding:"required"`
}

// DatesQuery lists a resource's dates. Mode is "all" (default) or
// "year_over_year".
type DatesQuery struct {
	ResourceQuery
	Mode string `form:"mode"`
}

// AdjacentQuery steps one date forward or back.
type AdjacentQuery struct {
	ResourceQuery
	Date      string `form:"date" binding:"required"`      // YYYY-MM-DD or MM/DD/YYYY
	Direction string `form:"direction" binding:"required"` // next | prev
	Mode      string `form:"mode"`
}

// CurvesQuery fetches one hour, or the whole day when Hour is empty.
type CurvesQuery struct {
	ResourceQuery
	Date string `form:"date" binding:"required"`
	Hour string `form:"hour"`
}

// DateQuery is a resource plus a date.
type DateQuery struct {
	ResourceQuery
	Date string `form:"date" binding:"required"`
}
