package models

import (
	"time"

	"bidding-trends/internal/curve"
	"bidding-trends/internal/dates"
	"bidding-trends/internal/model"
)

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status        string `json:"status"`
	DatasetLoaded bool   `json:"dataset_loaded"`
	Version       int    `json:"version"`
}

// ResourceTypesResponse lists the distinct resource types
type ResourceTypesResponse struct {
	ResourceTypes []string `json:"resource_types"`
	Count         int      `json:"count"`
}

// ResourcesResponse lists the resource names of one type
type ResourcesResponse struct {
	ResourceType string   `json:"resource_type"`
	Resources    []string `json:"resources"`
	Count        int      `json:"count"`
}

// DatesResponse lists a resource's dates in ascending order
type DatesResponse struct {
	ResourceType string          `json:"resource_type"`
	ResourceName string          `json:"resource_name"`
	Mode         string          `json:"mode"`
	Dates        []dates.DayInfo `json:"dates"`
	Count        int             `json:"count"`
}

// AdjacentResponse is the result of one navigation step.
// Moved is false when From was at the end of the sequence or not in it.
type AdjacentResponse struct {
	ResourceType string          `json:"resource_type"`
	ResourceName string          `json:"resource_name"`
	Mode         string          `json:"mode"`
	Direction    model.Direction `json:"direction"`
	From         model.Date      `json:"from"`
	Date         model.Date      `json:"date"`
	Moved        bool            `json:"moved"`
}

// CurveResponse is a single-hour curve
type CurveResponse struct {
	ResourceType string     `json:"resource_type"`
	ResourceName string     `json:"resource_name"`
	Date         model.Date `json:"date"`
	Hour         int        `json:"hour_ending"`
	curve.Curve
}

// PairsResponse lists the year-over-year pairs of a resource
type PairsResponse struct {
	ResourceType string              `json:"resource_type"`
	ResourceName string              `json:"resource_name"`
	Pairs        []model.AlignedPair `json:"pairs"`
	Count        int                 `json:"count"`
}

// DuplicateInfo is one key with more than one record
type DuplicateInfo struct {
	ResourceType string     `json:"resource_type"`
	ResourceName string     `json:"resource_name"`
	Date         model.Date `json:"date"`
	Hour         int        `json:"hour_ending"`
	Count        int        `json:"count"`
}

// DatasetResponse describes the loaded dataset
type DatasetResponse struct {
	Loaded        bool            `json:"loaded"`
	Source        string          `json:"source,omitempty"`
	Version       int             `json:"version"`
	Records       int             `json:"records"`
	Resources     int             `json:"resources"`
	ResourceTypes int             `json:"resource_types"`
	LoadedAt      *time.Time      `json:"loaded_at,omitempty"`
	DuplicateKeys int             `json:"duplicate_keys"`
	Duplicates    []DuplicateInfo `json:"duplicates,omitempty"` // first MaxDuplicatesListed
}

// MaxDuplicatesListed caps DatasetResponse.Duplicates.
const MaxDuplicatesListed = 50

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
