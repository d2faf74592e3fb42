package models

import "time"

// Visitor は (ip_address, session_id) の組で一意に識別される訪問者です。
type Visitor struct {
	ID            int64     `db:"id" json:"id"`
	IPAddress     string    `db:"ip_address" json:"ip_address"`
	SessionID     string    `db:"session_id" json:"session_id"`
	UserAgent     *string   `db:"user_agent" json:"user_agent"`
	Referer       *string   `db:"referer" json:"referer"`
	Country       *string   `db:"country" json:"country"`
	City          *string   `db:"city" json:"city"`
	DeviceType    *string   `db:"device_type" json:"device_type"`
	PageURL       *string   `db:"page_url" json:"page_url"`
	VisitCount    int       `db:"visit_count" json:"visit_count"`
	VisitDuration int       `db:"visit_duration" json:"visit_duration"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	LastVisited   time.Time `db:"last_visited" json:"last_visited"`
}

// VisitorRequest は POST /visitors のボディです。IP はサーバー側で決定します。
type VisitorRequest struct {
	UserAgent     *string `json:"user_agent"`
	Referer       *string `json:"referer"`
	Country       *string `json:"country"`
	City          *string `json:"city"`
	DeviceType    *string `json:"device_type"`
	PageURL       *string `json:"page_url"`
	SessionID     string  `json:"session_id" binding:"required,notblank"`
	VisitDuration *int    `json:"visit_duration" binding:"omitempty,gte=0"`
}

// VisitorOverview は訪問者統計のサマリーです。
type VisitorOverview struct {
	UniqueVisitors int64 `db:"unique_visitors" json:"unique_visitors"`
	TotalVisits    int64 `db:"total_visits" json:"total_visits"`
	DeviceTypes    int64 `db:"device_types" json:"device_types"`
	Countries      int64 `db:"countries" json:"countries"`
}

type CountryCount struct {
	Country string `db:"country" json:"country"`
	Count   int64  `db:"count" json:"count"`
}

type DeviceCount struct {
	DeviceType string `db:"device_type" json:"device_type"`
	Count      int64  `db:"count" json:"count"`
}
