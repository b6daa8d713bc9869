// Package dashboard serves the admin dashboard overview and analytics snapshots.
package dashboard

import (
	"context"
	"time"
)

// DefaultPeriod is used when no analytics period is requested.
const DefaultPeriod = "7d"

// Overview is the dashboard landing snapshot.
type Overview struct {
	TotalUsers     int64        `json:"totalUsers"`
	ActiveUsers    int64        `json:"activeUsers"`
	TotalSessions  int64        `json:"totalSessions"`
	SystemHealth   SystemHealth `json:"systemHealth"`
	RecentActivity []Activity   `json:"recentActivity"`
	Analytics      Analytics    `json:"analytics"`
}

// SystemHealth holds resource usage percentages.
type SystemHealth struct {
	CPU    int     `json:"cpu"`
	Memory int     `json:"memory"`
	Disk   int     `json:"disk"`
	Uptime float64 `json:"uptime"`
}

// Activity is one entry of the recent activity feed.
type Activity struct {
	ID        string    `json:"id"`
	User      Actor     `json:"user"`
	Action    string    `json:"action"`
	Target    string    `json:"target"`
	Timestamp time.Time `json:"timestamp"`
	Type      string    `json:"type"`
}

// Actor identifies who performed an activity.
type Actor struct {
	Name     string `json:"name"`
	Initials string `json:"initials"`
}

// Analytics holds the chart series.
type Analytics struct {
	UserGrowth  []MonthlyUsers `json:"userGrowth"`
	SessionData []DailySession `json:"sessionData"`
}

// MonthlyUsers is one point of the user growth series.
type MonthlyUsers struct {
	Month string `json:"month"`
	Users int64  `json:"users"`
}

// DailySession is one point of the sessions series.
type DailySession struct {
	Day      string `json:"day"`
	Sessions int64  `json:"sessions"`
}

// AnalyticsReport is the analytics view for a period.
type AnalyticsReport struct {
	Period    string    `json:"period"`
	Analytics Analytics `json:"analytics"`
}

// Service builds dashboard snapshots.
type Service struct {
	now func() time.Time
}

// New creates a dashboard Service. A nil clock means time.Now.
func New(now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{now: now}
}

// Overview returns the dashboard snapshot. Activity timestamps are relative to now.
func (s *Service) Overview(_ context.Context) (*Overview, error) {
	now := s.now().UTC()

	return &Overview{
		TotalUsers:    2847,
		ActiveUsers:   1234,
		TotalSessions: 5678,
		SystemHealth: SystemHealth{
			CPU:    23,
			Memory: 67,
			Disk:   45,
			Uptime: 99.9,
		},
		RecentActivity: []Activity{
			{ID: "1", User: Actor{"John Doe", "JD"}, Action: "created", Target: "new user account", Timestamp: now.Add(-2 * time.Minute), Type: "create"},
			{ID: "2", User: Actor{"Sarah Wilson", "SW"}, Action: "updated", Target: "profile settings", Timestamp: now.Add(-5 * time.Minute), Type: "update"},
			{ID: "3", User: Actor{"Mike Johnson", "MJ"}, Action: "deleted", Target: "old backup file", Timestamp: now.Add(-10 * time.Minute), Type: "delete"},
			{ID: "4", User: Actor{"Emily Davis", "ED"}, Action: "logged in", Target: "admin panel", Timestamp: now.Add(-15 * time.Minute), Type: "login"},
		},
		Analytics: analytics(),
	}, nil
}

// Analytics returns the chart series for period, defaulting to DefaultPeriod.
// Every period currently shares the same series.
func (s *Service) Analytics(_ context.Context, period string) (*AnalyticsReport, error) {
	if period == "" {
		period = DefaultPeriod
	}
	return &AnalyticsReport{Period: period, Analytics: analytics()}, nil
}

func analytics() Analytics {
	return Analytics{
		UserGrowth: []MonthlyUsers{
			{"Jan", 1200},
			{"Feb", 1450},
			{"Mar", 1800},
			{"Apr", 2100},
			{"May", 2400},
			{"Jun", 2847},
		},
		SessionData: []DailySession{
			{"Mon", 890},
			{"Tue", 1200},
			{"Wed", 980},
			{"Thu", 1450},
			{"Fri", 1680},
			{"Sat", 1200},
			{"Sun", 950},
		},
	}
}
