package policy

import (
	"time"
)

// TokenScopeGlobal is the scope key for the organization-wide verification token.
// Team-scoped tokens use the department name as their scope key.
const TokenScopeGlobal = "global"

// Weekday names as used in schedule maps, matching time.Weekday.String().
var Weekdays = []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// DaySchedule is the expected work window for a single day.
type DaySchedule struct {
	Enabled   bool   `json:"enabled"`
	StartTime string `json:"start_time"` // HH:MM
	EndTime   string `json:"end_time"`   // HH:MM
}

// OfficeLocation is a named circular geofence.
type OfficeLocation struct {
	Name         string  `json:"name"`
	Latitude     float64 `json:"lat"`
	Longitude    float64 `json:"lng"`
	RadiusMeters float64 `json:"radius_meters"`
}

// VerificationToken is a short-lived rotating code at global or team scope.
type VerificationToken struct {
	Scope     string    `json:"scope"`
	Code      string    `json:"code"`
	IssuedAt  time.Time `json:"issued_at"`
	TTLMillis int64     `json:"ttl_millis"`
}

// Expired reports whether the token is no longer valid at the given instant.
func (t VerificationToken) Expired(now time.Time) bool {
	return now.After(t.IssuedAt.Add(time.Duration(t.TTLMillis) * time.Millisecond))
}

// TokenGenConfig controls how rotated codes are generated.
type TokenGenConfig struct {
	Length         int    `json:"length"`
	Prefix         string `json:"prefix"`
	IncludeDigits  bool   `json:"include_digits"`
	IncludeLetters bool   `json:"include_letters"`
}

// Settings is the global policy document. A single row exists; team overrides
// live in TeamPolicy.
type Settings struct {
	RequireNetwork  bool `json:"require_network"`
	RequireGeofence bool `json:"require_geofence"`
	RequireToken    bool `json:"require_token"`

	AllowedIPs      []string         `json:"allowed_ips"`
	OfficeLocations []OfficeLocation `json:"office_locations"`

	WeeklySchedule map[string]DaySchedule `json:"weekly_schedule"`
	// Exceptions are date-keyed (YYYY-MM-DD) overrides that win over any weekly entry.
	Exceptions map[string]DaySchedule `json:"exceptions"`

	GracePeriodMinutes int            `json:"grace_period_minutes"`
	TokenExpirySeconds int            `json:"token_expiry_seconds"`
	TokenGen           TokenGenConfig `json:"token_gen"`
	DataRetentionDays  int            `json:"data_retention_days"`

	UpdatedAt time.Time `json:"updated_at"`
}

// TeamPolicy carries per-team overrides. An UseCustom* flag that is false means
// "defer to global" even when the corresponding payload is present; stale
// payloads must never leak through a disabled flag.
type TeamPolicy struct {
	Department string `json:"department"`

	UseCustomIPs      bool                   `json:"use_custom_ips"`
	AllowedIPs        []string               `json:"allowed_ips"`
	UseCustomOffices  bool                   `json:"use_custom_offices"`
	OfficeLocations   []OfficeLocation       `json:"office_locations"`
	UseCustomToken    bool                   `json:"use_custom_token"`
	UseCustomSchedule bool                   `json:"use_custom_schedule"`
	WeeklySchedule    map[string]DaySchedule `json:"weekly_schedule"`

	UpdatedAt time.Time `json:"updated_at"`
}

// Bundle is the fully resolved policy for one department, computed per request.
// Every field is final: evaluation never needs another lookup.
type Bundle struct {
	RequireNetwork  bool
	RequireGeofence bool
	RequireToken    bool

	AllowedIPs      []string
	OfficeLocations []OfficeLocation

	GracePeriodMinutes int
}

// DefaultSettings is the document created on first read: Monday through Friday
// 09:00-17:00, weekend off, 15 minute grace, 8 character alphanumeric codes
// valid for 10 seconds, one year of record retention.
func DefaultSettings() Settings {
	weekly := make(map[string]DaySchedule, 7)
	for _, day := range Weekdays {
		enabled := day != "Saturday" && day != "Sunday"
		weekly[day] = DaySchedule{Enabled: enabled, StartTime: "09:00", EndTime: "17:00"}
	}
	return Settings{
		RequireGeofence:    true,
		AllowedIPs:         []string{},
		OfficeLocations:    []OfficeLocation{},
		WeeklySchedule:     weekly,
		Exceptions:         map[string]DaySchedule{},
		GracePeriodMinutes: 15,
		TokenExpirySeconds: 10,
		TokenGen: TokenGenConfig{
			Length:         8,
			IncludeDigits:  true,
			IncludeLetters: true,
		},
		DataRetentionDays: 365,
	}
}
