package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// User is an account identified by a case-insensitive unique email.
type User struct {
	UserID       string    `json:"user_id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Surname      string    `json:"surname"`
	PasswordHash string    `json:"-"`
	CreationTime time.Time `json:"creation_time"`
}

// Activity is one observed interval of user activity. Ownership is fixed
// at creation time and never changes.
type Activity struct {
	ActivityID     string                 `json:"activity_id"`
	UserID         string                 `json:"user_id"`
	StartTime      time.Time              `json:"start_time"`
	EndTime        time.Time              `json:"end_time"`
	ExecutableName string                 `json:"executable_name"`
	BrowserURL     *string                `json:"browser_url,omitempty"`
	BrowserTitle   *string                `json:"browser_title,omitempty"`
	IPAddress      string                 `json:"ip_address"`
	MACAddress     string                 `json:"mac_address"`
	IdleActivity   bool                   `json:"idle_activity"`
	ActivityType   string                 `json:"activity_type,omitempty"`
	Extra          map[string]interface{} `json:"extra,omitempty"`
	CreationTime   time.Time              `json:"creation_time"`
}

// Project is a named collection owned by its manager. Members gain read
// access to each other's activity data scoped to the project.
type Project struct {
	ProjectID    string    `json:"project_id"`
	Title        string    `json:"title"`
	ManagerID    string    `json:"manager_id"`
	CreationTime time.Time `json:"creation_time"`
}

// ProjectMember records one user's membership in a project.
type ProjectMember struct {
	ProjectID    string    `json:"project_id"`
	UserID       string    `json:"user_id"`
	InvitedBy    string    `json:"invited_by"`
	CreationTime time.Time `json:"creation_time"`
}

// ActivityPayload is client-submitted activity data before it becomes a
// persisted Activity. Unknown keys are preserved in Extra rather than
// dropped; the decode itself fails on any non-object shape.
type ActivityPayload struct {
	StartTime      time.Time
	EndTime        time.Time
	ExecutableName string
	BrowserURL     *string
	BrowserTitle   *string
	IPAddress      string
	MACAddress     string
	IdleActivity   bool
	ActivityType   string
	Extra          map[string]interface{}
}

// knownPayloadKeys are decoded into struct fields; everything else lands in Extra.
var knownPayloadKeys = map[string]bool{
	"start_time": true, "end_time": true, "executable_name": true,
	"browser_url": true, "browser_title": true, "ip_address": true,
	"mac_address": true, "idle_activity": true, "activity_type": true,
}

// UnmarshalJSON decodes a payload, rejecting any non-object shape with
// ErrValidation so malformed batches fail before concurrent dispatch.
func (p *ActivityPayload) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: activity payload must be a JSON object", ErrValidation)
	}
	var fields struct {
		StartTime      time.Time `json:"start_time"`
		EndTime        time.Time `json:"end_time"`
		ExecutableName string    `json:"executable_name"`
		BrowserURL     *string   `json:"browser_url"`
		BrowserTitle   *string   `json:"browser_title"`
		IPAddress      string    `json:"ip_address"`
		MACAddress     string    `json:"mac_address"`
		IdleActivity   bool      `json:"idle_activity"`
		ActivityType   string    `json:"activity_type"`
	}
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	p.StartTime = fields.StartTime
	p.EndTime = fields.EndTime
	p.ExecutableName = fields.ExecutableName
	p.BrowserURL = fields.BrowserURL
	p.BrowserTitle = fields.BrowserTitle
	p.IPAddress = fields.IPAddress
	p.MACAddress = fields.MACAddress
	p.IdleActivity = fields.IdleActivity
	p.ActivityType = fields.ActivityType
	p.Extra = nil
	for k, v := range raw {
		if knownPayloadKeys[k] {
			continue
		}
		if p.Extra == nil {
			p.Extra = make(map[string]interface{})
		}
		var val interface{}
		if err := json.Unmarshal(v, &val); err != nil {
			return fmt.Errorf("%w: %v", ErrValidation, err)
		}
		p.Extra[k] = val
	}
	return nil
}

// Validate checks the fields the ingestion contract requires.
func (p *ActivityPayload) Validate() error {
	switch {
	case p.StartTime.IsZero():
		return fmt.Errorf("%w: start_time is required", ErrValidation)
	case p.EndTime.IsZero():
		return fmt.Errorf("%w: end_time is required", ErrValidation)
	case p.ExecutableName == "":
		return fmt.Errorf("%w: executable_name is required", ErrValidation)
	case p.IPAddress == "":
		return fmt.Errorf("%w: ip_address is required", ErrValidation)
	case p.MACAddress == "":
		return fmt.Errorf("%w: mac_address is required", ErrValidation)
	}
	return nil
}

// Activity builds the persistable record bound to owner.
func (p *ActivityPayload) Activity(owner string) *Activity {
	return &Activity{
		UserID:         owner,
		StartTime:      p.StartTime,
		EndTime:        p.EndTime,
		ExecutableName: p.ExecutableName,
		BrowserURL:     p.BrowserURL,
		BrowserTitle:   p.BrowserTitle,
		IPAddress:      p.IPAddress,
		MACAddress:     p.MACAddress,
		IdleActivity:   p.IdleActivity,
		ActivityType:   p.ActivityType,
		Extra:          p.Extra,
	}
}

// FindActivitiesRequest captures the filters used when querying activities.
type FindActivitiesRequest struct {
	OwnerIDs  []string
	Offset    int
	Limit     int
	Filters   map[string]string
	StartTime *time.Time
	EndTime   *time.Time
}
