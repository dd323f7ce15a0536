package entities

// Role is the class of requesting user. It selects the prompt template, the
// completion token budget and whether the patient's intake document is used.
type Role string

const (
	RoleFieldClinician       Role = "field_clinician"
	RoleQualityAdministrator Role = "quality_administrator"
)

// ParseRole converts a raw claim value into a Role. Unknown values are
// returned unchanged with ok=false so callers can decide how to fall back.
func ParseRole(raw string) (Role, bool) {
	r := Role(raw)
	return r, r.IsValid()
}

// IsValid checks if the role is one of the known roles
func (r Role) IsValid() bool {
	switch r {
	case RoleFieldClinician, RoleQualityAdministrator:
		return true
	}
	return false
}

// String returns the wire value of the role
func (r Role) String() string {
	return string(r)
}
