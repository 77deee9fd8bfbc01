package domain

// Role is the closed set of actor roles the platform knows about.
type Role string

const (
	RoleAnonymous Role = "anonymous"
	RoleUser      Role = "user"
	RoleFarmer    Role = "farmer"
	RoleAdmin     Role = "admin"
)

// Principal is the resolved actor behind a request. It lives for the
// duration of one request and is passed explicitly down the call chain,
// never stashed in globals.
type Principal struct {
	ID     string
	Role   Role
	Active bool
	// FarmerID is the farmer profile owned by this principal, resolved once
	// per request for farmer-role principals; empty otherwise. Ownership
	// rules compare it against a resource's owning farmer.
	FarmerID string
}

// Anonymous is the principal used for requests carrying no credential.
var Anonymous = Principal{Role: RoleAnonymous, Active: true}

func (p Principal) IsAnonymous() bool { return p.Role == RoleAnonymous || p.ID == "" }
func (p Principal) IsAdmin() bool     { return p.Role == RoleAdmin }
func (p Principal) IsFarmer() bool    { return p.Role == RoleFarmer }
