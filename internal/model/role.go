package model

// Role identifies the capability set of an authenticated principal.
// The value is carried in the JWT "role" claim and stored in the
// users.role column.
type Role string

const (
    RoleUser  Role = "user"  // regular account, may reserve lockers
    RoleAdmin Role = "admin" // may manage lockers and see everything
)

// Permission names a single capability that a role may hold.  Access
// decisions go through the permission table below instead of ad-hoc
// string comparisons scattered across handlers.
type Permission string

const (
    PermViewLockers         Permission = "view_lockers"
    PermManageLockers       Permission = "manage_lockers"
    PermReserveLocker       Permission = "reserve_locker"
    PermViewAllReservations Permission = "view_all_reservations"
)

// rolePermissions maps each role to the set of permissions it holds.
// Unknown roles hold nothing.
var rolePermissions = map[Role]map[Permission]bool{
    RoleUser: {
        PermViewLockers:   true,
        PermReserveLocker: true,
    },
    RoleAdmin: {
        PermViewLockers:         true,
        PermManageLockers:       true,
        PermReserveLocker:       true,
        PermViewAllReservations: true,
    },
}

// Can reports whether the role holds the given permission.
func (r Role) Can(p Permission) bool {
    return rolePermissions[r][p]
}

// ValidRole reports whether s names a known role.
func ValidRole(s string) bool {
    _, ok := rolePermissions[Role(s)]
    return ok
}
