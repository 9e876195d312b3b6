package auth

import "github.com/gin-gonic/gin"

const (
	RoleCitizen   = "ciudadano"
	RoleOrganizer = "organizador"
	RoleWorker    = "trabajador"
	RoleAdmin     = "admin"
)

// Actor identifies who performs an operation. Services receive it explicitly
// instead of reading the request session.
type Actor struct {
	UID  int
	Role string
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// IsStaff is true for workers and admins, who review course bookings.
func (a Actor) IsStaff() bool {
	return a.Role == RoleWorker || a.Role == RoleAdmin
}

func ValidRole(role string) bool {
	switch role {
	case RoleCitizen, RoleOrganizer, RoleWorker, RoleAdmin:
		return true
	}
	return false
}

func GetActor(c *gin.Context) (Actor, bool) {
	id, ok := GetUserID(c)
	if !ok {
		return Actor{}, false
	}
	role, _ := c.Get("user_role")
	roleStr, _ := role.(string)
	return Actor{UID: id, Role: roleStr}, true
}
