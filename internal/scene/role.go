package scene

// Role names what a node depicts on the bench. Hosts map roles to colours,
// so experiments never pick colours themselves.
type Role string

const (
	RoleNone      Role = ""
	RoleGround    Role = "ground"
	RoleStructure Role = "structure" // pendulum rod, circuit wire
	RolePreview   Role = "preview"
	RoleBody      Role = "body" // projectile ball, pendulum bob
	RoleTrail     Role = "trail"
	RoleMarker    Role = "marker"
	RoleGhost     Role = "ghost" // saved trajectories
	RoleDanger    Role = "danger"
	RoleCharge    Role = "charge"
	RoleSpark     Role = "spark"
	RoleDebris    Role = "debris"
	RoleSmoke     Role = "smoke"
	RoleLabel     Role = "label"
)
