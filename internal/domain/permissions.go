package domain

// Action identifies something a user may be allowed to do.
type Action string

const (
	ActionCreerProjet       Action = "creer_projet"
	ActionModifierProjet    Action = "modifier_projet"
	ActionSupprimerProjet   Action = "supprimer_projet"
	ActionCreerTache        Action = "creer_tache"
	ActionModifierTache     Action = "modifier_tache"
	ActionValiderTemps      Action = "valider_temps"
	ActionSaisirTemps       Action = "saisir_temps"
	ActionConsulterProjets  Action = "consulter_projets"
	ActionGererUtilisateurs Action = "gerer_utilisateurs"
)

type permissionSet struct {
	all     bool
	actions map[Action]struct{}
}

func (s permissionSet) allows(a Action) bool {
	if s.all {
		return true
	}
	_, ok := s.actions[a]
	return ok
}

func actions(list ...Action) permissionSet {
	m := make(map[Action]struct{}, len(list))
	for _, a := range list {
		m[a] = struct{}{}
	}
	return permissionSet{actions: m}
}

// permissions is the role matrix. A role missing from it is not a valid Role.
var permissions = map[Role]permissionSet{
	RoleAdministrateur: {all: true},
	RoleGestionnaire: actions(
		ActionCreerProjet,
		ActionModifierProjet,
		ActionCreerTache,
		ActionModifierTache,
		ActionValiderTemps,
		ActionSaisirTemps,
	),
	RoleEmploye: actions(
		ActionSaisirTemps,
		ActionConsulterProjets,
	),
}

// RolePermits reports whether role grants action. Unknown roles are denied everything.
func RolePermits(role Role, action Action) bool {
	set, ok := permissions[role]
	if !ok {
		return false
	}
	return set.allows(action)
}
