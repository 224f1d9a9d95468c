package auth

// Papéis da equipe. O papel vive no token e decide as rotas e o menu.
const (
	RoleAdmin        = "ADMIN"
	RoleSecretary    = "SECRETARY"
	RoleProfessional = "PROFESSIONAL"
	RoleAssistant    = "ASSISTANT"
)

// ValidRole reports whether r is one of the staff roles.
func ValidRole(r string) bool {
	switch r {
	case RoleAdmin, RoleSecretary, RoleProfessional, RoleAssistant:
		return true
	}
	return false
}

// NavEntry is one menu item of the console, returned by /api/me so the
// frontend renders only what the role can reach.
type NavEntry struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Path  string `json:"path"`
}

var navCatalogue = []struct {
	entry NavEntry
	roles map[string]bool
}{
	{NavEntry{"patients", "Pacientes", "/pacientes"}, set(RoleAdmin, RoleSecretary, RoleProfessional)},
	{NavEntry{"guardians", "Responsáveis", "/responsaveis"}, set(RoleAdmin, RoleSecretary)},
	{NavEntry{"anamnesis", "Anamneses", "/anamneses"}, set(RoleAdmin, RoleSecretary, RoleProfessional)},
	{NavEntry{"anamnesisHistory", "Histórico de Anamneses", "/anamneses/historico"}, set(RoleAdmin, RoleProfessional)},
	{NavEntry{"referrals", "Encaminhamentos", "/encaminhamentos"}, set(RoleAdmin, RoleProfessional, RoleAssistant)},
	{NavEntry{"users", "Usuários", "/usuarios"}, set(RoleAdmin)},
	{NavEntry{"secretaries", "Secretárias", "/secretarias"}, set(RoleAdmin)},
	{NavEntry{"assistants", "Assistentes", "/assistentes"}, set(RoleAdmin, RoleProfessional)},
}

func set(roles ...string) map[string]bool {
	m := make(map[string]bool, len(roles))
	for _, r := range roles {
		m[r] = true
	}
	return m
}

// NavFor returns the menu entries visible to a role, in fixed order.
func NavFor(role string) []NavEntry {
	out := make([]NavEntry, 0, len(navCatalogue))
	for _, n := range navCatalogue {
		if n.roles[role] {
			out = append(out, n.entry)
		}
	}
	return out
}
