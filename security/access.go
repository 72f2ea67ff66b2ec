package security

// buildAccessTables derives the user access tables from the role and
// permission declarations. It runs once at startup; the sets are small
// static configuration, so the nested loops are not a request-time cost.
//
// The endpoint permission list is first inverted into role -> endpoint
// names, then each role's endpoint set is unioned into every member's
// access set while the role name is added to the member's role set. A role
// that appears in the role file but is granted no endpoints contributes an
// empty endpoint set, which is valid, not an error.
func buildAccessTables(roles map[string]Role, permissions Permissions) (map[string]map[string]struct{}, map[string]map[string]struct{}) {
	roleAccess := make(map[string]map[string]struct{})
	for _, ep := range permissions.Endpoints {
		for _, r := range ep.Roles {
			if roleAccess[r] == nil {
				roleAccess[r] = make(map[string]struct{})
			}
			roleAccess[r][ep.Name] = struct{}{}
		}
	}

	userAccess := make(map[string]map[string]struct{})
	userRoles := make(map[string]map[string]struct{})
	for _, role := range roles {
		for _, uid := range role.UIDs {
			if userAccess[uid] == nil {
				userAccess[uid] = make(map[string]struct{})
			}
			for endpoint := range roleAccess[role.Name] {
				userAccess[uid][endpoint] = struct{}{}
			}
			if userRoles[uid] == nil {
				userRoles[uid] = make(map[string]struct{})
			}
			userRoles[uid][role.Name] = struct{}{}
		}
	}
	return userAccess, userRoles
}
