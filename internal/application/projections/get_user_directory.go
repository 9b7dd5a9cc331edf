package projections

import (
	"context"
	"fmt"
	"time"

	"rinkdesk/internal/application/listutil"
	"rinkdesk/internal/domain/account"
	"rinkdesk/internal/domain/ident"
)

// User directory sort columns.
var UserSortColumns = []string{"name", "email", "role", "created"}

// UserRow is one account directory row.
type UserRow struct {
	ID           ident.ID `json:"id"`
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	Role         string   `json:"role"`
	RoleLabel    string   `json:"role_label"`
	CanManage    bool     `json:"can_manage"`
	CreatedAt    string   `json:"created_at,omitempty"`
	CreatedLabel string   `json:"created_label"`
}

// GetUserDirectoryDeps holds dependencies for GetUserDirectory.
type GetUserDirectoryDeps struct {
	Users    UserLister
	Location *time.Location
}

// QueryGetUserDirectory lists accounts filtered by email, name or role.
// Sorts: name (last, then first; default asc), email, role and created.
// PRE: params come from listutil.ParseListParams with UserSortColumns
// POST: Returns one page
func QueryGetUserDirectory(ctx context.Context, params listutil.ListParams, deps GetUserDirectoryDeps) (DirectoryPage[UserRow], error) {
	users, err := deps.Users.ListAdminUsers(ctx)
	if err != nil {
		return DirectoryPage[UserRow]{}, fmt.Errorf("list users: %w", err)
	}

	params = params.SortOr("name", listutil.Asc)
	byLast := listutil.StringKey(func(u account.User) string { return u.LastName })
	byFirst := listutil.StringKey(func(u account.User) string { return u.FirstName })
	byEmail := listutil.StringKey(func(u account.User) string { return u.Email })
	var keys []listutil.SortKey[account.User]
	switch params.Sort {
	case "email":
		keys = []listutil.SortKey[account.User]{byEmail}
	case "role":
		keys = []listutil.SortKey[account.User]{
			listutil.StringKey(func(u account.User) string { return u.Role }),
			byLast, byFirst,
		}
	case "created":
		keys = []listutil.SortKey[account.User]{
			listutil.TimeKey(func(u account.User) string { return u.CreatedAt }, deps.Location),
		}
	default:
		keys = []listutil.SortKey[account.User]{byLast, byFirst, byEmail}
	}

	res := listutil.Process(users, query(params,
		func(u account.User) string { return listutil.Join(u.Email, u.FirstName, u.LastName, u.Role) },
		keys,
		func(u account.User) string { return u.ID.String() },
	))
	return newDirectoryPage(res, params, func(u account.User) UserRow {
		return UserRow{
			ID:           u.ID,
			Name:         u.DisplayName(),
			Email:        u.Email,
			Role:         u.Role,
			RoleLabel:    account.RoleLabel(u.Role),
			CanManage:    account.CanManage(u.Role),
			CreatedAt:    u.CreatedAt,
			CreatedLabel: DateLabel(u.CreatedAt, deps.Location),
		}
	}), nil
}
