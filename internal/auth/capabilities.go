package auth

import userDatamodel "github.com/payflowhq/payflow/internal/core/datamodel/user"

// Permission names consulted by the RBAC middleware and the service layer.
const (
	PermCreateRequests      = "create_requests"
	PermConfirmSupplierData = "confirm_supplier_data"
	PermApproveRequests     = "approve_requests"
	PermRejectRequests      = "reject_requests"
	PermPayRequests         = "pay_requests"
	PermManageEvents        = "manage_events"
	PermManageUsers         = "manage_users"
	PermViewReports         = "view_reports"
)

// roleCapabilities maps each role to the actions it may perform. This is the
// single source of truth for authorization: the UI reads it through the
// session endpoint and every mutating route is guarded by it server-side.
var roleCapabilities = map[string][]string{
	userDatamodel.RoleRequester: {
		PermCreateRequests,
		PermConfirmSupplierData,
	},
	userDatamodel.RoleManager: {
		PermCreateRequests,
		PermConfirmSupplierData,
		PermApproveRequests,
		PermRejectRequests,
		PermManageEvents,
		PermManageUsers,
		PermViewReports,
	},
	userDatamodel.RoleFinance: {
		PermPayRequests,
		PermRejectRequests,
		PermManageEvents,
		PermManageUsers,
		PermViewReports,
	},
}

// CapabilitiesForRole returns a copy of the permission set for a role.
// Unknown roles get no permissions.
func CapabilitiesForRole(role string) []string {
	caps, ok := roleCapabilities[role]
	if !ok {
		return nil
	}
	out := make([]string, len(caps))
	copy(out, caps)
	return out
}
