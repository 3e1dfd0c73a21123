package domain

// Operation enumerates every lead mutation the policy rules on.
type Operation int

const (
	OpCreate Operation = iota
	OpUpdate
	OpUpdateStatus
	OpTransfer
	OpSoftDelete
	OpRestore
	OpPermanentDelete
	OpAddNote
	OpAddAction
	OpBulkUpdateStatus
	OpBulkAssign
	OpBulkSoftDelete
	OpToggleStar
	OpView
)

func (o Operation) String() string {
	switch o {
	case OpCreate:
		return "create"
	case OpUpdate:
		return "update"
	case OpUpdateStatus:
		return "update_status"
	case OpTransfer:
		return "transfer"
	case OpSoftDelete:
		return "soft_delete"
	case OpRestore:
		return "restore"
	case OpPermanentDelete:
		return "permanent_delete"
	case OpAddNote:
		return "add_note"
	case OpAddAction:
		return "add_action"
	case OpBulkUpdateStatus:
		return "bulk_update_status"
	case OpBulkAssign:
		return "bulk_assign"
	case OpBulkSoftDelete:
		return "bulk_soft_delete"
	case OpToggleStar:
		return "toggle_star"
	case OpView:
		return "view"
	default:
		return "unknown"
	}
}
