package op

import (
	"encoding/json"
	"slices"
)

// Vault permission levels understood by the op CLI
const (
	PermAllowViewing         = "allow_viewing"
	PermAllowEditing         = "allow_editing"
	PermManageVault          = "manage_vault"
	PermViewItems            = "view_items"
	PermCreateItems          = "create_items"
	PermEditItems            = "edit_items"
	PermArchiveItems         = "archive_items"
	PermDeleteItems          = "delete_items"
	PermViewAndCopyPasswords = "view_and_copy_passwords"
	PermViewItemHistory      = "view_item_history"
	PermImportItems          = "import_items"
	PermExportItems          = "export_items"
	PermCopyAndShareItems    = "copy_and_share_items"
	PermPrintItems           = "print_items"
)

// KnownPermissions lists every permission level accepted on the CLI surface
var KnownPermissions = []string{
	PermAllowViewing,
	PermAllowEditing,
	PermManageVault,
	PermViewItems,
	PermCreateItems,
	PermEditItems,
	PermArchiveItems,
	PermDeleteItems,
	PermViewAndCopyPasswords,
	PermViewItemHistory,
	PermImportItems,
	PermExportItems,
	PermCopyAndShareItems,
	PermPrintItems,
}

// IsKnownPermission reports whether p is a permission level op accepts
func IsKnownPermission(p string) bool {
	return slices.Contains(KnownPermissions, p)
}

// Vault is the overview record returned by `op vault list`
type Vault struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// VaultDetails is the full record returned by `op vault get`
type VaultDetails struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	ContentVersion   int    `json:"content_version"`
	AttributeVersion int    `json:"attribute_version"`
	Items            int    `json:"items"`
	Type             string `json:"type"`
	CreatedAt        string `json:"created_at"`
	UpdatedAt        string `json:"updated_at"`
}

// Group is the overview record returned by `op group list`
type Group struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	State       string `json:"state,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
}

// GroupDetails is the full record returned by `op group get`
type GroupDetails struct {
	Group
	Type        string   `json:"type"`
	Permissions []string `json:"permissions,omitempty"`
	UpdatedAt   string   `json:"updated_at,omitempty"`
}

// User is the overview record returned by `op user list`
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Type  string `json:"type"`
	State string `json:"state"`
}

// VaultGroupAccess describes a group's standing on a vault, as returned by
// `op vault group list`
type VaultGroupAccess struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Permissions []string `json:"permissions"`
}

// VaultUserAccess describes a user's standing on a vault, as returned by
// `op vault user list`
type VaultUserAccess struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	State       string   `json:"state,omitempty"`
	Permissions []string `json:"permissions"`
}

// HasPermission reports whether the access record includes the permission
func (a VaultGroupAccess) HasPermission(permission string) bool {
	return slices.Contains(a.Permissions, permission)
}

// HasPermission reports whether the access record includes the permission
func (a VaultUserAccess) HasPermission(permission string) bool {
	return slices.Contains(a.Permissions, permission)
}

// PermissionUpdate is the confirmation record op prints after a group
// grant or revoke
type PermissionUpdate struct {
	VaultID     string `json:"vault_id"`
	VaultName   string `json:"vault_name"`
	GroupID     string `json:"group_id,omitempty"`
	UserID      string `json:"user_id,omitempty"`
	UserEmail   string `json:"user_email,omitempty"`
	Permissions string `json:"permissions"`
}

// ItemField is a single field within an item record
type ItemField struct {
	ID        string `json:"id,omitempty"`
	Type      string `json:"type,omitempty"`
	Purpose   string `json:"purpose,omitempty"`
	Label     string `json:"label,omitempty"`
	Value     string `json:"value,omitempty"`
	Reference string `json:"reference,omitempty"`
}

// Item is the record returned by `op item get`. Concealed fields are
// dropped during decode so secret values never transit the report path.
type Item struct {
	ID        string      `json:"id"`
	Title     string      `json:"title"`
	Version   int         `json:"version"`
	Vault     Vault       `json:"vault"`
	Category  string      `json:"category"`
	CreatedAt string      `json:"created_at"`
	UpdatedAt string      `json:"updated_at"`
	URLs      []ItemURL   `json:"urls,omitempty"`
	Fields    []ItemField `json:"fields,omitempty"`
}

// ItemURL is a website reference attached to an item
type ItemURL struct {
	Label   string `json:"label,omitempty"`
	Primary bool   `json:"primary,omitempty"`
	Href    string `json:"href"`
}

// UnmarshalJSON filters out concealed fields while decoding
func (it *Item) UnmarshalJSON(data []byte) error {
	type alias Item
	var raw alias
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	kept := raw.Fields[:0]
	for _, f := range raw.Fields {
		if f.Type == "CONCEALED" {
			continue
		}
		kept = append(kept, f)
	}
	raw.Fields = kept

	*it = Item(raw)
	return nil
}
