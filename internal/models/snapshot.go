package models

// Snapshot is the portable, non-decrypting backup of a vault. Restoring it
// requires the original master password.
type Snapshot struct {
	Meta    SnapshotMeta    `json:"meta"`
	Entries []SnapshotEntry `json:"entries"`
}

type SnapshotMeta struct {
	KDF        KDFMeta `json:"kdf"`
	CreatedAt  string  `json:"created_at"`
	VaultID    string  `json:"vault_id,omitempty"`
	ExportedAt string  `json:"exported_at"`
}

type KDFMeta struct {
	Algo    string `json:"algo"`
	N       int    `json:"N"`
	R       int    `json:"r"`
	P       int    `json:"p"`
	SaltB64 string `json:"salt_b64"`
}

// SnapshotEntry mirrors the stored entry record. PwdIV and PwdCT are the
// base64 values exactly as persisted.
type SnapshotEntry struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	Username  string `json:"username"`
	Tags      string `json:"tags"`
	Notes     string `json:"notes"`
	PwdIV     string `json:"pwd_iv"`
	PwdCT     string `json:"pwd_ct"`
	Favorite  bool   `json:"favorite"`
	Archived  bool   `json:"archived"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}
