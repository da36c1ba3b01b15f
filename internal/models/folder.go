package models

// Folder is a node of a user's folder tree. ParentID nil means the folder
// sits at the root.
type Folder struct {
	ID        string  `json:"id"`
	UserID    string  `json:"userId"`
	Name      string  `json:"name"`
	ParentID  *string `json:"parentId"`
	CreatedAt string  `json:"createdAt"`
}

// Photo is the metadata of an uploaded image. The payload lives in object
// storage under S3Key; DataURL holds the inline payload of photos created
// before remote storage existed.
type Photo struct {
	ID         string  `json:"id"`
	UserID     string  `json:"userId"`
	FolderID   *string `json:"folderId"`
	Name       string  `json:"name"`
	Size       int64   `json:"size"`
	Type       string  `json:"type"`
	UploadedAt string  `json:"uploadedAt"`
	DataURL    string  `json:"dataUrl"`
	S3Key      string  `json:"s3Key,omitempty"`
	BucketName string  `json:"bucketName,omitempty"`
}

// IsLegacy reports whether the payload is stored inline instead of remotely.
func (p Photo) IsLegacy() bool {
	return p.S3Key == "" && p.DataURL != ""
}

// SameParent compares two nullable folder references.
func SameParent(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// Ref returns a pointer to a copy of id, or nil for an empty id.
func Ref(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}
