package models

import "time"

// UserUpdate is a typed change to a User record. The set of implementations
// is closed: only the commands below can modify a stored user.
type UserUpdate interface {
	applyUser(*User)
}

// FolderUpdate is a typed change to a Folder record.
type FolderUpdate interface {
	applyFolder(*Folder)
}

// PhotoUpdate is a typed change to a Photo record.
type PhotoUpdate interface {
	applyPhoto(*Photo)
}

type SetStorageUsed struct{ Bytes int64 }

func (c SetStorageUsed) applyUser(u *User) { u.StorageUsed = c.Bytes }

// SetProfile replaces the editable profile fields.
type SetProfile struct {
	Name     string
	Email    string
	CPF      string
	CNPJ     string
	RG       string
	Endereco string
	Telefone string
}

func (c SetProfile) applyUser(u *User) {
	u.Name = c.Name
	u.Email = c.Email
	u.CPF = c.CPF
	u.CNPJ = c.CNPJ
	u.RG = c.RG
	u.Endereco = c.Endereco
	u.Telefone = c.Telefone
}

type SetPlan struct {
	Plan          Plan
	BillingCycle  BillingCycle
	PaymentMethod PaymentMethod
}

func (c SetPlan) applyUser(u *User) {
	u.Plan = c.Plan
	u.PlanType = c.BillingCycle
	u.PaymentMethod = c.PaymentMethod
}

type SetPlanHistory struct{ History []PlanHistory }

func (c SetPlanHistory) applyUser(u *User) {
	u.PlanHistory = append([]PlanHistory(nil), c.History...)
}

type SetAccountStatus struct{ Status AccountStatus }

func (c SetAccountStatus) applyUser(u *User) { u.AccountStatus = c.Status }

type SetPassword struct{ Password string }

func (c SetPassword) applyUser(u *User) { u.Password = c.Password }

type SetTemporaryPassword struct {
	Password string
	Expiry   time.Time
}

func (c SetTemporaryPassword) applyUser(u *User) {
	u.TemporaryPassword = c.Password
	u.TemporaryPasswordExpiry = Timestamp(c.Expiry)
}

type ClearTemporaryPassword struct{}

func (ClearTemporaryPassword) applyUser(u *User) {
	u.TemporaryPassword = ""
	u.TemporaryPasswordExpiry = ""
}

type SetNeedsPasswordReset struct{ Value bool }

func (c SetNeedsPasswordReset) applyUser(u *User) { u.NeedsPasswordReset = c.Value }

type RenameFolder struct{ Name string }

func (c RenameFolder) applyFolder(f *Folder) { f.Name = c.Name }

// MovePhoto reassigns the photo's folder; nil moves it to the root.
type MovePhoto struct{ FolderID *string }

func (c MovePhoto) applyPhoto(p *Photo) {
	if c.FolderID == nil {
		p.FolderID = nil
		return
	}
	id := *c.FolderID
	p.FolderID = &id
}

func ApplyUserUpdates(u *User, cmds ...UserUpdate) {
	for _, c := range cmds {
		c.applyUser(u)
	}
}

func ApplyFolderUpdates(f *Folder, cmds ...FolderUpdate) {
	for _, c := range cmds {
		c.applyFolder(f)
	}
}

func ApplyPhotoUpdates(p *Photo, cmds ...PhotoUpdate) {
	for _, c := range cmds {
		c.applyPhoto(p)
	}
}
