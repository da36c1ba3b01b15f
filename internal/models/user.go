// Package models defines the persisted photovault records. JSON tags match
// the stored collections so existing data round-trips unchanged.
package models

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Plan is the storage plan a user pays for.
type Plan string

const (
	PlanEssencial Plan = "essencial"
	PlanPro       Plan = "pro"
	PlanStudio    Plan = "studio"
)

func (p Plan) Valid() bool {
	switch p {
	case PlanEssencial, PlanPro, PlanStudio:
		return true
	}
	return false
}

// BillingCycle is stored under the "planType" key for historical reasons.
type BillingCycle string

const (
	BillingMonthly    BillingCycle = "mensal"
	BillingSemiannual BillingCycle = "semestral"
	BillingAnnual     BillingCycle = "anual"
)

func (b BillingCycle) Valid() bool {
	switch b {
	case BillingMonthly, BillingSemiannual, BillingAnnual:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentBoleto PaymentMethod = "boleto"
	PaymentCard   PaymentMethod = "cartao"
	PaymentPix    PaymentMethod = "pix"
)

func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentBoleto, PaymentCard, PaymentPix:
		return true
	}
	return false
}

type AccountStatus string

const (
	StatusActive    AccountStatus = "ativo"
	StatusInactive  AccountStatus = "inativo"
	StatusCancelled AccountStatus = "cancelado"
)

func (s AccountStatus) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusCancelled:
		return true
	}
	return false
}

// PlanHistory is one billing period of a user's plan.
type PlanHistory struct {
	ID            string        `json:"id"`
	PlanType      Plan          `json:"planType"`
	BillingCycle  BillingCycle  `json:"billingCycle"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	StartDate     string        `json:"startDate"`
	EndDate       string        `json:"endDate,omitempty"`
	Status        AccountStatus `json:"status"`
}

// User is an account. Password is stored and compared in plain text, which
// existing stored data depends on.
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Name        string `json:"name"`
	Role        Role   `json:"role"`
	Plan        Plan   `json:"plan"`
	StorageUsed int64  `json:"storageUsed"`
	CreatedAt   string `json:"createdAt"`

	TemporaryPassword       string `json:"temporaryPassword,omitempty"`
	TemporaryPasswordExpiry string `json:"temporaryPasswordExpiry,omitempty"`
	NeedsPasswordReset      bool   `json:"needsPasswordReset,omitempty"`

	CPF      string `json:"cpf,omitempty"`
	CNPJ     string `json:"cnpj,omitempty"`
	RG       string `json:"rg,omitempty"`
	Endereco string `json:"endereco,omitempty"`
	Telefone string `json:"telefone,omitempty"`

	PlanType      BillingCycle  `json:"planType,omitempty"`
	PaymentMethod PaymentMethod `json:"paymentMethod,omitempty"`
	AccountStatus AccountStatus `json:"accountStatus,omitempty"`
	PlanHistory   []PlanHistory `json:"planHistory,omitempty"`
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// HasIdentityDocument reports whether a CPF or a CNPJ is on file.
func (u User) HasIdentityDocument() bool {
	return u.CPF != "" || u.CNPJ != ""
}

// Language is the saved UI language preference.
type Language string

const (
	LanguagePortuguese Language = "pt-BR"
	LanguageEnglish    Language = "en-US"

	DefaultLanguage = LanguageEnglish
)

func (l Language) Valid() bool {
	return l == LanguagePortuguese || l == LanguageEnglish
}
