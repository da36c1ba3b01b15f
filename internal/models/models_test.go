package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhoto_JSONShape(t *testing.T) {
	p := Photo{ID: "p1", UserID: "u1", Name: "a.jpg", Size: 10, Type: "image/jpeg", UploadedAt: "2024-01-01T00:00:00.000Z"}

	b, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"p1","userId":"u1","folderId":null,"name":"a.jpg","size":10,"type":"image/jpeg","uploadedAt":"2024-01-01T00:00:00.000Z","dataUrl":""}`, string(b))
}

func TestUser_DecodesStoredRecord(t *testing.T) {
	raw := `{"id":"u1","email":"contato@teacherkarololiveira.org","password":"123456","name":"Karoline de Oliveira",
	"role":"user","plan":"essencial","storageUsed":42,"createdAt":"2024-05-01T10:00:00.000Z",
	"cnpj":"42.070.149/0001-97","planType":"mensal","paymentMethod":"pix","accountStatus":"ativo",
	"planHistory":[{"id":"h1","planType":"essencial","billingCycle":"mensal","paymentMethod":"pix","startDate":"2024-05-01T10:00:00.000Z","status":"ativo"}]}`

	var u User
	require.NoError(t, json.Unmarshal([]byte(raw), &u))

	want := User{
		ID: "u1", Email: "contato@teacherkarololiveira.org", Password: "123456", Name: "Karoline de Oliveira",
		Role: RoleUser, Plan: PlanEssencial, StorageUsed: 42, CreatedAt: "2024-05-01T10:00:00.000Z",
		CNPJ: "42.070.149/0001-97", PlanType: BillingMonthly, PaymentMethod: PaymentPix, AccountStatus: StatusActive,
		PlanHistory: []PlanHistory{{ID: "h1", PlanType: PlanEssencial, BillingCycle: BillingMonthly, PaymentMethod: PaymentPix, StartDate: "2024-05-01T10:00:00.000Z", Status: StatusActive}},
	}
	assert.Empty(t, cmp.Diff(want, u))
	assert.True(t, u.HasIdentityDocument())
	assert.False(t, u.IsAdmin())
}

func TestApplyUserUpdates(t *testing.T) {
	u := User{ID: "u1", Password: "old", StorageUsed: 5}
	exp := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	ApplyUserUpdates(&u,
		SetPassword{Password: "new"},
		SetStorageUsed{Bytes: 9},
		SetTemporaryPassword{Password: "ABCD1234", Expiry: exp},
		SetNeedsPasswordReset{Value: true},
		SetPlan{Plan: PlanPro, BillingCycle: BillingAnnual, PaymentMethod: PaymentCard},
	)

	assert.Equal(t, "new", u.Password)
	assert.Equal(t, int64(9), u.StorageUsed)
	assert.Equal(t, "ABCD1234", u.TemporaryPassword)
	assert.Equal(t, "2025-03-01T12:00:00.000Z", u.TemporaryPasswordExpiry)
	assert.True(t, u.NeedsPasswordReset)
	assert.Equal(t, PlanPro, u.Plan)
	assert.Equal(t, BillingAnnual, u.PlanType)

	ApplyUserUpdates(&u, ClearTemporaryPassword{})
	assert.Empty(t, u.TemporaryPassword)
	assert.Empty(t, u.TemporaryPasswordExpiry)
}

func TestSetPlanHistory_CopiesSlice(t *testing.T) {
	h := []PlanHistory{{ID: "a"}}
	u := User{}
	ApplyUserUpdates(&u, SetPlanHistory{History: h})
	h[0].ID = "changed"
	assert.Equal(t, "a", u.PlanHistory[0].ID)
}

func TestMovePhoto(t *testing.T) {
	target := "f1"
	p := Photo{ID: "p"}

	ApplyPhotoUpdates(&p, MovePhoto{FolderID: &target})
	require.NotNil(t, p.FolderID)
	target = "mutated"
	assert.Equal(t, "f1", *p.FolderID)

	ApplyPhotoUpdates(&p, MovePhoto{})
	assert.Nil(t, p.FolderID)
}

func TestSameParentAndRef(t *testing.T) {
	assert.True(t, SameParent(nil, nil))
	assert.False(t, SameParent(nil, Ref("a")))
	assert.True(t, SameParent(Ref("a"), Ref("a")))
	assert.False(t, SameParent(Ref("a"), Ref("b")))
	assert.Nil(t, Ref(""))
}

func TestEnumsValid(t *testing.T) {
	assert.True(t, PlanStudio.Valid())
	assert.False(t, Plan("gold").Valid())
	assert.True(t, BillingSemiannual.Valid())
	assert.False(t, BillingCycle("weekly").Valid())
	assert.True(t, PaymentBoleto.Valid())
	assert.False(t, PaymentMethod("cash").Valid())
	assert.True(t, StatusCancelled.Valid())
	assert.False(t, AccountStatus("x").Valid())
}

func TestTimestampRoundTrip(t *testing.T) {
	ts := time.Date(2024, 2, 29, 23, 59, 58, 123_000_000, time.FixedZone("BRT", -3*3600))
	s := Timestamp(ts)
	assert.Equal(t, "2024-03-01T02:59:58.123Z", s)

	back, err := ParseTimestamp(s)
	require.NoError(t, err)
	assert.True(t, back.Equal(ts))

	_, err = ParseTimestamp("2024-03-01T02:59:58Z")
	require.NoError(t, err)
	_, err = ParseTimestamp("yesterday")
	require.Error(t, err)
}

func TestPhoto_IsLegacy(t *testing.T) {
	assert.True(t, Photo{DataURL: "data:image/png;base64,AA=="}.IsLegacy())
	assert.False(t, Photo{S3Key: "users/u/root/x.png"}.IsLegacy())
}
