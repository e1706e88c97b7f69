package lifecycle

import (
	"time"

	"github.com/google/uuid"
)

// Row structs mirror the registry's column lists; each values() result is in
// the exact order of the corresponding EntityType.Columns().

type StaffRow struct {
	ID            uuid.UUID
	TenantID      string
	FullName      string
	Role          string
	CommissionPct int
	Active        bool
	CreatedAt     time.Time
}

func (r StaffRow) values() []any {
	return []any{r.ID, r.TenantID, r.FullName, r.Role, r.CommissionPct, r.Active, r.CreatedAt}
}

type PatientRow struct {
	ID        uuid.UUID
	TenantID  string
	FullName  string
	Email     string
	Phone     string
	BirthDate time.Time
	Gender    string
	CreatedAt time.Time
}

func (r PatientRow) values() []any {
	return []any{r.ID, r.TenantID, r.FullName, r.Email, r.Phone, r.BirthDate, r.Gender, r.CreatedAt}
}

type CategoryRow struct {
	ID          uuid.UUID
	TenantID    string
	Name        string
	Description string
	CreatedAt   time.Time
}

func (r CategoryRow) values() []any {
	return []any{r.ID, r.TenantID, r.Name, r.Description, r.CreatedAt}
}

type AppointmentRow struct {
	ID            uuid.UUID
	TenantID      string
	PatientID     uuid.UUID
	StaffID       uuid.UUID
	ProcedureName string
	DurationMin   int
	StartsAt      time.Time
	Status        string
	CreatedAt     time.Time
}

func (r AppointmentRow) values() []any {
	return []any{r.ID, r.TenantID, r.PatientID, r.StaffID, r.ProcedureName,
		r.DurationMin, r.StartsAt, r.Status, r.CreatedAt}
}

type TransactionRow struct {
	ID          uuid.UUID
	TenantID    string
	PatientID   *uuid.UUID // nil for expenses
	Kind        string     // "revenue" or "expense"
	Description string
	AmountCents int64
	StaffTag    string // "<staff id>:<display name>", empty for expenses
	OccurredAt  time.Time
	CreatedAt   time.Time
}

func (r TransactionRow) values() []any {
	return []any{r.ID, r.TenantID, r.PatientID, r.Kind, r.Description,
		r.AmountCents, r.StaffTag, r.OccurredAt, r.CreatedAt}
}

type QuoteRow struct {
	ID            uuid.UUID
	TenantID      string
	PatientID     uuid.UUID
	ProcedureName string
	AmountCents   int64
	Status        string
	ValidUntil    time.Time
	CreatedAt     time.Time
}

func (r QuoteRow) values() []any {
	return []any{r.ID, r.TenantID, r.PatientID, r.ProcedureName,
		r.AmountCents, r.Status, r.ValidUntil, r.CreatedAt}
}

type PrescriptionRow struct {
	ID        uuid.UUID
	TenantID  string
	PatientID uuid.UUID
	Items     string // JSON array of item objects
	Status    string
	SignedAt  *time.Time
	CreatedAt time.Time
}

func (r PrescriptionRow) values() []any {
	return []any{r.ID, r.TenantID, r.PatientID, r.Items, r.Status, r.SignedAt, r.CreatedAt}
}

type MonthlyTargetRow struct {
	ID                 uuid.UUID
	TenantID           string
	Month              time.Time // first day of month
	RevenueTargetCents int64
	CreatedAt          time.Time
}

func (r MonthlyTargetRow) values() []any {
	return []any{r.ID, r.TenantID, r.Month, r.RevenueTargetCents, r.CreatedAt}
}

type InventoryProductRow struct {
	ID           uuid.UUID
	TenantID     string
	CategoryID   uuid.UUID
	Name         string
	SKU          string
	PriceCents   int64
	CurrentStock int
	MinimumStock int
	BatchCode    string
	ExpiresAt    time.Time
	CreatedAt    time.Time
}

func (r InventoryProductRow) values() []any {
	return []any{r.ID, r.TenantID, r.CategoryID, r.Name, r.SKU, r.PriceCents,
		r.CurrentStock, r.MinimumStock, r.BatchCode, r.ExpiresAt, r.CreatedAt}
}

type StockMovementRow struct {
	ID         uuid.UUID
	TenantID   string
	ProductID  uuid.UUID
	StaffID    uuid.UUID
	Kind       string // "entry", "exit", "loss"
	Quantity   int
	OccurredAt time.Time
	CreatedAt  time.Time
}

func (r StockMovementRow) values() []any {
	return []any{r.ID, r.TenantID, r.ProductID, r.StaffID, r.Kind,
		r.Quantity, r.OccurredAt, r.CreatedAt}
}

type ProductProcedureRow struct {
	ID                uuid.UUID
	TenantID          string
	ProductID         uuid.UUID
	ProcedureName     string
	UnitsPerProcedure int
	CreatedAt         time.Time
}

func (r ProductProcedureRow) values() []any {
	return []any{r.ID, r.TenantID, r.ProductID, r.ProcedureName,
		r.UnitsPerProcedure, r.CreatedAt}
}

type StockAlertRow struct {
	ID        uuid.UUID
	TenantID  string
	ProductID uuid.UUID
	Kind      string // "low_stock", "expiring_soon", "expired"
	Message   string
	CreatedAt time.Time
}

func (r StockAlertRow) values() []any {
	return []any{r.ID, r.TenantID, r.ProductID, r.Kind, r.Message, r.CreatedAt}
}

type ChatThreadRow struct {
	ID        uuid.UUID
	TenantID  string
	LeadName  string
	Channel   string
	CreatedAt time.Time
}

func (r ChatThreadRow) values() []any {
	return []any{r.ID, r.TenantID, r.LeadName, r.Channel, r.CreatedAt}
}

type ChatMessageRow struct {
	ID        uuid.UUID
	TenantID  string
	ThreadID  uuid.UUID
	Sender    string // "lead" or "clinic"
	Body      string
	SentAt    time.Time
	CreatedAt time.Time
}

func (r ChatMessageRow) values() []any {
	return []any{r.ID, r.TenantID, r.ThreadID, r.Sender, r.Body, r.SentAt, r.CreatedAt}
}

type LoyaltyRewardRow struct {
	ID         uuid.UUID
	TenantID   string
	Name       string
	CostPoints int
	CreatedAt  time.Time
}

func (r LoyaltyRewardRow) values() []any {
	return []any{r.ID, r.TenantID, r.Name, r.CostPoints, r.CreatedAt}
}

type LoyaltyMemberRow struct {
	ID              uuid.UUID
	TenantID        string
	PatientID       uuid.UUID
	ReferralCode    string
	PointsTotal     int
	PointsAvailable int
	Tier            string
	CreatedAt       time.Time
}

func (r LoyaltyMemberRow) values() []any {
	return []any{r.ID, r.TenantID, r.PatientID, r.ReferralCode,
		r.PointsTotal, r.PointsAvailable, r.Tier, r.CreatedAt}
}

type LoyaltyPointsHistoryRow struct {
	ID         uuid.UUID
	TenantID   string
	MemberID   uuid.UUID
	Event      string // "consultation", "procedure", "referral", "bonus"
	Points     int
	OccurredAt time.Time
	CreatedAt  time.Time
}

func (r LoyaltyPointsHistoryRow) values() []any {
	return []any{r.ID, r.TenantID, r.MemberID, r.Event, r.Points, r.OccurredAt, r.CreatedAt}
}

type LoyaltyRedemptionRow struct {
	ID          uuid.UUID
	TenantID    string
	MemberID    uuid.UUID
	RewardID    uuid.UUID
	PointsSpent int
	RedeemedAt  time.Time
	CreatedAt   time.Time
}

func (r LoyaltyRedemptionRow) values() []any {
	return []any{r.ID, r.TenantID, r.MemberID, r.RewardID, r.PointsSpent,
		r.RedeemedAt, r.CreatedAt}
}

type LoyaltyReferralRow struct {
	ID               uuid.UUID
	TenantID         string
	ReferrerMemberID uuid.UUID
	ReferredName     string
	Status           string
	CreatedAt        time.Time
}

func (r LoyaltyReferralRow) values() []any {
	return []any{r.ID, r.TenantID, r.ReferrerMemberID, r.ReferredName,
		r.Status, r.CreatedAt}
}

// Dataset holds one generation run's rows for every entity type, parents and
// children linked by identifiers created in the same run.
type Dataset struct {
	Staff            []StaffRow
	Patients         []PatientRow
	Categories       []CategoryRow
	Appointments     []AppointmentRow
	Transactions     []TransactionRow
	Quotes           []QuoteRow
	Prescriptions    []PrescriptionRow
	MonthlyTargets   []MonthlyTargetRow
	Products         []InventoryProductRow
	StockMovements   []StockMovementRow
	ProductProcs     []ProductProcedureRow
	StockAlerts      []StockAlertRow
	ChatThreads      []ChatThreadRow
	ChatMessages     []ChatMessageRow
	Rewards          []LoyaltyRewardRow
	Members          []LoyaltyMemberRow
	PointsHistory    []LoyaltyPointsHistoryRow
	Redemptions      []LoyaltyRedemptionRow
	Referrals        []LoyaltyReferralRow
}

// Rows returns the dataset's rows for the entity type as bulk-insert value
// slices, in the registry's column order.
func (d *Dataset) Rows(e EntityType) [][]any {
	switch e {
	case EntityStaff:
		return collect(d.Staff, StaffRow.values)
	case EntityPatients:
		return collect(d.Patients, PatientRow.values)
	case EntityCategories:
		return collect(d.Categories, CategoryRow.values)
	case EntityAppointments:
		return collect(d.Appointments, AppointmentRow.values)
	case EntityTransactions:
		return collect(d.Transactions, TransactionRow.values)
	case EntityQuotes:
		return collect(d.Quotes, QuoteRow.values)
	case EntityPrescriptions:
		return collect(d.Prescriptions, PrescriptionRow.values)
	case EntityMonthlyTargets:
		return collect(d.MonthlyTargets, MonthlyTargetRow.values)
	case EntityInventoryProducts:
		return collect(d.Products, InventoryProductRow.values)
	case EntityStockMovements:
		return collect(d.StockMovements, StockMovementRow.values)
	case EntityProductProcedures:
		return collect(d.ProductProcs, ProductProcedureRow.values)
	case EntityStockAlerts:
		return collect(d.StockAlerts, StockAlertRow.values)
	case EntityChatThreads:
		return collect(d.ChatThreads, ChatThreadRow.values)
	case EntityChatMessages:
		return collect(d.ChatMessages, ChatMessageRow.values)
	case EntityLoyaltyRewards:
		return collect(d.Rewards, LoyaltyRewardRow.values)
	case EntityLoyaltyMembers:
		return collect(d.Members, LoyaltyMemberRow.values)
	case EntityLoyaltyPointsHistory:
		return collect(d.PointsHistory, LoyaltyPointsHistoryRow.values)
	case EntityLoyaltyRedemptions:
		return collect(d.Redemptions, LoyaltyRedemptionRow.values)
	case EntityLoyaltyReferrals:
		return collect(d.Referrals, LoyaltyReferralRow.values)
	}
	return nil
}

// Counts returns the number of generated rows per entity type.
func (d *Dataset) Counts() Counts {
	counts := make(Counts, entityCount)
	for _, e := range AllEntities() {
		counts[e] = int64(len(d.Rows(e)))
	}
	return counts
}

func collect[T any](rows []T, values func(T) []any) [][]any {
	out := make([][]any, len(rows))
	for i, r := range rows {
		out[i] = values(r)
	}
	return out
}
