package lifecycle

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// Catalogue pools
// ---------------------------------------------------------------------------

type staffProfile struct {
	Name          string
	Role          string
	CommissionPct int
}

type patientProfile struct {
	Name      string
	Email     string
	Phone     string
	Gender    string
	BirthYear int
}

type procedureDef struct {
	Name        string
	DurationMin int
	PriceCents  int64
}

type expenseDef struct {
	Description string
	AmountCents int64
}

type productDef struct {
	Name         string
	Category     string
	SKU          string
	PriceCents   int64
	CurrentStock int
	MinimumStock int
	// ExpiryDays offsets the batch expiry from the reference time; negative
	// means already expired.
	ExpiryDays int
}

type rewardDef struct {
	Name       string
	CostPoints int
}

var (
	// One role is commission-exempt to model front-desk staff.
	staffPool = []staffProfile{
		{"Dra. Helena Prado", "dermatologist", 30},
		{"Camila Duarte", "esthetician", 25},
		{"Renata Borges", "nurse", 15},
		{"Tiago Alves", "massage_therapist", 20},
		{"Luana Ferreira", "receptionist", 0},
	}

	patientPool = []patientProfile{
		{"Maria Oliveira", "maria.oliveira@example.com", "(11) 98811-0241", "female", 1988},
		{"João Pereira", "joao.pereira@example.com", "(11) 97432-5518", "male", 1975},
		{"Ana Costa", "ana.costa@example.com", "(21) 99655-7802", "female", 1992},
		{"Carlos Souza", "carlos.souza@example.com", "(11) 98204-1167", "male", 1983},
		{"Fernanda Lima", "fernanda.lima@example.com", "(31) 99118-3349", "female", 1996},
		{"Ricardo Santos", "ricardo.santos@example.com", "(11) 97560-8823", "male", 1969},
		{"Juliana Almeida", "juliana.almeida@example.com", "(41) 98877-2416", "female", 1990},
		{"Pedro Rocha", "pedro.rocha@example.com", "(11) 99340-6651", "male", 1985},
		{"Beatriz Carvalho", "beatriz.carvalho@example.com", "(51) 98122-9370", "female", 1998},
		{"Lucas Martins", "lucas.martins@example.com", "(11) 97718-4402", "male", 1993},
		{"Patrícia Gomes", "patricia.gomes@example.com", "(21) 99501-2286", "female", 1979},
		{"André Barbosa", "andre.barbosa@example.com", "(11) 98066-7134", "male", 1987},
	}

	procedureCatalogue = []procedureDef{
		{"Botox", 30, 95000},
		{"Dermal Filler", 40, 120000},
		{"Chemical Peel", 45, 35000},
		{"Laser Hair Removal", 60, 28000},
		{"Microneedling", 60, 42000},
		{"Deep Facial Cleansing", 50, 18000},
		{"Lymphatic Drainage", 60, 15000},
		{"Skin Assessment", 30, 9000},
	}

	// Recurring monthly expenses.
	expenseCatalogue = []expenseDef{
		{"Rent", 520000},
		{"Payroll", 1480000},
		{"Marketing", 160000},
		{"Utilities", 74000},
	}

	categoryPool = []struct{ Name, Description string }{
		{"Injectables", "Botulinum toxin and dermal fillers"},
		{"Skincare", "Topical treatment and maintenance products"},
		{"Equipment", "Single-use applicators and device supplies"},
		{"Supplements", "Oral supplements sold at the front desk"},
		{"Consumables", "Gloves, gauze and general consumables"},
	}

	// Stock levels and expiry offsets deliberately include low-stock,
	// expiring-soon, and expired items so alerting paths get exercised.
	productPool = []productDef{
		{"Botulinum Toxin 100U", "Injectables", "INJ-BTX-100", 180000, 12, 4, 160},
		{"Hyaluronic Filler 1ml", "Injectables", "INJ-HAF-001", 95000, 3, 5, 200},
		{"Vitamin C Serum", "Skincare", "SKC-VTC-030", 18900, 25, 8, 320},
		{"Retinol Night Cream", "Skincare", "SKC-RTN-050", 22400, 6, 10, 18},
		{"Sunscreen SPF 70", "Skincare", "SKC-SPF-070", 9800, 40, 12, 365},
		{"Microneedling Cartridge", "Equipment", "EQP-MNC-012", 4500, 30, 10, 400},
		{"Laser Tip Single-Use", "Equipment", "EQP-LTS-001", 3200, 2, 6, 270},
		{"Collagen Peptides", "Supplements", "SUP-CLG-300", 15600, 18, 6, -12},
		{"Nitrile Gloves Box", "Consumables", "CON-GLV-100", 5900, 50, 20, 540},
		{"Sterile Gauze Pack", "Consumables", "CON-GZE-050", 2400, 9, 15, 25},
	}

	leadPool = []struct{ Name, Channel string }{
		{"Sofia Mendes", "whatsapp"},
		{"Gabriel Nunes", "instagram"},
		{"Larissa Pinto", "whatsapp"},
		{"Rafael Cardoso", "website"},
	}

	// Scripted conversation per lead; sender alternates lead/clinic.
	chatScript = []string{
		"Hi! I'd like to know more about the laser hair removal packages.",
		"Hello! Of course — our packages start at 6 sessions. Would you like to book a free assessment?",
		"Yes, please. Do you have anything this week in the afternoon?",
		"We do! I can offer Thursday at 3pm. Shall I reserve it for you?",
	}

	prescriptionTemplates = [][]prescriptionItem{
		{
			{"Retinol 0.3% cream", "Apply at night", 30},
			{"Sunscreen SPF 70", "Apply every morning", 90},
		},
		{
			{"Vitamin C serum", "Apply in the morning", 30},
			{"Hyaluronic moisturizer", "Apply twice a day", 60},
		},
		{
			{"Collagen peptides 10g", "Dissolve in water once a day", 30},
		},
	}

	rewardPool = []rewardDef{
		{"Free Deep Facial Cleansing", 400},
		{"20% Off Chemical Peel", 300},
		{"Free Skin Assessment", 150},
		{"Lymphatic Drainage Session", 350},
		{"Sunscreen Kit", 250},
		{"VIP Anniversary Treatment", 800},
		{"Microneedling Discount Voucher", 500},
		{"Double Points Month", 200},
	}
)

type prescriptionItem struct {
	Name         string `json:"name"`
	Instructions string `json:"instructions"`
	DurationDays int    `json:"durationDays"`
}

// Fixed per-event loyalty point values. Member totals and tiers are always
// derived from the simulated events, never stored independently of them.
const (
	pointsConsultation = 50
	pointsProcedure    = 100
	pointsReferral     = 150
	pointsBonus        = 25
)

func loyaltyTier(points int) string {
	switch {
	case points >= 1500:
		return "gold"
	case points >= 500:
		return "silver"
	default:
		return "bronze"
	}
}

// referralCode formats a member's referral code from its identifier. Member
// ids are random rather than seed-derived, so codes stay unique even when
// several tenants are seeded from the same random seed.
func referralCode(id uuid.UUID) string {
	return fmt.Sprintf("REF-%X", id[:4])
}

// Appointment generation window around the reference day.
const (
	apptDaysBack    = 7
	apptDaysForward = 14
	apptClosedDay   = time.Sunday
)

// ---------------------------------------------------------------------------
// DataGenerator
// ---------------------------------------------------------------------------

// DataGenerator produces a deterministic synthetic tenant dataset. Structure
// (row counts per catalogue-driven entity) is fixed; values vary with the
// seed. If seed is 0 a time-based seed is chosen.
type DataGenerator struct {
	rng *rand.Rand
	now time.Time
}

func NewDataGenerator(seed int64) *DataGenerator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &DataGenerator{
		rng: rand.New(rand.NewSource(seed)),
		now: time.Now().UTC(),
	}
}

// WithReferenceTime pins the generator's notion of "now"; used by tests for
// reproducible windows.
func (g *DataGenerator) WithReferenceTime(t time.Time) *DataGenerator {
	g.now = t.UTC()
	return g
}

// varied applies a bounded ±10% variation around a catalogue price.
func (g *DataGenerator) varied(cents int64) int64 {
	f := 0.9 + g.rng.Float64()*0.2
	return int64(float64(cents) * f)
}

func (g *DataGenerator) pickPatient(patients []PatientRow) PatientRow {
	return patients[g.rng.Intn(len(patients))]
}

// pickCommissioned returns a random staff member who earns commission,
// i.e. never the front-desk profile.
func (g *DataGenerator) pickCommissioned(staff []StaffRow) StaffRow {
	for {
		s := staff[g.rng.Intn(len(staff))]
		if s.CommissionPct > 0 {
			return s
		}
	}
}

func (g *DataGenerator) pickProcedure() procedureDef {
	return procedureCatalogue[g.rng.Intn(len(procedureCatalogue))]
}

// Generate builds the full dataset for the tenant. Parents are generated
// before children because later steps need identifiers produced by earlier
// ones; every reference in a dependent row points at a row created in this
// same run.
func (g *DataGenerator) Generate(tenantID string) *Dataset {
	d := &Dataset{}
	now := g.now

	// Staff
	for _, p := range staffPool {
		d.Staff = append(d.Staff, StaffRow{
			ID:            uuid.New(),
			TenantID:      tenantID,
			FullName:      p.Name,
			Role:          p.Role,
			CommissionPct: p.CommissionPct,
			Active:        true,
			CreatedAt:     now,
		})
	}

	// Patients
	for _, p := range patientPool {
		birth := time.Date(p.BirthYear, time.Month(1+g.rng.Intn(12)), 1+g.rng.Intn(28),
			0, 0, 0, 0, time.UTC)
		d.Patients = append(d.Patients, PatientRow{
			ID:        uuid.New(),
			TenantID:  tenantID,
			FullName:  p.Name,
			Email:     p.Email,
			Phone:     p.Phone,
			BirthDate: birth,
			Gender:    p.Gender,
			CreatedAt: now,
		})
	}

	// Categories
	categoryByName := make(map[string]uuid.UUID, len(categoryPool))
	for _, c := range categoryPool {
		row := CategoryRow{
			ID:          uuid.New(),
			TenantID:    tenantID,
			Name:        c.Name,
			Description: c.Description,
			CreatedAt:   now,
		}
		categoryByName[c.Name] = row.ID
		d.Categories = append(d.Categories, row)
	}

	g.generateAppointments(d, tenantID)
	g.generateTransactions(d, tenantID)
	g.generateQuotes(d, tenantID)
	g.generateInventory(d, tenantID, categoryByName)
	g.generateChat(d, tenantID)
	g.generatePrescriptions(d, tenantID)
	g.generateLoyalty(d, tenantID)
	g.generateMonthlyTargets(d, tenantID)

	return d
}

// generateAppointments fills a rolling window of the prior week and the next
// two weeks, skipping the closed weekday, with 3-6 appointments per active
// day. Past slots are biased toward completed.
func (g *DataGenerator) generateAppointments(d *Dataset, tenantID string) {
	today := time.Date(g.now.Year(), g.now.Month(), g.now.Day(), 0, 0, 0, 0, time.UTC)

	for offset := -apptDaysBack; offset <= apptDaysForward; offset++ {
		day := today.AddDate(0, 0, offset)
		if day.Weekday() == apptClosedDay {
			continue
		}

		perDay := 3 + g.rng.Intn(4)
		for i := 0; i < perDay; i++ {
			patient := g.pickPatient(d.Patients)
			staff := g.pickCommissioned(d.Staff)
			proc := g.pickProcedure()

			// Slots between 09:00 and 18:00, half-hour aligned.
			startsAt := day.Add(time.Duration(9*60+30*g.rng.Intn(18)) * time.Minute)

			var status string
			switch {
			case offset < 0:
				// Past slots: mostly completed, a few canceled.
				if g.rng.Float64() < 0.8 {
					status = "completed"
				} else {
					status = "canceled"
				}
			case g.rng.Float64() < 0.4:
				status = "confirmed"
			default:
				status = "scheduled"
			}

			d.Appointments = append(d.Appointments, AppointmentRow{
				ID:            uuid.New(),
				TenantID:      tenantID,
				PatientID:     patient.ID,
				StaffID:       staff.ID,
				ProcedureName: proc.Name,
				DurationMin:   proc.DurationMin,
				StartsAt:      startsAt,
				Status:        status,
				CreatedAt:     g.now,
			})
		}
	}
}

// generateTransactions covers the trailing three months including the
// partial current month: revenue rows tied to a random patient and a random
// commissioned staff member, plus the fixed recurring expenses.
func (g *DataGenerator) generateTransactions(d *Dataset, tenantID string) {
	for monthsAgo := 2; monthsAgo >= 0; monthsAgo-- {
		monthStart := time.Date(g.now.Year(), g.now.Month(), 1, 0, 0, 0, 0, time.UTC).
			AddDate(0, -monthsAgo, 0)

		daysInMonth := monthStart.AddDate(0, 1, -1).Day()
		if monthsAgo == 0 {
			// Partial current month: only up to today.
			daysInMonth = g.now.Day()
		}

		revenueRows := 10 + g.rng.Intn(6)
		for i := 0; i < revenueRows; i++ {
			patient := g.pickPatient(d.Patients)
			staff := g.pickCommissioned(d.Staff)
			proc := g.pickProcedure()
			occurred := monthStart.AddDate(0, 0, g.rng.Intn(daysInMonth)).
				Add(time.Duration(9+g.rng.Intn(9)) * time.Hour)

			pid := patient.ID
			d.Transactions = append(d.Transactions, TransactionRow{
				ID:          uuid.New(),
				TenantID:    tenantID,
				PatientID:   &pid,
				Kind:        "revenue",
				Description: proc.Name,
				AmountCents: g.varied(proc.PriceCents),
				StaffTag:    fmt.Sprintf("%s:%s", staff.ID, staff.FullName),
				OccurredAt:  occurred,
				CreatedAt:   g.now,
			})
		}

		for _, exp := range expenseCatalogue {
			d.Transactions = append(d.Transactions, TransactionRow{
				ID:          uuid.New(),
				TenantID:    tenantID,
				Kind:        "expense",
				Description: exp.Description,
				AmountCents: exp.AmountCents,
				OccurredAt:  monthStart.Add(5 * 24 * time.Hour),
				CreatedAt:   g.now,
			})
		}
	}
}

func (g *DataGenerator) generateQuotes(d *Dataset, tenantID string) {
	statuses := []string{"pending", "accepted", "rejected"}
	for i := 0; i < 6; i++ {
		patient := g.pickPatient(d.Patients)
		proc := g.pickProcedure()
		d.Quotes = append(d.Quotes, QuoteRow{
			ID:            uuid.New(),
			TenantID:      tenantID,
			PatientID:     patient.ID,
			ProcedureName: proc.Name,
			AmountCents:   g.varied(proc.PriceCents),
			Status:        statuses[g.rng.Intn(len(statuses))],
			ValidUntil:    g.now.AddDate(0, 0, 15+g.rng.Intn(30)),
			CreatedAt:     g.now,
		})
	}
}

// generateInventory creates the product catalogue, a movement history
// consistent with each product's current stock, product-procedure links, and
// the alerts derived from stock levels and expiry proximity.
func (g *DataGenerator) generateInventory(d *Dataset, tenantID string, categoryByName map[string]uuid.UUID) {
	for _, def := range productPool {
		product := InventoryProductRow{
			ID:           uuid.New(),
			TenantID:     tenantID,
			CategoryID:   categoryByName[def.Category],
			Name:         def.Name,
			SKU:          def.SKU,
			PriceCents:   def.PriceCents,
			CurrentStock: def.CurrentStock,
			MinimumStock: def.MinimumStock,
			BatchCode:    fmt.Sprintf("B%d-%04d", g.now.Year(), 1+g.rng.Intn(9999)),
			ExpiresAt:    g.now.AddDate(0, 0, def.ExpiryDays),
			CreatedAt:    g.now,
		}
		d.Products = append(d.Products, product)

		// Movement history reconciling to current stock:
		// entry - exits - losses == CurrentStock.
		exits := g.rng.Intn(8)
		losses := g.rng.Intn(2)
		entry := def.CurrentStock + exits + losses

		staff := g.pickCommissioned(d.Staff)
		d.StockMovements = append(d.StockMovements, StockMovementRow{
			ID:         uuid.New(),
			TenantID:   tenantID,
			ProductID:  product.ID,
			StaffID:    staff.ID,
			Kind:       "entry",
			Quantity:   entry,
			OccurredAt: g.now.AddDate(0, 0, -60),
			CreatedAt:  g.now,
		})
		for i := 0; i < exits; i++ {
			d.StockMovements = append(d.StockMovements, StockMovementRow{
				ID:         uuid.New(),
				TenantID:   tenantID,
				ProductID:  product.ID,
				StaffID:    g.pickCommissioned(d.Staff).ID,
				Kind:       "exit",
				Quantity:   1,
				OccurredAt: g.now.AddDate(0, 0, -g.rng.Intn(55)-1),
				CreatedAt:  g.now,
			})
		}
		for i := 0; i < losses; i++ {
			d.StockMovements = append(d.StockMovements, StockMovementRow{
				ID:         uuid.New(),
				TenantID:   tenantID,
				ProductID:  product.ID,
				StaffID:    g.pickCommissioned(d.Staff).ID,
				Kind:       "loss",
				Quantity:   1,
				OccurredAt: g.now.AddDate(0, 0, -g.rng.Intn(55)-1),
				CreatedAt:  g.now,
			})
		}

		// Link consumable products to a procedure that uses them.
		if def.Category == "Injectables" || def.Category == "Equipment" {
			proc := g.pickProcedure()
			d.ProductProcs = append(d.ProductProcs, ProductProcedureRow{
				ID:                uuid.New(),
				TenantID:          tenantID,
				ProductID:         product.ID,
				ProcedureName:     proc.Name,
				UnitsPerProcedure: 1 + g.rng.Intn(3),
				CreatedAt:         g.now,
			})
		}

		// Alerts are derived from the product state, never random.
		if def.CurrentStock <= def.MinimumStock {
			d.StockAlerts = append(d.StockAlerts, StockAlertRow{
				ID:        uuid.New(),
				TenantID:  tenantID,
				ProductID: product.ID,
				Kind:      "low_stock",
				Message: fmt.Sprintf("%s stock at %d (minimum %d)",
					def.Name, def.CurrentStock, def.MinimumStock),
				CreatedAt: g.now,
			})
		}
		switch {
		case def.ExpiryDays < 0:
			d.StockAlerts = append(d.StockAlerts, StockAlertRow{
				ID:        uuid.New(),
				TenantID:  tenantID,
				ProductID: product.ID,
				Kind:      "expired",
				Message:   fmt.Sprintf("%s batch expired", def.Name),
				CreatedAt: g.now,
			})
		case def.ExpiryDays <= 30:
			d.StockAlerts = append(d.StockAlerts, StockAlertRow{
				ID:        uuid.New(),
				TenantID:  tenantID,
				ProductID: product.ID,
				Kind:      "expiring_soon",
				Message:   fmt.Sprintf("%s batch expires in %d days", def.Name, def.ExpiryDays),
				CreatedAt: g.now,
			})
		}
	}
}

func (g *DataGenerator) generateChat(d *Dataset, tenantID string) {
	for _, lead := range leadPool {
		thread := ChatThreadRow{
			ID:        uuid.New(),
			TenantID:  tenantID,
			LeadName:  lead.Name,
			Channel:   lead.Channel,
			CreatedAt: g.now,
		}
		d.ChatThreads = append(d.ChatThreads, thread)

		base := g.now.Add(-time.Duration(1+g.rng.Intn(72)) * time.Hour)
		for i, body := range chatScript {
			sender := "lead"
			if i%2 == 1 {
				sender = "clinic"
			}
			d.ChatMessages = append(d.ChatMessages, ChatMessageRow{
				ID:        uuid.New(),
				TenantID:  tenantID,
				ThreadID:  thread.ID,
				Sender:    sender,
				Body:      body,
				SentAt:    base.Add(time.Duration(i*3) * time.Minute),
				CreatedAt: g.now,
			})
		}
	}
}

func (g *DataGenerator) generatePrescriptions(d *Dataset, tenantID string) {
	for i := 0; i < 6; i++ {
		patient := g.pickPatient(d.Patients)
		items, _ := json.Marshal(prescriptionTemplates[i%len(prescriptionTemplates)])

		status := "draft"
		var signedAt *time.Time
		if g.rng.Float64() < 0.7 {
			status = "signed"
			t := g.now.AddDate(0, 0, -g.rng.Intn(30))
			signedAt = &t
		}

		d.Prescriptions = append(d.Prescriptions, PrescriptionRow{
			ID:        uuid.New(),
			TenantID:  tenantID,
			PatientID: patient.ID,
			Items:     string(items),
			Status:    status,
			SignedAt:  signedAt,
			CreatedAt: g.now,
		})
	}
}

// generateLoyalty builds rewards, members with histories, redemptions and
// referrals. A member's point totals are always the sum of its generated
// history rows; redemptions only happen when available points cover the
// reward's cost.
func (g *DataGenerator) generateLoyalty(d *Dataset, tenantID string) {
	for _, def := range rewardPool {
		d.Rewards = append(d.Rewards, LoyaltyRewardRow{
			ID:         uuid.New(),
			TenantID:   tenantID,
			Name:       def.Name,
			CostPoints: def.CostPoints,
			CreatedAt:  g.now,
		})
	}

	memberCount := 6
	for i := 0; i < memberCount; i++ {
		patient := d.Patients[i]
		memberID := uuid.New()
		member := LoyaltyMemberRow{
			ID:        memberID,
			TenantID:  tenantID,
			PatientID: patient.ID,
			// Derived from the member id, not the seeded rng: two tenants
			// seeded with the same seed must still get distinct codes.
			ReferralCode: referralCode(memberID),
			CreatedAt:    g.now,
		}

		events := []struct {
			kind   string
			points int
			count  int
		}{
			{"consultation", pointsConsultation, 1 + g.rng.Intn(4)},
			{"procedure", pointsProcedure, g.rng.Intn(5)},
			{"referral", pointsReferral, g.rng.Intn(2)},
			{"bonus", pointsBonus, g.rng.Intn(2)},
		}

		total := 0
		for _, ev := range events {
			for n := 0; n < ev.count; n++ {
				d.PointsHistory = append(d.PointsHistory, LoyaltyPointsHistoryRow{
					ID:         uuid.New(),
					TenantID:   tenantID,
					MemberID:   member.ID,
					Event:      ev.kind,
					Points:     ev.points,
					OccurredAt: g.now.AddDate(0, 0, -g.rng.Intn(90)),
					CreatedAt:  g.now,
				})
				total += ev.points
			}

			if ev.kind == "referral" {
				for n := 0; n < ev.count; n++ {
					d.Referrals = append(d.Referrals, LoyaltyReferralRow{
						ID:               uuid.New(),
						TenantID:         tenantID,
						ReferrerMemberID: member.ID,
						ReferredName:     leadPool[g.rng.Intn(len(leadPool))].Name,
						Status:           "converted",
						CreatedAt:        g.now,
					})
				}
			}
		}

		available := total

		// Redeem at most one reward the member can actually afford.
		affordable := make([]LoyaltyRewardRow, 0, len(d.Rewards))
		for _, rw := range d.Rewards {
			if rw.CostPoints <= available {
				affordable = append(affordable, rw)
			}
		}
		if len(affordable) > 0 && g.rng.Float64() < 0.5 {
			rw := affordable[g.rng.Intn(len(affordable))]
			d.Redemptions = append(d.Redemptions, LoyaltyRedemptionRow{
				ID:          uuid.New(),
				TenantID:    tenantID,
				MemberID:    member.ID,
				RewardID:    rw.ID,
				PointsSpent: rw.CostPoints,
				RedeemedAt:  g.now.AddDate(0, 0, -g.rng.Intn(30)),
				CreatedAt:   g.now,
			})
			available -= rw.CostPoints
		}

		member.PointsTotal = total
		member.PointsAvailable = available
		member.Tier = loyaltyTier(total)
		d.Members = append(d.Members, member)
	}
}

func (g *DataGenerator) generateMonthlyTargets(d *Dataset, tenantID string) {
	for monthsAgo := 2; monthsAgo >= 0; monthsAgo-- {
		month := time.Date(g.now.Year(), g.now.Month(), 1, 0, 0, 0, 0, time.UTC).
			AddDate(0, -monthsAgo, 0)
		d.MonthlyTargets = append(d.MonthlyTargets, MonthlyTargetRow{
			ID:                 uuid.New(),
			TenantID:           tenantID,
			Month:              month,
			RevenueTargetCents: 5000000 + int64(g.rng.Intn(20))*100000,
			CreatedAt:          g.now,
		})
	}
}
