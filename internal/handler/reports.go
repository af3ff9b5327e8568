package handler

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sort"
	"time"

	"github.com/annapurna-pos/api/internal/database"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReportsStore defines the database methods needed by report handlers.
type ReportsStore interface {
	ListBilledOrdersBetween(ctx context.Context, arg database.ListBilledOrdersBetweenParams) ([]database.Order, error)
}

// ReportsHandler aggregates billed orders into sales summaries. Only
// completed and paid orders count; cancelled orders never do.
type ReportsHandler struct {
	store   ReportsStore
	taxRate decimal.Decimal
}

func NewReportsHandler(store ReportsStore, taxRate decimal.Decimal) *ReportsHandler {
	return &ReportsHandler{store: store, taxRate: taxRate}
}

func (h *ReportsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/sales", h.Sales)
}

// --- Response types ---

type salesReportResponse struct {
	Start         string            `json:"start"`
	End           string            `json:"end"`
	OrderCount    int               `json:"order_count"`
	Subtotal      string            `json:"subtotal"`
	TaxRate       string            `json:"tax_rate"`
	TaxAmount     string            `json:"tax_amount"`
	GrandTotal    string            `json:"grand_total"`
	AverageTicket string            `json:"average_ticket"`
	ByDay         []dailySalesRow   `json:"by_day"`
	ByWaiter      []waiterSalesRow  `json:"by_waiter"`
	ParcelShare   parcelSalesTotals `json:"parcels"`
}

type dailySalesRow struct {
	Date       string `json:"date"`
	OrderCount int    `json:"order_count"`
	Subtotal   string `json:"subtotal"`
}

type waiterSalesRow struct {
	WaiterName string `json:"waiter_name"`
	OrderCount int    `json:"order_count"`
	Subtotal   string `json:"subtotal"`
}

type parcelSalesTotals struct {
	OrderCount int    `json:"order_count"`
	Subtotal   string `json:"subtotal"`
}

// --- Handlers ---

// Sales rolls up billed orders for ?start=YYYY-MM-DD&end=YYYY-MM-DD
// (defaulting to today). The end date is inclusive.
func (h *ReportsHandler) Sales(w http.ResponseWriter, r *http.Request) {
	hotelID, err := uuid.Parse(chi.URLParam(r, "hid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid hotel ID"})
		return
	}

	start, end, err := parseDateRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	orders, err := h.store.ListBilledOrdersBetween(r.Context(), database.ListBilledOrdersBetweenParams{
		HotelID: hotelID,
		Start:   start,
		End:     end.AddDate(0, 0, 1),
	})
	if err != nil {
		log.Printf("ERROR: list billed orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	subtotal := decimal.Zero
	byDay := make(map[string]*dailyAccumulator)
	byWaiter := make(map[string]*dailyAccumulator)
	parcels := dailyAccumulator{}

	for _, o := range orders {
		amount := numericToDecimal(o.TotalAmount)
		subtotal = subtotal.Add(amount)

		day := o.CreatedAt.Format("2006-01-02")
		if byDay[day] == nil {
			byDay[day] = &dailyAccumulator{}
		}
		byDay[day].add(amount)

		name := o.WaiterName
		if name == "" {
			name = "unattributed"
		}
		if byWaiter[name] == nil {
			byWaiter[name] = &dailyAccumulator{}
		}
		byWaiter[name].add(amount)

		if o.ParcelNumber.Valid {
			parcels.add(amount)
		}
	}

	tax := subtotal.Mul(h.taxRate).Round(2)
	avg := decimal.Zero
	if len(orders) > 0 {
		avg = subtotal.Div(decimal.NewFromInt(int64(len(orders)))).Round(2)
	}

	resp := salesReportResponse{
		Start:         start.Format("2006-01-02"),
		End:           end.Format("2006-01-02"),
		OrderCount:    len(orders),
		Subtotal:      subtotal.StringFixed(2),
		TaxRate:       h.taxRate.String(),
		TaxAmount:     tax.StringFixed(2),
		GrandTotal:    subtotal.Add(tax).StringFixed(2),
		AverageTicket: avg.StringFixed(2),
		ByDay:         sortedDailyRows(byDay),
		ByWaiter:      sortedWaiterRows(byWaiter),
		ParcelShare: parcelSalesTotals{
			OrderCount: parcels.count,
			Subtotal:   parcels.total.StringFixed(2),
		},
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- Helpers ---

type dailyAccumulator struct {
	count int
	total decimal.Decimal
}

func (a *dailyAccumulator) add(amount decimal.Decimal) {
	a.count++
	a.total = a.total.Add(amount)
}

func parseDateRange(r *http.Request) (time.Time, time.Time, error) {
	today := time.Now().UTC().Truncate(24 * time.Hour)
	start, end := today, today

	if s := r.URL.Query().Get("start"); s != "" {
		var err error
		start, err = time.Parse("2006-01-02", s)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid start date, want YYYY-MM-DD")
		}
	}
	if s := r.URL.Query().Get("end"); s != "" {
		var err error
		end, err = time.Parse("2006-01-02", s)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid end date, want YYYY-MM-DD")
		}
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("end date before start date")
	}
	return start, end, nil
}

func sortedDailyRows(m map[string]*dailyAccumulator) []dailySalesRow {
	rows := make([]dailySalesRow, 0, len(m))
	for date, acc := range m {
		rows = append(rows, dailySalesRow{
			Date:       date,
			OrderCount: acc.count,
			Subtotal:   acc.total.StringFixed(2),
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Date < rows[j].Date })
	return rows
}

func sortedWaiterRows(m map[string]*dailyAccumulator) []waiterSalesRow {
	rows := make([]waiterSalesRow, 0, len(m))
	for name, acc := range m {
		rows = append(rows, waiterSalesRow{
			WaiterName: name,
			OrderCount: acc.count,
			Subtotal:   acc.total.StringFixed(2),
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].WaiterName < rows[j].WaiterName })
	return rows
}
